package styles

import "github.com/charmbracelet/lipgloss"

// Theme names, as persisted under the "theme" preference key
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Palette is the set of colors a theme is built from
type Palette struct {
	Accent  lipgloss.Color
	Surface lipgloss.Color
	Raised  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Dim     lipgloss.Color
	Green   lipgloss.Color
	Red     lipgloss.Color
}

var (
	DarkPalette = Palette{
		Accent:  lipgloss.Color("#E5A00D"),
		Surface: lipgloss.Color("#1F2937"),
		Raised:  lipgloss.Color("#374151"),
		Text:    lipgloss.Color("#F9FAFB"),
		Muted:   lipgloss.Color("#9CA3AF"),
		Dim:     lipgloss.Color("#6B7280"),
		Green:   lipgloss.Color("#10B981"),
		Red:     lipgloss.Color("#EF4444"),
	}

	LightPalette = Palette{
		Accent:  lipgloss.Color("#B45309"),
		Surface: lipgloss.Color("#F9FAFB"),
		Raised:  lipgloss.Color("#E5E7EB"),
		Text:    lipgloss.Color("#111827"),
		Muted:   lipgloss.Color("#4B5563"),
		Dim:     lipgloss.Color("#9CA3AF"),
		Green:   lipgloss.Color("#047857"),
		Red:     lipgloss.Color("#B91C1C"),
	}
)

// Raw watchlist marks (unstyled)
const (
	SavedChar   = "★"
	UnsavedChar = "☆"
	CursorChar  = "›"
)

// SpinnerFrames animate plain-terminal progress outside the TUI
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Theme holds every style the views render with
type Theme struct {
	Name    string
	Palette Palette

	// Chrome
	Header    lipgloss.Style
	AppName   lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Badge     lipgloss.Style
	Footer    lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Dim      lipgloss.Style
	Accent   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	// Lists
	SelectedItem lipgloss.Style
	NormalItem   lipgloss.Style
	Match        lipgloss.Style
	Saved        lipgloss.Style

	// Inputs and dialogs
	Prompt  lipgloss.Style
	Input   lipgloss.Style
	Confirm lipgloss.Style

	// Help
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewTheme builds the named theme. Unknown names fall back to dark.
func NewTheme(name string) Theme {
	p := DarkPalette
	if name == ThemeLight {
		p = LightPalette
	} else {
		name = ThemeDark
	}

	return Theme{
		Name:    name,
		Palette: p,

		Header: lipgloss.NewStyle().
			Padding(0, 1).
			MarginBottom(1),
		AppName: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Tab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Raised).
			Bold(true).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().
			Foreground(p.Surface).
			Background(p.Accent).
			Bold(true).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Padding(0, 1).
			MarginTop(1),

		Title: lipgloss.NewStyle().
			Foreground(p.Text).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Muted),
		Dim: lipgloss.NewStyle().
			Foreground(p.Dim),
		Accent: lipgloss.NewStyle().
			Foreground(p.Accent),
		Error: lipgloss.NewStyle().
			Foreground(p.Red),
		Success: lipgloss.NewStyle().
			Foreground(p.Green),

		SelectedItem: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Raised),
		NormalItem: lipgloss.NewStyle().
			Foreground(p.Muted),
		Match: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Saved: lipgloss.NewStyle().
			Foreground(p.Accent),

		Prompt: lipgloss.NewStyle().
			Foreground(p.Accent),
		Input: lipgloss.NewStyle().
			Foreground(p.Text),
		Confirm: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Red).
			Padding(0, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(p.Accent),
		HelpDesc: lipgloss.NewStyle().
			Foreground(p.Dim),
	}
}

// Toggle returns the name of the other theme
func Toggle(name string) string {
	if name == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Mark returns the header glyph for a theme
func Mark(name string) string {
	if name == ThemeLight {
		return "☀"
	}
	return "☾"
}

// Truncate shortens s to width runes, ending in "..." when cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
