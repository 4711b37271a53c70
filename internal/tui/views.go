package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/cinescope/internal/domain"
	"github.com/mmcdole/cinescope/internal/tui/styles"
)

// Empty and error states
const (
	msgNoTrending    = "No trending movies available."
	msgNoResults     = "No movies found for your search."
	msgLoadFailed    = "Failed to load movies. Please try again."
	msgDetailFailed  = "Failed to load movie details. Please try again."
	msgEmptyList     = "Your watchlist is empty"
	msgNoFilterMatch = "No movies match your filter."
)

// BadgeText returns the watchlist count badge, or "" when the list is empty
func BadgeText(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 99:
		return "99+"
	default:
		return strconv.Itoa(n)
	}
}

// CountLabel returns "1 movie" or "N movies"
func CountLabel(n int) string {
	if n == 1 {
		return "1 movie"
	}
	return fmt.Sprintf("%d movies", n)
}

// TrendingHeading titles the trending list for its period
func TrendingHeading(p domain.TrendingPeriod) string {
	if p == domain.TrendingDay {
		return "Trending Today"
	}
	return "Trending This Week"
}

// SearchHeading titles a search result list
func SearchHeading(query string) string {
	return fmt.Sprintf("Search Results for %q", query)
}

// SavedMark returns the watchlist glyph for a card
func SavedMark(saved bool) string {
	if saved {
		return styles.SavedChar
	}
	return styles.UnsavedChar
}

// CardLine is the plain-text summary of a movie: mark, title, rating and year
func CardLine(m domain.Movie, saved bool) string {
	return fmt.Sprintf("%s %s  %s  %s", SavedMark(saved), m.Title(), m.FormattedRating(), m.FormattedYear())
}

// View renders the application
func (m Model) View() string {
	var body string
	switch m.page {
	case PageDetail:
		body = m.renderDetail()
	case PageWatchlist:
		body = m.renderWatchlist()
	default:
		body = m.renderHome()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	t := m.theme

	tab := func(label string, active bool) string {
		if active {
			return t.ActiveTab.Render(label)
		}
		return t.Tab.Render(label)
	}

	watchLabel := "2 Watchlist"
	if m.watchlist != nil {
		if badge := BadgeText(m.watchlist.Len()); badge != "" {
			watchLabel += " " + t.Badge.Render(badge)
		}
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center,
		t.AppName.Render("CineScope"),
		"  ",
		tab("1 Home", m.page == PageHome || (m.page == PageDetail && m.returnPage == PageHome)),
		tab(watchLabel, m.page == PageWatchlist || (m.page == PageDetail && m.returnPage == PageWatchlist)),
	)
	right := t.Dim.Render(styles.Mark(m.theme.Name))

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return t.Header.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFooter() string {
	t := m.theme
	if m.status != "" {
		if m.statusErr {
			return t.Footer.Render(t.Error.Render(m.status))
		}
		return t.Footer.Render(t.Success.Render(m.status))
	}
	return t.Footer.Render(m.help.ShortHelpView(m.keys.pageHelp(m.page)))
}

func (m Model) renderHome() string {
	t := m.theme
	var b strings.Builder

	heading := TrendingHeading(m.catalog.Period())
	loading, err := m.trendingLoading, m.trendingErr
	empty := msgNoTrending
	if m.query != "" {
		heading = SearchHeading(m.query)
		loading, err = m.searchLoading, m.searchErr
		empty = msgNoResults
	}

	b.WriteString(t.Title.Render(heading))
	b.WriteString("\n")
	extra := 0
	if m.searchInput.Focused() {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
		extra++
	}

	movies := m.homeMovies()
	switch {
	case loading:
		b.WriteString(m.spinner.View() + t.Dim.Render(" Loading movies..."))
	case err != nil:
		b.WriteString(t.Error.Render(msgLoadFailed))
		b.WriteString("\n")
		b.WriteString(t.Dim.Render("Press r to retry."))
	case len(movies) == 0:
		b.WriteString(t.Subtitle.Render(empty))
	default:
		b.WriteString(m.renderMovieList(movies, nil, m.homeCursor, m.listRows(extra)))
	}
	return b.String()
}

func (m Model) renderWatchlist() string {
	t := m.theme
	var b strings.Builder

	total := m.watchlist.Len()
	b.WriteString(t.Title.Render("My Watchlist"))
	b.WriteString("  ")
	b.WriteString(t.Subtitle.Render(CountLabel(total)))
	b.WriteString("\n")

	extra := 0
	if m.filterInput.Focused() || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
		extra++
	}

	if m.confirmClear {
		prompt := fmt.Sprintf("Remove all %s from your watchlist? (y/n)", CountLabel(total))
		b.WriteString(t.Confirm.Render(prompt))
		b.WriteString("\n")
		extra += 3
	}

	switch {
	case total == 0:
		b.WriteString(t.Subtitle.Render(msgEmptyList))
		b.WriteString("\n")
		b.WriteString(t.Dim.Render("Press w on any movie to save it."))
	case len(m.filtered) == 0:
		b.WriteString(t.Subtitle.Render(msgNoFilterMatch))
	default:
		movies := make([]domain.Movie, len(m.filtered))
		matches := make([][]int, len(m.filtered))
		for i, r := range m.filtered {
			movies[i] = r.Movie
			matches[i] = r.MatchedIndexes
		}
		b.WriteString(m.renderMovieList(movies, matches, m.watchCursor, m.listRows(extra)))
	}
	return b.String()
}

func (m Model) renderDetail() string {
	t := m.theme
	if m.detailLoading {
		return t.Title.Render(m.detailMovie.Title()) + "\n" +
			m.spinner.View() + t.Dim.Render(" Loading details...")
	}
	return m.viewport.View()
}

// renderDetailBody builds the scrollable detail content
func (m Model) renderDetailBody() string {
	t := m.theme
	movie := m.detailMovie
	var b strings.Builder

	saved := m.watchlist != nil && m.watchlist.Contains(movie.ID)

	b.WriteString(t.Title.Render(movie.Title()))
	b.WriteString(" ")
	b.WriteString(t.Saved.Render(SavedMark(saved)))
	b.WriteString("\n")

	if m.detailErr != nil {
		b.WriteString("\n")
		b.WriteString(t.Error.Render(msgDetailFailed))
		b.WriteString("\n")
		b.WriteString(t.Dim.Render("Press h to go back."))
		return b.String()
	}

	// Meta line: release date, runtime, rating
	meta := []string{orDefault(movie.ReleaseDate(), "TBD")}
	if rt := movie.Runtime(); rt > 0 {
		meta = append(meta, fmt.Sprintf("%d min", rt))
	}
	if rating := movie.FormattedRating(); rating != "N/A" {
		meta = append(meta, rating+"/10")
	} else {
		meta = append(meta, "Not rated")
	}
	b.WriteString(t.Subtitle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	if genres := movie.Genres(); len(genres) > 0 {
		b.WriteString(t.Accent.Render(strings.Join(genres, ", ")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	overview := orDefault(movie.Overview(), "No overview available.")
	width := m.Width - 2
	if width < 20 {
		width = 20
	}
	b.WriteString(lipgloss.NewStyle().Width(width).Render(overview))
	b.WriteString("\n\n")

	if m.detail != nil {
		if m.detail.TrailerURL != "" {
			b.WriteString(t.Title.Render("Trailer  "))
			b.WriteString(m.detail.TrailerURL)
			b.WriteString(t.Dim.Render("  (o to open)"))
		} else {
			b.WriteString(t.Dim.Render("No trailer available"))
		}
		b.WriteString("\n")
		if m.detail.PosterURL != "" {
			b.WriteString(t.Title.Render("Poster   "))
			b.WriteString(t.Dim.Render(m.detail.PosterURL))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(t.Title.Render("Cast"))
		b.WriteString("\n")
		if len(m.detail.Cast) == 0 {
			b.WriteString(t.Dim.Render("No cast information."))
			b.WriteString("\n")
		}
		for _, c := range m.detail.Cast {
			b.WriteString("  " + c.Name)
			if c.Character != "" {
				b.WriteString(t.Dim.Render(" as " + c.Character))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if saved {
		b.WriteString(t.Saved.Render(styles.SavedChar + " In your watchlist"))
		b.WriteString(t.Dim.Render("  (w to remove)"))
	} else {
		b.WriteString(t.Dim.Render(styles.UnsavedChar + " Not in your watchlist  (w to add)"))
	}
	return b.String()
}

// renderMovieList renders a windowed list of card lines. matches, when
// non-nil, holds the title byte offsets to highlight for each movie.
func (m Model) renderMovieList(movies []domain.Movie, matches [][]int, cursor, rows int) string {
	t := m.theme

	start := 0
	if rows < len(movies) {
		start = cursor - rows/2
		if start < 0 {
			start = 0
		}
		if start+rows > len(movies) {
			start = len(movies) - rows
		}
	}
	end := min(start+rows, len(movies))

	titleWidth := m.Width - 24
	if titleWidth < 12 {
		titleWidth = 40
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		movie := movies[i]
		selected := i == cursor

		prefix := "  "
		if selected {
			prefix = t.Accent.Render(styles.CursorChar) + " "
		}

		saved := m.watchlist != nil && m.watchlist.Contains(movie.ID)
		mark := t.Dim.Render(SavedMark(saved))
		if saved {
			mark = t.Saved.Render(SavedMark(saved))
		}

		var idx []int
		if matches != nil {
			idx = matches[i]
		}
		title := styles.Truncate(movie.Title(), titleWidth)

		base := t.NormalItem
		if selected {
			base = t.SelectedItem
		}
		meta := t.Dim.Render(fmt.Sprintf("  %s  %s", movie.FormattedRating(), movie.FormattedYear()))

		lines = append(lines, prefix+mark+" "+highlightMatches(title, idx, base, t.Match)+meta)
	}

	if end < len(movies) || start > 0 {
		lines = append(lines, t.Dim.Render(fmt.Sprintf("  %d/%d", cursor+1, len(movies))))
	}
	return strings.Join(lines, "\n")
}

// listRows returns how many list lines fit below the page chrome
func (m Model) listRows(extra int) int {
	if m.Height == 0 {
		return 1 << 16
	}
	return max(m.Height-ChromeHeight-extra-1, MinListRows)
}

// highlightMatches renders text in base, with matched byte offsets in match
func highlightMatches(text string, matchedIndexes []int, base, match lipgloss.Style) string {
	if len(matchedIndexes) == 0 {
		return base.Render(text)
	}

	matchSet := make(map[int]bool, len(matchedIndexes))
	for _, idx := range matchedIndexes {
		matchSet[idx] = true
	}

	// Batch consecutive characters with the same style
	var b strings.Builder
	var run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMatched {
			b.WriteString(match.Inherit(base).Render(run.String()))
		} else {
			b.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}

	for i, r := range text {
		matched := matchSet[i]
		if matched != runMatched {
			flush()
			runMatched = matched
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
