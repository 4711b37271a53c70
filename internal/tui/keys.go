package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Enter     key.Binding
	Back      key.Binding
	NextPage  key.Binding
	HomePage  key.Binding
	WatchPage key.Binding

	// Actions
	Quit     key.Binding
	Escape   key.Binding
	Search   key.Binding
	Filter   key.Binding
	Refresh  key.Binding
	Toggle   key.Binding
	Remove   key.Binding
	ClearAll key.Binding
	Trailer  key.Binding
	Theme    key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "h", "left"),
			key.WithHelp("h", "back"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch page"),
		),
		HomePage: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		WatchPage: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "watchlist"),
		),

		// Actions
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("w", " "),
			key.WithHelp("w/space", "watchlist"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "remove"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Trailer: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "trailer"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),

		// Confirmations
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}

// pageHelp returns the bindings shown in the footer for a page
func (k KeyMap) pageHelp(p Page) []key.Binding {
	switch p {
	case PageDetail:
		return []key.Binding{k.Back, k.Toggle, k.Trailer, k.Up, k.Down, k.Theme, k.Quit}
	case PageWatchlist:
		return []key.Binding{k.Enter, k.Toggle, k.Remove, k.ClearAll, k.Filter, k.NextPage, k.Theme, k.Quit}
	default:
		return []key.Binding{k.Enter, k.Toggle, k.Search, k.Refresh, k.NextPage, k.Theme, k.Quit}
	}
}
