package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinescope/internal/domain"
	"github.com/mmcdole/cinescope/internal/search"
	"github.com/mmcdole/cinescope/internal/tui/styles"
	"github.com/mmcdole/cinescope/internal/watchlist"
)

// ThemeKey is the preference key holding the theme name
const ThemeKey = "theme"

// Page identifies the visible screen
type Page int

const (
	PageHome Page = iota
	PageDetail
	PageWatchlist
)

// Layout
const (
	ChromeHeight = 5 // header, its margin, footer and its margin, heading
	MinListRows  = 3
)

// CatalogService is the catalog surface the views need
type CatalogService interface {
	Trending(ctx context.Context) ([]domain.Movie, error)
	RefreshTrending(ctx context.Context) ([]domain.Movie, error)
	Search(ctx context.Context, query string, page int) ([]domain.Movie, error)
	Details(ctx context.Context, id int64) (*domain.MovieDetail, error)
	Period() domain.TrendingPeriod
}

// TrailerLauncher opens a trailer URL
type TrailerLauncher interface {
	Launch(url string) error
}

// Services bundles the collaborators the model drives
type Services struct {
	Catalog   CatalogService
	Watchlist *watchlist.Store
	Prefs     domain.KVStore
	Launcher  TrailerLauncher
	Changes   <-chan domain.WatchlistChange // from a ChannelObserver subscribed to Watchlist
	Logger    *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	catalog   CatalogService
	watchlist *watchlist.Store
	prefs     domain.KVStore
	launcher  TrailerLauncher
	changes   <-chan domain.WatchlistChange
	logger    *slog.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	theme   styles.Theme

	// Dimensions
	Width  int
	Height int

	page       Page
	returnPage Page // page to go back to from detail

	// Home: trending or search results
	trending        []domain.Movie
	trendingLoading bool
	trendingErr     error
	query           string // active search, empty for trending
	results         []domain.Movie
	searchLoading   bool
	searchErr       error
	searchInput     textinput.Model
	homeCursor      int

	// Detail
	detailID      int64
	detailMovie   domain.Movie // listing record, replaced by the full record once loaded
	detail        *domain.MovieDetail
	detailLoading bool
	detailErr     error
	viewport      viewport.Model

	// Watchlist page
	filterInput  textinput.Model
	filtered     []search.FilterResult
	watchCursor  int
	confirmClear bool

	// Status bar
	status    string
	statusErr bool
	statusSeq int
}

// NewModel creates a new application model
func NewModel(svc Services, theme string) Model {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		catalog:         svc.Catalog,
		watchlist:       svc.Watchlist,
		prefs:           svc.Prefs,
		launcher:        svc.Launcher,
		changes:         svc.Changes,
		logger:          logger,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
		searchInput:     newInput("/ ", "search movies..."),
		filterInput:     newInput("/ ", "filter watchlist..."),
		viewport:        viewport.New(0, 0),
		page:            PageHome,
		trendingLoading: true,
	}
	m.applyTheme(theme)
	m.refreshWatchlist()
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	return ti
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadTrendingCmd(m.catalog, false),
		m.spinner.Tick,
		WaitForWatchlistChange(m.changes),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TrendingLoadedMsg:
		m.trendingLoading = false
		m.trendingErr = msg.Err
		if msg.Err != nil {
			m.logger.Error("failed to load trending", "error", msg.Err)
			return m, nil
		}
		m.trending = msg.Movies
		if m.query == "" {
			m.homeCursor = clamp(m.homeCursor, len(m.trending))
		}
		return m, nil

	case SearchResultsMsg:
		if msg.Query != m.query {
			return m, nil // superseded
		}
		m.searchLoading = false
		m.searchErr = msg.Err
		m.results = msg.Movies
		m.homeCursor = 0
		if msg.Err != nil {
			m.logger.Error("search failed", "query", msg.Query, "error", msg.Err)
		}
		return m, nil

	case DetailLoadedMsg:
		if msg.MovieID != m.detailID {
			return m, nil // superseded
		}
		m.detailLoading = false
		m.detailErr = msg.Err
		if msg.Err != nil {
			m.logger.Error("failed to load details", "movieID", msg.MovieID, "error", msg.Err)
		} else if msg.Detail != nil {
			m.detail = msg.Detail
			m.detailMovie = msg.Detail.Movie
		}
		m.refreshDetailContent()
		return m, nil

	case WatchlistChangedMsg:
		m.refreshWatchlist()
		m.refreshDetailContent()
		return m, WaitForWatchlistChange(m.changes)

	case TrailerLaunchedMsg:
		cmd := m.setStatus(fmt.Sprintf("Opening trailer for %s", msg.Title), false)
		return m, cmd

	case ThemeSavedMsg:
		if msg.Err != nil {
			m.logger.Error("failed to save theme", "theme", msg.Theme, "error", msg.Err)
			cmd := m.setStatus("Could not save theme preference", true)
			return m, cmd
		}
		return m, nil

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		cmd := m.setStatus(msg.Error(), true)
		return m, cmd

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil
	}

	return m, nil
}

// handleKeyMsg routes key presses: modal states first, then global keys, then the page
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.confirmClear:
		return m.handleConfirmKey(msg)
	case m.searchInput.Focused():
		return m.handleSearchInput(msg)
	case m.filterInput.Focused():
		return m.handleFilterInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleSelected()
	case key.Matches(msg, m.keys.NextPage):
		if m.page == PageWatchlist {
			return m.setPage(PageHome)
		}
		return m.setPage(PageWatchlist)
	case key.Matches(msg, m.keys.HomePage):
		return m.setPage(PageHome)
	case key.Matches(msg, m.keys.WatchPage):
		return m.setPage(PageWatchlist)
	}

	switch m.page {
	case PageDetail:
		return m.handleDetailKey(msg)
	case PageWatchlist:
		return m.handleWatchlistKey(msg)
	default:
		return m.handleHomeKey(msg)
	}
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	movies := m.homeMovies()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.homeCursor = clamp(m.homeCursor-1, len(movies))
	case key.Matches(msg, m.keys.Down):
		m.homeCursor = clamp(m.homeCursor+1, len(movies))
	case key.Matches(msg, m.keys.Top):
		m.homeCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.homeCursor = clamp(len(movies)-1, len(movies))
	case key.Matches(msg, m.keys.Enter):
		if movie, ok := m.selectedMovie(); ok {
			return m.openDetail(movie)
		}
	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue(m.query)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		if m.query != "" {
			m.clearSearch()
		}
	case key.Matches(msg, m.keys.Refresh):
		if m.query != "" {
			return m.runSearch(m.query)
		}
		m.trendingLoading = true
		m.trendingErr = nil
		return m, LoadTrendingCmd(m.catalog, true)
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searchInput.Blur()
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			m.clearSearch()
			return m, nil
		}
		return m.runSearch(query)
	case tea.KeyEsc:
		m.searchInput.Blur()
		m.searchInput.SetValue(m.query)
		return m, nil
	}

	// Route to textinput
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) runSearch(query string) (tea.Model, tea.Cmd) {
	m.query = query
	m.results = nil
	m.searchErr = nil
	m.searchLoading = true
	m.homeCursor = 0
	m.logger.Debug("searching", "query", query)
	return m, SearchCmd(m.catalog, query)
}

func (m *Model) clearSearch() {
	m.query = ""
	m.results = nil
	m.searchErr = nil
	m.searchLoading = false
	m.searchInput.SetValue("")
	m.homeCursor = 0
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
		m.page = m.returnPage
		return m, nil
	case key.Matches(msg, m.keys.Trailer):
		if m.detail == nil || m.detail.TrailerURL == "" {
			cmd := m.setStatus("No trailer available", true)
			return m, cmd
		}
		return m, LaunchTrailerCmd(m.launcher, m.detail.TrailerURL, m.detailMovie.Title())
	}

	// Scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleWatchlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.watchCursor = clamp(m.watchCursor-1, len(m.filtered))
	case key.Matches(msg, m.keys.Down):
		m.watchCursor = clamp(m.watchCursor+1, len(m.filtered))
	case key.Matches(msg, m.keys.Top):
		m.watchCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.watchCursor = clamp(len(m.filtered)-1, len(m.filtered))
	case key.Matches(msg, m.keys.Enter):
		if movie, ok := m.selectedMovie(); ok {
			return m.openDetail(movie)
		}
	case key.Matches(msg, m.keys.Filter):
		cmd := m.filterInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.refreshWatchlist()
		}
	case key.Matches(msg, m.keys.Remove):
		if movie, ok := m.selectedMovie(); ok && m.watchlist.Remove(movie.ID) {
			m.refreshWatchlist()
			cmd := m.setStatus(fmt.Sprintf("Removed %s from watchlist", movie.Title()), false)
			return m, cmd
		}
	case key.Matches(msg, m.keys.ClearAll):
		if m.watchlist.Len() > 0 {
			m.confirmClear = true
		}
	}
	return m, nil
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.refreshWatchlist()
		return m, nil
	}

	// Route to textinput
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.watchCursor = 0
	m.refreshWatchlist()
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirmClear = false
		n := m.watchlist.Len()
		if m.watchlist.Clear() {
			m.refreshWatchlist()
			cmd := m.setStatus(fmt.Sprintf("Removed %s from watchlist", CountLabel(n)), false)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Deny):
		m.confirmClear = false
	}
	return m, nil
}

// toggleSelected adds or removes the movie under the cursor, or the detailed movie
func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	movie, ok := m.selectedMovie()
	if !ok {
		return m, nil
	}

	saved := m.watchlist.Toggle(movie)
	m.refreshWatchlist()
	m.refreshDetailContent()

	if saved {
		cmd := m.setStatus(fmt.Sprintf("Added %s to watchlist", movie.Title()), false)
		return m, cmd
	}
	cmd := m.setStatus(fmt.Sprintf("Removed %s from watchlist", movie.Title()), false)
	return m, cmd
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	next := styles.Toggle(m.theme.Name)
	m.applyTheme(next)
	m.refreshDetailContent()
	m.logger.Info("theme changed", "theme", next)
	if m.prefs == nil {
		return m, nil
	}
	return m, SaveThemeCmd(m.prefs, next)
}

func (m *Model) applyTheme(name string) {
	m.theme = styles.NewTheme(name)

	m.help.Styles.ShortKey = m.theme.HelpKey
	m.help.Styles.ShortDesc = m.theme.HelpDesc
	m.help.Styles.ShortSeparator = m.theme.Dim
	m.spinner.Style = m.theme.Accent

	for _, ti := range []*textinput.Model{&m.searchInput, &m.filterInput} {
		ti.PromptStyle = m.theme.Prompt
		ti.TextStyle = m.theme.Input
		ti.PlaceholderStyle = m.theme.Dim
	}
}

func (m Model) setPage(p Page) (tea.Model, tea.Cmd) {
	if p == PageWatchlist {
		m.refreshWatchlist()
	}
	m.page = p
	return m, nil
}

func (m Model) openDetail(movie domain.Movie) (tea.Model, tea.Cmd) {
	if m.page != PageDetail {
		m.returnPage = m.page
	}
	m.page = PageDetail
	m.detailID = movie.ID
	m.detailMovie = movie
	m.detail = nil
	m.detailErr = nil
	m.detailLoading = true
	m.refreshDetailContent()
	m.viewport.GotoTop()
	return m, LoadDetailCmd(m.catalog, movie.ID)
}

// selectedMovie returns the movie the page is focused on
func (m Model) selectedMovie() (domain.Movie, bool) {
	switch m.page {
	case PageDetail:
		if m.detailID == 0 && m.detailMovie.Fields == nil {
			return domain.Movie{}, false
		}
		return m.detailMovie, true
	case PageWatchlist:
		if m.watchCursor < 0 || m.watchCursor >= len(m.filtered) {
			return domain.Movie{}, false
		}
		return m.filtered[m.watchCursor].Movie, true
	default:
		movies := m.homeMovies()
		if m.homeCursor < 0 || m.homeCursor >= len(movies) {
			return domain.Movie{}, false
		}
		return movies[m.homeCursor], true
	}
}

// homeMovies returns the list the home page shows
func (m Model) homeMovies() []domain.Movie {
	if m.query != "" {
		return m.results
	}
	return m.trending
}

// refreshWatchlist re-applies the filter to the current watchlist
func (m *Model) refreshWatchlist() {
	if m.watchlist == nil {
		return
	}
	m.filtered = search.Filter(m.filterInput.Value(), m.watchlist.List())
	m.watchCursor = clamp(m.watchCursor, len(m.filtered))
}

func (m *Model) refreshDetailContent() {
	m.viewport.SetContent(m.renderDetailBody())
}

func (m *Model) updateLayout() {
	m.help.Width = m.Width
	m.viewport.Width = m.Width
	m.viewport.Height = max(m.Height-ChromeHeight, MinListRows)
	m.searchInput.Width = max(m.Width-10, 10)
	m.filterInput.Width = max(m.Width-10, 10)
	m.refreshDetailContent()
}

// setStatus shows a transient message in the footer
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	return ClearStatusCmd(m.statusSeq)
}

// LoadTheme returns the persisted theme, or fallback when none is saved
func LoadTheme(prefs domain.KVStore, fallback string) string {
	if prefs == nil {
		return fallback
	}
	data, ok, err := prefs.Get(ThemeKey)
	if err != nil || !ok {
		return fallback
	}
	switch name := strings.TrimSpace(string(data)); name {
	case styles.ThemeDark, styles.ThemeLight:
		return name
	default:
		return fallback
	}
}

// clamp keeps a cursor inside [0, n)
func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
