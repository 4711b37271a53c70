package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinescope/internal/domain"
)

// Command factories for async operations

const (
	listTimeout   = 30 * time.Second
	detailTimeout = 30 * time.Second
	statusTTL     = 3 * time.Second
)

// LoadTrendingCmd loads the trending list, bypassing the cache when force is set
func LoadTrendingCmd(svc CatalogService, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		var (
			movies []domain.Movie
			err    error
		)
		if force {
			movies, err = svc.RefreshTrending(ctx)
		} else {
			movies, err = svc.Trending(ctx)
		}
		return TrendingLoadedMsg{Movies: movies, Err: err}
	}
}

// SearchCmd runs a catalog search for the first page of results
func SearchCmd(svc CatalogService, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		movies, err := svc.Search(ctx, query, 1)
		return SearchResultsMsg{Query: query, Movies: movies, Err: err}
	}
}

// LoadDetailCmd loads a movie's details, trailer and cast
func LoadDetailCmd(svc CatalogService, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), detailTimeout)
		defer cancel()

		detail, err := svc.Details(ctx, id)
		return DetailLoadedMsg{MovieID: id, Detail: detail, Err: err}
	}
}

// LaunchTrailerCmd opens a trailer URL in the configured player
func LaunchTrailerCmd(l TrailerLauncher, url, title string) tea.Cmd {
	return func() tea.Msg {
		if err := l.Launch(url); err != nil {
			return ErrMsg{Err: err, Context: "opening trailer"}
		}
		return TrailerLaunchedMsg{Title: title}
	}
}

// SaveThemeCmd persists the theme preference
func SaveThemeCmd(prefs domain.KVStore, theme string) tea.Cmd {
	return func() tea.Msg {
		return ThemeSavedMsg{Theme: theme, Err: prefs.Put(ThemeKey, []byte(theme))}
	}
}

// ClearStatusCmd clears the status message after a delay, unless a newer one replaced it
func ClearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
