package tui

import (
	"github.com/mmcdole/cinescope/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// TrendingLoadedMsg signals that the trending list has been loaded
type TrendingLoadedMsg struct {
	Movies []domain.Movie
	Err    error
}

// SearchResultsMsg signals that search results are ready
type SearchResultsMsg struct {
	Query  string
	Movies []domain.Movie
	Err    error
}

// DetailLoadedMsg signals that a movie's details have been loaded
type DetailLoadedMsg struct {
	MovieID int64
	Detail  *domain.MovieDetail
	Err     error
}

// WatchlistChangedMsg carries a change published by the watchlist store
type WatchlistChangedMsg struct {
	Change domain.WatchlistChange
}

// TrailerLaunchedMsg signals that the trailer player was started
type TrailerLaunchedMsg struct {
	Title string
}

// ThemeSavedMsg signals that the theme preference was written
type ThemeSavedMsg struct {
	Theme string
	Err   error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}
