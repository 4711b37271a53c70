package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinescope/internal/domain"
)

// ChannelObserver adapts domain.WatchlistObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.WatchlistChange
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.WatchlistChange) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnWatchlistChange sends the change to the channel (non-blocking if full).
// Every change carries the resulting length, so a dropped one only delays
// the badge until the next.
func (o *ChannelObserver) OnWatchlistChange(change domain.WatchlistChange) {
	select {
	case o.ch <- change:
	default: // Non-blocking if channel full
	}
}

// WaitForWatchlistChange blocks until the observer publishes a change.
func WaitForWatchlistChange(ch <-chan domain.WatchlistChange) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return WatchlistChangedMsg{Change: change}
	}
}
