package watchlist

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/cinescope/internal/domain"
)

// ErrClosed is recorded when a change arrives after the store was closed
var ErrClosed = errors.New("watchlist store is closed")

// writer persists snapshots on its own goroutine. Only the newest pending
// snapshot is kept: each one is the full state, so older ones are obsolete.
type writer struct {
	kv     domain.KVStore
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []byte
	queued  uint64 // snapshots scheduled
	written uint64 // snapshots accounted for (written or superseded)
	closed  bool
	err     error

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newWriter(kv domain.KVStore, logger *slog.Logger) *writer {
	w := &writer{
		kv:     kv,
		logger: logger,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *writer) schedule(data []byte) {
	w.mu.Lock()
	if w.closed {
		w.err = ErrClosed
		w.mu.Unlock()
		w.logger.Warn("watchlist change not persisted", "error", ErrClosed)
		return
	}
	w.pending = data
	w.queued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default: // Already signalled; the loop will pick up the newest snapshot
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.writePending()
		case <-w.quit:
			w.writePending()
			return
		}
	}
}

func (w *writer) writePending() {
	w.mu.Lock()
	if w.written == w.queued {
		w.mu.Unlock()
		return
	}
	data := w.pending
	target := w.queued
	w.mu.Unlock()

	err := w.kv.Put(StorageKey, data)
	if err != nil {
		w.logger.Error("failed to save watchlist", "error", err, "bytes", len(data))
	}

	w.mu.Lock()
	w.err = err
	w.written = target
	w.cond.Broadcast()
	w.mu.Unlock()
}

func (w *writer) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.written < w.queued {
		w.cond.Wait()
	}
}

func (w *writer) close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.quit)
		<-w.done
	})
}

func (w *writer) recordError(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

func (w *writer) lastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
