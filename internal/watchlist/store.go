// Package watchlist keeps the user's saved movies in memory and mirrors
// every change to durable storage.
//
// A single Store is created at startup and shared by every view. Reads
// are served from memory; each effective mutation schedules a full
// snapshot write on a background writer, so callers never wait on disk.
package watchlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/cinescope/internal/domain"
)

// StorageKey is the durable key holding the serialized watchlist
const StorageKey = "watchlist"

// ErrNotSequence indicates a stored snapshot that is valid JSON but not an array
var ErrNotSequence = errors.New("watchlist snapshot is not a sequence")

// Store is the canonical watchlist. It is safe for concurrent use.
type Store struct {
	logger *slog.Logger
	writer *writer

	mu     sync.RWMutex
	movies []domain.Movie
	ids    map[int64]struct{}

	obsMu     sync.RWMutex
	observers []domain.WatchlistObserver
}

// Load builds a store from the snapshot in kv. A missing snapshot yields
// an empty watchlist; a corrupt one is deleted and also yields an empty
// watchlist. Load never writes a snapshot.
func Load(kv domain.KVStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		logger: logger,
		ids:    make(map[int64]struct{}),
	}
	s.writer = newWriter(kv, logger)

	data, ok, err := kv.Get(StorageKey)
	switch {
	case err != nil:
		// Unreadable is not corrupt: leave the record for the next mutation to replace
		logger.Error("failed to read watchlist", "error", err)
	case ok:
		movies, err := Decode(data)
		if err != nil {
			logger.Warn("discarding corrupt watchlist", "error", err, "bytes", len(data))
			if err := kv.Delete(StorageKey); err != nil {
				logger.Error("failed to delete corrupt watchlist", "error", err)
			}
			break
		}
		for _, m := range movies {
			s.movies = append(s.movies, m)
			s.ids[m.ID] = struct{}{}
		}
	}

	logger.Debug("loaded watchlist", "count", len(s.movies))
	return s
}

// Decode parses a snapshot. The value must be a JSON array of objects
// each carrying an integer "id". Repeated ids keep their first occurrence.
func Decode(data []byte) ([]domain.Movie, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotSequence
	}

	var movies []domain.Movie
	if err := json.Unmarshal(trimmed, &movies); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	seen := make(map[int64]struct{}, len(movies))
	out := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

// Encode serializes movies in order.
func Encode(movies []domain.Movie) ([]byte, error) {
	if movies == nil {
		movies = []domain.Movie{}
	}
	return json.Marshal(movies)
}

// Add appends movie unless a record with the same ID is already saved.
// The existing record is kept as-is on a duplicate. Reports whether
// the movie was inserted.
func (s *Store) Add(movie domain.Movie) bool {
	s.mu.Lock()
	if _, exists := s.ids[movie.ID]; exists {
		s.mu.Unlock()
		return false
	}
	s.movies = append(s.movies, movie.Clone())
	s.ids[movie.ID] = struct{}{}
	n := len(s.movies)
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("added to watchlist", "movieID", movie.ID, "title", movie.Title())
	s.notify(domain.WatchlistChange{Kind: domain.WatchlistAdded, MovieID: movie.ID, Len: n})
	return true
}

// Remove deletes the record with the given ID. Reports whether one was removed.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	if _, exists := s.ids[id]; !exists {
		s.mu.Unlock()
		return false
	}
	kept := make([]domain.Movie, 0, len(s.movies)-1)
	for _, m := range s.movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.movies = kept
	delete(s.ids, id)
	n := len(s.movies)
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("removed from watchlist", "movieID", id)
	s.notify(domain.WatchlistChange{Kind: domain.WatchlistRemoved, MovieID: id, Len: n})
	return true
}

// Toggle removes movie if saved, otherwise adds it. Reports whether the
// movie is saved afterwards.
func (s *Store) Toggle(movie domain.Movie) bool {
	if s.Remove(movie.ID) {
		return false
	}
	s.Add(movie)
	return true
}

// Clear empties the watchlist with a single write. Reports whether
// anything was removed.
func (s *Store) Clear() bool {
	s.mu.Lock()
	if len(s.movies) == 0 {
		s.mu.Unlock()
		return false
	}
	removed := len(s.movies)
	s.movies = nil
	s.ids = make(map[int64]struct{})
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("cleared watchlist", "removed", removed)
	s.notify(domain.WatchlistChange{Kind: domain.WatchlistCleared, Len: 0})
	return true
}

// Contains reports whether a movie with id is saved.
func (s *Store) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// List returns the saved movies, oldest first. The result is a copy.
func (s *Store) List() []domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Movie, len(s.movies))
	for i, m := range s.movies {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of saved movies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}

// Subscribe registers o for change notifications. Observers are called
// synchronously after the change, outside the store's lock.
func (s *Store) Subscribe(o domain.WatchlistObserver) {
	s.obsMu.Lock()
	s.observers = append(s.observers, o)
	s.obsMu.Unlock()
}

// LastPersistError returns the most recent write failure, or nil once a
// later write has succeeded.
func (s *Store) LastPersistError() error {
	return s.writer.lastError()
}

// Flush blocks until every scheduled snapshot has been written.
func (s *Store) Flush() {
	s.writer.flush()
}

// Close flushes pending writes and stops the background writer.
// Mutations after Close still apply in memory but are not persisted.
func (s *Store) Close() error {
	s.writer.close()
	return nil
}

// persistLocked schedules a snapshot of the current state. Callers hold
// s.mu so snapshots are queued in mutation order.
func (s *Store) persistLocked() {
	data, err := Encode(s.movies)
	if err != nil {
		s.logger.Error("failed to encode watchlist", "error", err)
		s.writer.recordError(fmt.Errorf("encode watchlist: %w", err))
		return
	}
	s.writer.schedule(data)
}

func (s *Store) notify(change domain.WatchlistChange) {
	s.obsMu.RLock()
	observers := append([]domain.WatchlistObserver(nil), s.observers...)
	s.obsMu.RUnlock()

	for _, o := range observers {
		o.OnWatchlistChange(change)
	}
}
