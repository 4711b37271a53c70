package domain

import "context"

// CatalogRepository provides access to the remote movie catalog
type CatalogRepository interface {
	// Trending returns the movies trending over the given period
	Trending(ctx context.Context, period TrendingPeriod) ([]Movie, error)

	// Search returns one page of movies matching query
	Search(ctx context.Context, query string, page int) ([]Movie, error)

	// Details returns the movie plus its trailer and top-billed cast
	Details(ctx context.Context, id int64) (*MovieDetail, error)
}

// KVStore is the durable key-value storage backing the watchlist and
// UI preferences. Values are opaque bytes.
type KVStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// CacheStore holds catalog responses with their fetch time.
type CacheStore interface {
	GetCached(key string, dest any) (fetchedAt int64, ok bool)
	SaveCached(key string, value any) error
}

// WatchlistChangeKind identifies a watchlist mutation
type WatchlistChangeKind int

const (
	WatchlistAdded WatchlistChangeKind = iota
	WatchlistRemoved
	WatchlistCleared
)

// WatchlistChange describes one effective watchlist mutation.
type WatchlistChange struct {
	Kind    WatchlistChangeKind
	MovieID int64 // zero for WatchlistCleared
	Len     int   // watchlist length after the change
}

// WatchlistObserver receives watchlist changes.
type WatchlistObserver interface {
	OnWatchlistChange(change WatchlistChange)
}
