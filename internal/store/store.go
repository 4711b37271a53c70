package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketKV    = []byte("kv")
	bucketCache = []byte("cache")
)

const dbFileName = "cinescope.db"

// cacheEntry wraps a cached catalog response with its fetch time
type cacheEntry struct {
	FetchedAt int64           `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// Store implements domain.KVStore and domain.CacheStore using BoltDB.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory copy of every value read or written, keyed by bucket:key
	cache map[string][]byte

	now func() time.Time
}

// Open opens (or creates) the database under dataDir. An empty dataDir
// gives a memory-only store that forgets everything on exit.
func Open(dataDir string) (*Store, error) {
	s := &Store{cache: make(map[string][]byte), now: time.Now}
	if dataDir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketKV, bucketCache} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

// Path returns the database file path, or "" in memory-only mode.
func (s *Store) Path() string {
	if s.db == nil {
		return ""
	}
	return s.db.Path()
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string) ([]byte, bool, error) {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return append([]byte(nil), data...), true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// Bolt values are only valid for the life of the transaction
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", cacheKey, err)
	}
	if data == nil {
		return nil, false, nil
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return append([]byte(nil), data...), true, nil
}

func (s *Store) put(bucket []byte, key string, value []byte) error {
	cacheKey := string(bucket) + ":" + key
	data := append([]byte(nil), value...)

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", cacheKey, err)
		}
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// === Key-value (watchlist, preferences) ===

func (s *Store) Get(key string) ([]byte, bool, error) {
	return s.get(bucketKV, key)
}

func (s *Store) Put(key string, value []byte) error {
	return s.put(bucketKV, key, value)
}

func (s *Store) Delete(key string) error {
	return s.delete(bucketKV, key)
}

// === Catalog cache ===

// GetCached decodes a cached value into dest and returns its fetch time
// as a Unix timestamp. Entries that no longer decode are reported missing.
func (s *Store) GetCached(key string, dest any) (int64, bool) {
	data, ok, err := s.get(bucketCache, key)
	if err != nil || !ok {
		return 0, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return 0, false
	}
	if err := json.Unmarshal(entry.Data, dest); err != nil {
		return 0, false
	}
	return entry.FetchedAt, true
}

// SaveCached stores value stamped with the current time.
func (s *Store) SaveCached(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(cacheEntry{FetchedAt: s.now().Unix(), Data: payload})
	if err != nil {
		return err
	}
	return s.put(bucketCache, key, data)
}

// InvalidateCache wipes every cached catalog response, leaving the
// key-value bucket alone.
func (s *Store) InvalidateCache() error {
	s.mu.Lock()
	prefix := string(bucketCache) + ":"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCache)
		if b == nil {
			return nil
		}
		// Collect first; deleting under a live cursor skips keys
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
