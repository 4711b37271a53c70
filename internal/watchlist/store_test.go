package watchlist

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/mmcdole/cinescope/internal/domain"
)

// memKV is an in-memory domain.KVStore that counts writes and can fail them.
type memKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	puts    int
	deletes int
	putErr  error
	getErr  error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return append([]byte(nil), v...), ok, nil
}

func (m *memKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *memKV) raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return string(v), ok
}

func (m *memKV) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *memKV) failPuts(err error) {
	m.mu.Lock()
	m.putErr = err
	m.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadStore(t *testing.T, kv *memKV) *Store {
	t.Helper()
	s := Load(kv, discardLogger())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func movie(id int64, title string) domain.Movie {
	return domain.NewMovie(id, map[string]any{"title": title})
}

func ids(movies []domain.Movie) []int64 {
	out := make([]int64, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStore_AddToEmpty(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv)

	if !s.Add(movie(1, "X")) {
		t.Fatal("Add returned false for a new movie")
	}
	if !s.Contains(1) {
		t.Fatal("Contains(1) = false after Add")
	}

	list := s.List()
	if len(list) != 1 || list[0].ID != 1 || list[0].Title() != "X" {
		t.Fatalf("List = %#v, want one movie id=1 title=X", list)
	}

	s.Flush()
	raw, ok := kv.raw(StorageKey)
	if !ok {
		t.Fatal("snapshot not written after Add")
	}
	stored, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode(stored) returned error: %v", err)
	}
	if !equalIDs(ids(stored), []int64{1}) {
		t.Fatalf("stored ids = %v, want [1]", ids(stored))
	}
}

func TestStore_RemoveExisting(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = []byte(`[{"id":1},{"id":2}]`)
	s := loadStore(t, kv)

	if !s.Remove(1) {
		t.Fatal("Remove(1) returned false")
	}
	if s.Contains(1) {
		t.Fatal("Contains(1) = true after Remove")
	}
	if got := ids(s.List()); !equalIDs(got, []int64{2}) {
		t.Fatalf("List ids = %v, want [2]", got)
	}

	s.Flush()
	raw, _ := kv.raw(StorageKey)
	if raw != `[{"id":2}]` {
		t.Fatalf("stored snapshot = %s, want [{\"id\":2}]", raw)
	}
}

func TestStore_DuplicateAddKeepsOriginal(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = []byte(`[{"id":5,"title":"original"}]`)
	s := loadStore(t, kv)

	if s.Add(movie(5, "dup")) {
		t.Fatal("Add returned true for a duplicate id")
	}

	list := s.List()
	if len(list) != 1 {
		t.Fatalf("len(List) = %d, want 1", len(list))
	}
	if list[0].Title() != "original" {
		t.Fatalf("title = %q, want original record retained", list[0].Title())
	}

	s.Flush()
	if kv.putCount() != 0 {
		t.Fatalf("duplicate add wrote %d snapshots, want 0", kv.putCount())
	}
}

func TestStore_AddTwiceIsIdempotent(t *testing.T) {
	s := loadStore(t, newMemKV())

	s.Add(movie(7, "A"))
	before := ids(s.List())
	s.Add(movie(7, "A"))
	if after := ids(s.List()); !equalIDs(before, after) {
		t.Fatalf("second Add changed list: %v -> %v", before, after)
	}
}

func TestStore_RemoveMissingIsNoop(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv)
	s.Add(movie(1, "A"))
	s.Flush()
	puts := kv.putCount()

	if s.Remove(99) {
		t.Fatal("Remove(99) returned true for a missing id")
	}
	if got := ids(s.List()); !equalIDs(got, []int64{1}) {
		t.Fatalf("List ids = %v, want [1]", got)
	}
	s.Flush()
	if kv.putCount() != puts {
		t.Fatalf("missing remove wrote a snapshot (%d -> %d)", puts, kv.putCount())
	}
}

func TestLoad_CorruptValuesResetAndClear(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"garbage", "not valid data"},
		{"object", `{"id":1}`},
		{"null", "null"},
		{"number", "42"},
		{"empty", ""},
		{"truncated", `[{"id":1},`},
		{"element without id", `[{"title":"x"}]`},
		{"fractional id", `[{"id":1.5}]`},
		{"non-object element", `[1,2,3]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kv := newMemKV()
			kv.data[StorageKey] = []byte(tc.raw)

			s := loadStore(t, kv)

			if n := len(s.List()); n != 0 {
				t.Fatalf("len(List) = %d, want 0", n)
			}
			if _, ok := kv.raw(StorageKey); ok {
				t.Fatal("corrupt snapshot was not deleted")
			}
			s.Flush()
			if kv.putCount() != 0 {
				t.Fatalf("Load wrote %d snapshots, want 0", kv.putCount())
			}
		})
	}
}

func TestLoad_MissingAndEmptyDoNotWrite(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv)
	s.Flush()

	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	if kv.putCount() != 0 || kv.deletes != 0 {
		t.Fatalf("Load touched storage: puts=%d deletes=%d", kv.putCount(), kv.deletes)
	}

	kv.data[StorageKey] = []byte(`[]`)
	s2 := loadStore(t, kv)
	s2.Flush()
	if s2.Len() != 0 || kv.putCount() != 0 {
		t.Fatalf("empty snapshot: Len=%d puts=%d, want 0/0", s2.Len(), kv.putCount())
	}
}

func TestLoad_ReadErrorKeepsRecord(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = []byte(`[{"id":1}]`)
	kv.getErr = errors.New("disk on fire")

	s := loadStore(t, kv)
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0 on read error", s.Len())
	}
	if _, ok := kv.data[StorageKey]; !ok {
		t.Fatal("unreadable snapshot was deleted")
	}
}

func TestLoad_DropsRepeatedIDs(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = []byte(`[{"id":3,"title":"first"},{"id":4},{"id":3,"title":"second"}]`)

	s := loadStore(t, kv)
	list := s.List()
	if !equalIDs(ids(list), []int64{3, 4}) {
		t.Fatalf("List ids = %v, want [3 4]", ids(list))
	}
	if list[0].Title() != "first" {
		t.Fatalf("kept title = %q, want first occurrence", list[0].Title())
	}
}

func TestStore_RoundTripThroughStorage(t *testing.T) {
	kv := newMemKV()
	s := Load(kv, discardLogger())

	s.Add(domain.NewMovie(10, map[string]any{"title": "Ten", "vote_average": 7.25, "poster_path": "/p.jpg"}))
	s.Add(movie(3, "Three"))
	s.Add(movie(8, "Eight"))
	s.Remove(3)
	s.Add(movie(3, "Three again"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	fresh := loadStore(t, kv)
	got := fresh.List()
	if !equalIDs(ids(got), []int64{10, 8, 3}) {
		t.Fatalf("reloaded ids = %v, want [10 8 3]", ids(got))
	}
	if got[0].Rating() != 7.25 || got[0].PosterPath() != "/p.jpg" {
		t.Fatalf("passthrough fields lost: %#v", got[0].Fields)
	}
	if got[2].Title() != "Three again" {
		t.Fatalf("title = %q, want re-added record", got[2].Title())
	}
}

func TestStore_PassthroughFieldsPreservedExactly(t *testing.T) {
	kv := newMemKV()
	const snapshot = `[{"adult":false,"genre_ids":[28,12],"id":550,"title":"Fight Club","vote_average":8.433}]`
	kv.data[StorageKey] = []byte(snapshot)

	s := loadStore(t, kv)
	s.Add(movie(1, "X"))
	s.Remove(1)
	s.Flush()

	raw, _ := kv.raw(StorageKey)
	if raw != snapshot {
		t.Fatalf("snapshot changed after add/remove:\n got %s\nwant %s", raw, snapshot)
	}
}

func TestStore_RandomOpsMatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		kv := newMemKV()
		s := Load(kv, discardLogger())

		var model []int64
		present := map[int64]bool{}

		for i := 0; i < 200; i++ {
			id := int64(rng.Intn(15))
			if rng.Intn(2) == 0 {
				added := s.Add(movie(id, fmt.Sprintf("m%d", id)))
				if added == present[id] {
					t.Fatalf("round %d op %d: Add(%d) = %v with present=%v", round, i, id, added, present[id])
				}
				if !present[id] {
					present[id] = true
					model = append(model, id)
				}
			} else {
				removed := s.Remove(id)
				if removed != present[id] {
					t.Fatalf("round %d op %d: Remove(%d) = %v with present=%v", round, i, id, removed, present[id])
				}
				if present[id] {
					delete(present, id)
					kept := model[:0]
					for _, m := range model {
						if m != id {
							kept = append(kept, m)
						}
					}
					model = kept
				}
			}
		}

		if got := ids(s.List()); !equalIDs(got, model) {
			t.Fatalf("round %d: List ids = %v, want %v", round, got, model)
		}

		_ = s.Close()
		raw, _ := kv.raw(StorageKey)
		stored, err := Decode([]byte(raw))
		if err != nil && len(model) > 0 {
			t.Fatalf("round %d: Decode(stored) returned error: %v", round, err)
		}
		if len(model) > 0 && !equalIDs(ids(stored), model) {
			t.Fatalf("round %d: stored ids = %v, want %v", round, ids(stored), model)
		}
	}
}

func TestStore_WriteFailureIsNonFatal(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv)
	kv.failPuts(errors.New("quota exceeded"))

	if !s.Add(movie(1, "A")) {
		t.Fatal("Add returned false while storage is failing")
	}
	s.Flush()

	if err := s.LastPersistError(); err == nil || err.Error() != "quota exceeded" {
		t.Fatalf("LastPersistError = %v, want quota exceeded", err)
	}
	if !s.Contains(1) || s.Len() != 1 {
		t.Fatal("in-memory mutation rolled back after write failure")
	}

	kv.failPuts(nil)
	s.Add(movie(2, "B"))
	s.Flush()
	if err := s.LastPersistError(); err != nil {
		t.Fatalf("LastPersistError = %v after a successful write, want nil", err)
	}
	raw, _ := kv.raw(StorageKey)
	stored, _ := Decode([]byte(raw))
	if !equalIDs(ids(stored), []int64{1, 2}) {
		t.Fatalf("stored ids = %v, want full state [1 2]", ids(stored))
	}
}

func TestStore_ClearWritesOnce(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = []byte(`[{"id":1},{"id":2},{"id":3}]`)
	s := loadStore(t, kv)

	if !s.Clear() {
		t.Fatal("Clear returned false on a non-empty list")
	}
	s.Flush()
	if s.Len() != 0 {
		t.Fatalf("Len = %d after Clear, want 0", s.Len())
	}
	raw, _ := kv.raw(StorageKey)
	if raw != `[]` {
		t.Fatalf("stored snapshot = %q, want []", raw)
	}
	if kv.putCount() != 1 {
		t.Fatalf("Clear wrote %d snapshots, want 1", kv.putCount())
	}
	if s.Clear() {
		t.Fatal("Clear returned true on an empty list")
	}
}

func TestStore_ListIsACopy(t *testing.T) {
	s := loadStore(t, newMemKV())
	s.Add(movie(1, "A"))

	list := s.List()
	list[0].Fields["title"] = "mutated"
	list[0].ID = 99

	again := s.List()
	if again[0].ID != 1 || again[0].Title() != "A" {
		t.Fatalf("store mutated through List result: %#v", again[0])
	}
}

func TestStore_Toggle(t *testing.T) {
	s := loadStore(t, newMemKV())

	if !s.Toggle(movie(4, "D")) {
		t.Fatal("Toggle on absent movie returned false")
	}
	if s.Toggle(movie(4, "D")) {
		t.Fatal("Toggle on saved movie returned true")
	}
	if s.Contains(4) {
		t.Fatal("movie still saved after second Toggle")
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	changes []domain.WatchlistChange
}

func (r *recordingObserver) OnWatchlistChange(c domain.WatchlistChange) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func TestStore_ObserversSeeEffectiveChanges(t *testing.T) {
	s := loadStore(t, newMemKV())
	obs := &recordingObserver{}
	s.Subscribe(obs)

	s.Add(movie(1, "A"))
	s.Add(movie(1, "A"))
	s.Add(movie(2, "B"))
	s.Remove(5)
	s.Remove(1)
	s.Clear()

	want := []domain.WatchlistChange{
		{Kind: domain.WatchlistAdded, MovieID: 1, Len: 1},
		{Kind: domain.WatchlistAdded, MovieID: 2, Len: 2},
		{Kind: domain.WatchlistRemoved, MovieID: 1, Len: 1},
		{Kind: domain.WatchlistCleared, Len: 0},
	}
	if len(obs.changes) != len(want) {
		t.Fatalf("changes = %+v, want %+v", obs.changes, want)
	}
	for i := range want {
		if obs.changes[i] != want[i] {
			t.Fatalf("change %d = %+v, want %+v", i, obs.changes[i], want[i])
		}
	}
}

func TestStore_SharedAcrossConsumers(t *testing.T) {
	s := loadStore(t, newMemKV())

	// Two independent consumers holding the same instance
	badge := func() int { return s.Len() }
	card := func(id int64) bool { return s.Contains(id) }

	s.Add(movie(11, "K"))
	if badge() != 1 || !card(11) {
		t.Fatalf("consumers out of sync: badge=%d card=%v", badge(), card(11))
	}
}

func TestStore_ConcurrentMutations(t *testing.T) {
	kv := newMemKV()
	s := Load(kv, discardLogger())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := int64(g*100 + i)
				s.Add(movie(id, "m"))
				_ = s.Contains(id)
				_ = s.List()
				if i%2 == 0 {
					s.Remove(id)
				}
			}
		}(g)
	}
	wg.Wait()
	_ = s.Close()

	if s.Len() != 8*25 {
		t.Fatalf("Len = %d, want %d", s.Len(), 8*25)
	}

	raw, _ := kv.raw(StorageKey)
	stored, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode(stored) returned error: %v", err)
	}
	got := ids(stored)
	want := ids(s.List())
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	if !equalIDs(got, want) {
		t.Fatalf("stored snapshot diverged from memory: %d vs %d ids", len(got), len(want))
	}
}

func TestStore_MutationAfterCloseIsReported(t *testing.T) {
	kv := newMemKV()
	s := Load(kv, discardLogger())
	_ = s.Close()

	s.Add(movie(1, "A"))
	if !s.Contains(1) {
		t.Fatal("mutation after Close not applied in memory")
	}
	if !errors.Is(s.LastPersistError(), ErrClosed) {
		t.Fatalf("LastPersistError = %v, want ErrClosed", s.LastPersistError())
	}
	if kv.putCount() != 0 {
		t.Fatalf("closed store wrote %d snapshots", kv.putCount())
	}
}
