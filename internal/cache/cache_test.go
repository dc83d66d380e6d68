package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pdiddy/citegraph/pkg/types"
)

// --- test helpers ---

// scriptedProvider serves canned responses keyed by Key(id, dir) and
// counts how often it is called.
type scriptedProvider struct {
	calls int
	refs  map[string]*types.PaperRefs
	err   error
}

func (p *scriptedProvider) Fetch(_ context.Context, id types.PaperID, dir types.Direction) (*types.PaperRefs, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	refs, ok := p.refs[Key(id, dir)]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s %s", id, dir)
	}
	return refs, nil
}

func sampleRefs(id string) *types.PaperRefs {
	return &types.PaperRefs{
		Paper: types.Paper{ID: types.PaperID(id), Title: "Paper " + id, Year: 2017},
		References: []types.Paper{
			{ID: "arXiv:1409.0473", Title: "Neural Machine Translation by Jointly Learning to Align and Translate"},
		},
	}
}

// --- key format ---

func TestKeyCombinesIDAndDirection(t *testing.T) {
	got := Key("arXiv:1706.03762", types.DirReferences)
	if got != "arXiv:1706.03762|refs" {
		t.Errorf("Key = %q", got)
	}
	got = Key("DOI:10.1038/nature14539", types.DirBoth)
	if got != "DOI:10.1038/nature14539|refs+cits" {
		t.Errorf("Key = %q", got)
	}
}

// --- source ---

func TestSourceMissCallsProviderAndStores(t *testing.T) {
	id := types.PaperID("arXiv:1706.03762")
	provider := &scriptedProvider{refs: map[string]*types.PaperRefs{
		Key(id, types.DirReferences): sampleRefs(string(id)),
	}}
	store := NewMemory()
	src := NewSource(store, provider, 0)

	refs, err := src.Fetch(context.Background(), id, types.DirReferences)
	if err != nil {
		t.Fatal(err)
	}
	if refs.Paper.Title != "Paper arXiv:1706.03762" {
		t.Errorf("Title = %q", refs.Paper.Title)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if src.Requests() != 1 {
		t.Errorf("Requests = %d, want 1", src.Requests())
	}

	e, err := store.Get(Key(id, types.DirReferences))
	if err != nil {
		t.Fatalf("entry not stored: %v", err)
	}
	if e.Negative() {
		t.Error("stored entry is negative")
	}
	if e.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestSourceHitSkipsProvider(t *testing.T) {
	id := types.PaperID("arXiv:1706.03762")
	provider := &scriptedProvider{refs: map[string]*types.PaperRefs{
		Key(id, types.DirReferences): sampleRefs(string(id)),
	}}
	src := NewSource(NewMemory(), provider, 0)

	if _, err := src.Fetch(context.Background(), id, types.DirReferences); err != nil {
		t.Fatal(err)
	}
	refs, err := src.Fetch(context.Background(), id, types.DirReferences)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs.References) != 1 {
		t.Errorf("references = %d, want 1", len(refs.References))
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if src.Requests() != 1 {
		t.Errorf("Requests = %d, want 1 (hits must not count)", src.Requests())
	}
}

func TestSourceDirectionsCachedSeparately(t *testing.T) {
	id := types.PaperID("arXiv:1706.03762")
	provider := &scriptedProvider{refs: map[string]*types.PaperRefs{
		Key(id, types.DirReferences): sampleRefs(string(id)),
		Key(id, types.DirBoth):       sampleRefs(string(id)),
	}}
	src := NewSource(NewMemory(), provider, 0)

	if _, err := src.Fetch(context.Background(), id, types.DirReferences); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Fetch(context.Background(), id, types.DirBoth); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestSourceNegativeHit(t *testing.T) {
	id := types.PaperID("arXiv:9999.00001")
	provider := &scriptedProvider{}
	store := NewMemory()
	key := Key(id, types.DirReferences)
	if err := store.Put(&Entry{Key: key, Err: "paper not found", FetchedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	src := NewSource(store, provider, 0)

	_, err := src.Fetch(context.Background(), id, types.DirReferences)
	if !errors.Is(err, ErrNegative) {
		t.Fatalf("err = %v, want ErrNegative", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0", provider.calls)
	}
	if src.Requests() != 0 {
		t.Errorf("Requests = %d, want 0", src.Requests())
	}
}

func TestSourcePermanentErrorRecorded(t *testing.T) {
	id := types.PaperID("arXiv:9999.00001")
	notFound := errors.New("paper not found")
	provider := &scriptedProvider{err: notFound}
	store := NewMemory()
	src := NewSource(store, provider, 0)
	src.Permanent = func(err error) bool { return errors.Is(err, notFound) }

	_, err := src.Fetch(context.Background(), id, types.DirReferences)
	if !errors.Is(err, notFound) {
		t.Fatalf("err = %v, want the provider error", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}

	// The failure is replayed from the store on the next fetch.
	_, err = src.Fetch(context.Background(), id, types.DirReferences)
	if !errors.Is(err, ErrNegative) {
		t.Fatalf("second err = %v, want ErrNegative", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestSourceTransientErrorNotRecorded(t *testing.T) {
	id := types.PaperID("arXiv:1706.03762")
	provider := &scriptedProvider{err: errors.New("HTTP 503")}
	store := NewMemory()
	src := NewSource(store, provider, 0)
	src.Permanent = func(error) bool { return false }

	for i := 0; i < 2; i++ {
		if _, err := src.Fetch(context.Background(), id, types.DirReferences); err == nil {
			t.Fatal("expected error")
		}
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (transient failures retry)", provider.calls)
	}
	if n, _ := store.Len(); n != 0 {
		t.Errorf("store entries = %d, want 0", n)
	}
}

func TestSourceNilPermanentRecordsNothing(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("paper not found")}
	store := NewMemory()
	src := NewSource(store, provider, 0)

	if _, err := src.Fetch(context.Background(), "arXiv:1706.03762", types.DirReferences); err == nil {
		t.Fatal("expected error")
	}
	if n, _ := store.Len(); n != 0 {
		t.Errorf("store entries = %d, want 0", n)
	}
}

func TestSourceStaleEntryRefetched(t *testing.T) {
	id := types.PaperID("arXiv:1706.03762")
	provider := &scriptedProvider{refs: map[string]*types.PaperRefs{
		Key(id, types.DirReferences): sampleRefs(string(id)),
	}}
	src := NewSource(NewMemory(), provider, time.Hour)

	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return base }

	if _, err := src.Fetch(context.Background(), id, types.DirReferences); err != nil {
		t.Fatal(err)
	}

	// Within MaxAge the entry is served from the store.
	src.now = func() time.Time { return base.Add(30 * time.Minute) }
	if _, err := src.Fetch(context.Background(), id, types.DirReferences); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}

	// Past MaxAge it is fetched again.
	src.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := src.Fetch(context.Background(), id, types.DirReferences); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestSourceMaxAgeZeroNeverStale(t *testing.T) {
	id := types.PaperID("arXiv:1706.03762")
	provider := &scriptedProvider{refs: map[string]*types.PaperRefs{
		Key(id, types.DirReferences): sampleRefs(string(id)),
	}}
	src := NewSource(NewMemory(), provider, 0)

	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return base }
	if _, err := src.Fetch(context.Background(), id, types.DirReferences); err != nil {
		t.Fatal(err)
	}

	src.now = func() time.Time { return base.AddDate(1, 0, 0) }
	if _, err := src.Fetch(context.Background(), id, types.DirReferences); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

// --- memory store ---

func TestMemoryStoreRoundtrip(t *testing.T) {
	store := NewMemory()
	e := &Entry{
		Key:       "arXiv:1706.03762|refs",
		Refs:      sampleRefs("arXiv:1706.03762"),
		FetchedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Put(e); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(e.Key)
	if err != nil {
		t.Fatal(err)
	}
	if got.Refs.Paper.Title != e.Refs.Paper.Title {
		t.Errorf("Title = %q", got.Refs.Paper.Title)
	}
	if len(got.Refs.References) != 1 {
		t.Errorf("references = %d, want 1", len(got.Refs.References))
	}
	if !got.FetchedAt.Equal(e.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, e.FetchedAt)
	}
}

func TestMemoryStoreIsolatesEntries(t *testing.T) {
	store := NewMemory()
	e := &Entry{Key: "k", Refs: sampleRefs("arXiv:1706.03762"), FetchedAt: time.Now()}
	if err := store.Put(e); err != nil {
		t.Fatal(err)
	}

	// Mutating what Put received or Get returned must not change the store.
	e.Refs.Paper.Title = "mutated after put"
	got, err := store.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if got.Refs.Paper.Title != "Paper arXiv:1706.03762" {
		t.Errorf("Title = %q, store shares memory with caller", got.Refs.Paper.Title)
	}
	got.Refs.Paper.Title = "mutated after get"
	again, err := store.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if again.Refs.Paper.Title != "Paper arXiv:1706.03762" {
		t.Errorf("Title = %q, store shares memory with caller", again.Refs.Paper.Title)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemory()
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreKeysSorted(t *testing.T) {
	store := NewMemory()
	for _, k := range []string{"c|refs", "a|refs", "b|refs"} {
		if err := store.Put(&Entry{Key: k, FetchedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := store.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a|refs", "b|refs", "c|refs"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestMemoryStoreDeleteAndClear(t *testing.T) {
	store := NewMemory()
	for _, k := range []string{"a", "b"} {
		if err := store.Put(&Entry{Key: k, FetchedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key still present: %v", err)
	}
	if n, _ := store.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Len(); n != 0 {
		t.Errorf("Len after clear = %d, want 0", n)
	}
}
