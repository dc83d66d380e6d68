package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.db")
	store, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestSQLiteRoundtrip(t *testing.T) {
	store, _ := testSQLite(t)
	e := &Entry{
		Key:       "arXiv:1706.03762|refs",
		Refs:      sampleRefs("arXiv:1706.03762"),
		FetchedAt: time.Date(2026, 2, 10, 12, 0, 0, 123456789, time.UTC),
	}
	if err := store.Put(e); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(e.Key)
	if err != nil {
		t.Fatal(err)
	}
	if got.Key != e.Key {
		t.Errorf("Key = %q", got.Key)
	}
	if got.Negative() {
		t.Error("entry reported negative")
	}
	if got.Refs == nil || got.Refs.Paper.Title != "Paper arXiv:1706.03762" {
		t.Errorf("Refs = %+v", got.Refs)
	}
	if len(got.Refs.References) != 1 {
		t.Errorf("references = %d, want 1", len(got.Refs.References))
	}
	if !got.FetchedAt.Equal(e.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, e.FetchedAt)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")
	store, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	e := &Entry{Key: "arXiv:1706.03762|refs", Refs: sampleRefs("arXiv:1706.03762"), FetchedAt: time.Now().UTC()}
	if err := store.Put(e); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.Get(e.Key)
	if err != nil {
		t.Fatal(err)
	}
	if got.Refs.Paper.ID != "arXiv:1706.03762" {
		t.Errorf("ID = %q", got.Refs.Paper.ID)
	}
}

func TestSQLiteNegativeEntry(t *testing.T) {
	store, _ := testSQLite(t)
	e := &Entry{Key: "arXiv:9999.00001|refs", Err: "paper not found", FetchedAt: time.Now().UTC()}
	if err := store.Put(e); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(e.Key)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Negative() {
		t.Error("entry not negative")
	}
	if got.Err != "paper not found" {
		t.Errorf("Err = %q", got.Err)
	}
	if got.Refs != nil {
		t.Errorf("Refs = %+v, want nil", got.Refs)
	}
}

func TestSQLiteUpsert(t *testing.T) {
	store, _ := testSQLite(t)
	key := "arXiv:1706.03762|refs"
	if err := store.Put(&Entry{Key: key, Err: "transient", FetchedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(&Entry{Key: key, Refs: sampleRefs("arXiv:1706.03762"), FetchedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if got.Negative() {
		t.Error("second put did not replace the negative entry")
	}
	if n, _ := store.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

func TestSQLiteMissing(t *testing.T) {
	store, _ := testSQLite(t)
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteKeysDeleteClear(t *testing.T) {
	store, _ := testSQLite(t)
	for _, k := range []string{"c|refs", "a|refs", "b|refs"} {
		if err := store.Put(&Entry{Key: k, FetchedAt: time.Now().UTC()}); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a|refs", "b|refs", "c|refs"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	if err := store.Delete("b|refs"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Len(); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Len(); n != 0 {
		t.Errorf("Len after clear = %d, want 0", n)
	}
}

func TestSQLiteCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "responses.db")
	store, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.Put(&Entry{Key: "a", FetchedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
}
