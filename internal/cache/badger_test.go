package cache

import (
	"errors"
	"testing"
	"time"
)

func testBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadger("", true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerRoundtrip(t *testing.T) {
	store := testBadger(t)
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
	if got.Refs.Paper.Title != "Paper arXiv:1706.03762" {
		t.Errorf("Title = %q", got.Refs.Paper.Title)
	}
	if !got.FetchedAt.Equal(e.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, e.FetchedAt)
	}
}

func TestBadgerNegativeEntry(t *testing.T) {
	store := testBadger(t)
	if err := store.Put(&Entry{Key: "k", Err: "paper not found", FetchedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Negative() || got.Err != "paper not found" {
		t.Errorf("entry = %+v", got)
	}
}

func TestBadgerMissing(t *testing.T) {
	store := testBadger(t)
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBadgerKeysSorted(t *testing.T) {
	store := testBadger(t)
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
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if n, _ := store.Len(); n != 3 {
		t.Errorf("Len = %d, want 3", n)
	}
}

func TestBadgerDeleteAndClear(t *testing.T) {
	store := testBadger(t)
	for _, k := range []string{"a", "b"} {
		if err := store.Put(&Entry{Key: k, FetchedAt: time.Now().UTC()}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key still present: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Len(); n != 0 {
		t.Errorf("Len after clear = %d, want 0", n)
	}
}

func TestBadgerPersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewBadger(dir, false)
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

	reopened, err := NewBadger(dir, false)
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

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := NewBadger("", false); err == nil {
		t.Error("expected error for empty directory")
	}
}
