// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes metadata provider responses in a pluggable store.
// Every fetch the engine makes goes through Source, which serves recorded
// responses (including recorded failures) without touching the network and
// counts only live provider calls against the request budget.
// Implements: prd003-cache (R1-R5);
//
//	docs/ARCHITECTURE § Response Cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/citegraph/pkg/types"
)

// ErrNotFound reports a missing cache entry.
var ErrNotFound = errors.New("cache entry not found")

// ErrNegative wraps the recorded error of a negative entry, so callers can
// tell a replayed failure from a fresh one.
var ErrNegative = errors.New("cached failure")

// Key builds the store key for one query: normalized id plus direction.
// The direction is part of the key because a refs-only response and a
// refs-plus-citations response for the same paper are different payloads.
func Key(id types.PaperID, dir types.Direction) string {
	return string(id) + "|" + string(dir)
}

// Entry is one recorded provider response. Exactly one of Refs (a
// successful response) or Err (a negative entry recording a failure) is
// set. Per prd003-cache R1.2, R3.1.
type Entry struct {
	Key       string           `json:"key"`
	Refs      *types.PaperRefs `json:"refs,omitempty"`
	Err       string           `json:"err,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Negative reports whether the entry records a failure.
func (e *Entry) Negative() bool { return e.Err != "" }

// Store persists entries durably across runs. Entries are never evicted by
// the engine; staleness is the Source's policy. Implementations must treat
// Get of an absent key as ErrNotFound, not an error. Per prd003-cache R1.3.
type Store interface {
	// Get returns the entry for key, or ErrNotFound.
	Get(key string) (*Entry, error)

	// Put stores or replaces the entry under e.Key.
	Put(e *Entry) error

	// Delete removes one entry; an absent key is not an error.
	Delete(key string) error

	// Keys lists all stored keys, sorted.
	Keys() ([]string, error)

	// Len returns the entry count.
	Len() (int, error)

	// Clear removes all entries.
	Clear() error

	// Close releases store resources.
	Close() error
}

// Provider is the live metadata source behind the cache.
type Provider interface {
	Fetch(ctx context.Context, id types.PaperID, dir types.Direction) (*types.PaperRefs, error)
}

// Source is a memoizing proxy in front of a Provider. A hit returns the
// recorded response, or the recorded error for a negative entry, with no
// provider call; a miss calls the provider, records the outcome, and
// counts the call. Not safe for concurrent use.
// Per prd003-cache R2.1-R2.5.
type Source struct {
	store    Store
	provider Provider
	maxAge   time.Duration
	requests int
	now      func() time.Time

	// Permanent decides whether a provider error is recorded as a
	// negative entry. Nil records nothing, so transient failures are
	// retried on the next run.
	Permanent func(error) bool
}

// NewSource wraps provider with store. maxAge 0 means entries never go
// stale.
func NewSource(store Store, provider Provider, maxAge time.Duration) *Source {
	return &Source{
		store:    store,
		provider: provider,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Requests returns the number of live provider calls made through this
// Source. Cache hits do not count. Per prd001-exploration R2.2.
func (s *Source) Requests() int { return s.requests }

// Fetch serves the query from the store when possible, falling back to the
// provider. Provider failures the Permanent hook accepts are recorded as
// negative entries and replayed on later fetches without a provider call.
func (s *Source) Fetch(ctx context.Context, id types.PaperID, dir types.Direction) (*types.PaperRefs, error) {
	key := Key(id, dir)

	e, err := s.store.Get(key)
	if err == nil && !s.stale(e) {
		if e.Negative() {
			return nil, fmt.Errorf("paper %s: %w: %s", id, ErrNegative, e.Err)
		}
		return e.Refs, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	s.requests++
	refs, ferr := s.provider.Fetch(ctx, id, dir)
	if ferr != nil {
		if s.Permanent != nil && s.Permanent(ferr) {
			// Report the fetch error even if the negative write fails.
			_ = s.store.Put(&Entry{Key: key, Err: ferr.Error(), FetchedAt: s.now()})
		}
		return nil, ferr
	}

	if err := s.store.Put(&Entry{Key: key, Refs: refs, FetchedAt: s.now()}); err != nil {
		return nil, fmt.Errorf("writing cache: %w", err)
	}
	return refs, nil
}

func (s *Source) stale(e *Entry) bool {
	return s.maxAge > 0 && s.now().Sub(e.FetchedAt) > s.maxAge
}
