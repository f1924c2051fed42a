// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"testing"

	"github.com/bindery/bindery/match"
	"github.com/bindery/bindery/metrics"
	"github.com/bindery/bindery/record"
)

func TestQueryPattern(t *testing.T) {
	s := newTestStore(t)
	mustTransact(t, s, []Op{
		{Kind: AddOp, ID: "a", Value: map[string]any{"name": "alice", "role": "admin"}},
		{Kind: AddOp, ID: "b", Value: map[string]any{"name": "bob", "role": "viewer"}},
		{Kind: AddOp, ID: "c", Value: map[string]any{"name": "carol", "role": "admin"}},
	})

	result, err := s.Query(context.Background(), map[string]any{"role": "admin"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Cardinality() != 2 {
		t.Fatalf("Expected cardinality 2 but got %v", result.Cardinality())
	}
	for _, name := range []string{"alice", "carol"} {
		ok, err := result.Contains(map[string]any{"name": name, "role": "admin"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("Expected result to contain %v", name)
		}
	}
}

func TestQueryDuplicateContent(t *testing.T) {
	s := newTestStore(t)

	// Two ids holding structurally equal records query as multiplicity two.
	same := map[string]any{"role": "admin"}
	mustTransact(t, s, []Op{
		{Kind: AddOp, ID: "a", Value: same},
		{Kind: AddOp, ID: "b", Value: same},
	})

	result, err := s.Query(context.Background(), map[string]any{"role": "admin"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Len() != 1 {
		t.Fatalf("Expected 1 distinct record but got %v", result.Len())
	}
	n, err := result.Count(same)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected multiplicity 2 but got %v", n)
	}
}

func TestQueryCache(t *testing.T) {
	m := metrics.New()
	s := newTestStore(t, WithMetrics(m))
	mustTransact(t, s, []Op{
		{Kind: AddOp, ID: "a", Value: map[string]any{"role": "admin"}},
		{Kind: AddOp, ID: "b", Value: map[string]any{"role": "viewer"}},
	})

	pattern := map[string]any{"role": "admin"}
	first, err := s.Query(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := m.Counter(metrics.StoreQueryCacheHit).Value(); n != uint64(0) {
		t.Fatalf("Expected no cache hits but got %v", n)
	}

	second, err := s.Query(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := m.Counter(metrics.StoreQueryCacheHit).Value(); n != uint64(1) {
		t.Fatalf("Expected 1 cache hit but got %v", n)
	}
	if !first.Equal(second) {
		t.Fatalf("Expected equal results but got %v and %v", first, second)
	}
}

func TestQueryCacheInvalidation(t *testing.T) {
	m := metrics.New()
	s := newTestStore(t, WithMetrics(m))
	mustTransact(t, s, []Op{{Kind: AddOp, ID: "a", Value: map[string]any{"role": "admin"}}})

	pattern := map[string]any{"role": "admin"}
	if _, err := s.Query(context.Background(), pattern); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	mustTransact(t, s, []Op{{Kind: AddOp, ID: "b", Value: map[string]any{"name": "bob", "role": "admin"}}})

	result, err := s.Query(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := m.Counter(metrics.StoreQueryCacheHit).Value(); n != uint64(0) {
		t.Fatalf("Expected commit to invalidate the cache but got %v hits", n)
	}
	if result.Cardinality() != 2 {
		t.Fatalf("Expected cardinality 2 but got %v", result.Cardinality())
	}
}

func TestQueryCachedResultIsolated(t *testing.T) {
	s := newTestStore(t)
	mustTransact(t, s, []Op{{Kind: AddOp, ID: "a", Value: map[string]any{"role": "admin"}}})

	pattern := map[string]any{"role": "admin"}
	first, err := s.Query(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := first.Add(map[string]any{"role": "admin", "name": "extra"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second, err := s.Query(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if second.Cardinality() != 1 {
		t.Fatalf("Expected cached result to be isolated from caller mutation but got %v", second)
	}
}

func TestQueryPredicateNotCached(t *testing.T) {
	m := metrics.New()
	s := newTestStore(t, WithMetrics(m))
	mustTransact(t, s, []Op{{Kind: AddOp, ID: "a", Value: map[string]any{"x": 1.0}}})

	pred := match.Predicate(func(rec *record.Record) bool {
		_, ok := rec.Get("x")
		return ok
	})
	for i := 0; i < 2; i++ {
		result, err := s.Query(context.Background(), pred)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Cardinality() != 1 {
			t.Fatalf("Expected cardinality 1 but got %v", result.Cardinality())
		}
	}
	if n := m.Counter(metrics.StoreQueryCacheHit).Value(); n != uint64(0) {
		t.Fatalf("Expected predicate queries to bypass the cache but got %v hits", n)
	}
}

func TestQueryWildcard(t *testing.T) {
	m := metrics.New()
	s := newTestStore(t, WithMetrics(m))
	mustTransact(t, s, []Op{
		{Kind: AddOp, ID: "a", Value: map[string]any{"name": "alice", "role": "admin"}},
		{Kind: AddOp, ID: "b", Value: map[string]any{"name": "bob"}},
	})

	pattern := map[string]any{"role": match.Wildcard}
	result, err := s.Query(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Cardinality() != 1 {
		t.Fatalf("Expected cardinality 1 but got %v", result.Cardinality())
	}

	if _, err := s.Query(context.Background(), pattern); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n := m.Counter(metrics.StoreQueryCacheHit).Value(); n != uint64(1) {
		t.Fatalf("Expected wildcard pattern to be cacheable but got %v hits", n)
	}
}

func TestQueryInvalidPattern(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Query(context.Background(), 42)
	if !match.IsInvalidPattern(err) {
		t.Fatalf("Expected invalid pattern error but got %v", err)
	}
}

func TestQueryEmptyStore(t *testing.T) {
	s := newTestStore(t)
	result, err := s.Query(context.Background(), map[string]any{"role": "admin"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsEmpty() {
		t.Fatalf("Expected empty result but got %v", result)
	}
}
