// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package match

import (
	"testing"

	"github.com/bindery/bindery/record"
)

func mustRecord(t *testing.T, x any) *record.Record {
	t.Helper()
	rec, err := record.InterfaceToRecord(x)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestMatchPartialRecord(t *testing.T) {
	t.Parallel()

	rec := mustRecord(t, map[string]any{"svc": "auth", "n": 1, "ok": true})

	tests := []struct {
		note     string
		pattern  any
		expected bool
	}{
		{"empty pattern", map[string]any{}, true},
		{"nil pattern", nil, true},
		{"single field", map[string]any{"svc": "auth"}, true},
		{"two fields", map[string]any{"svc": "auth", "n": 1}, true},
		{"value mismatch", map[string]any{"svc": "other"}, false},
		{"absent field", map[string]any{"region": "eu"}, false},
		{"wildcard present", map[string]any{"svc": Wildcard}, true},
		{"wildcard absent", map[string]any{"region": Wildcard}, false},
		{"wildcard plus equality", map[string]any{"svc": Wildcard, "n": 1}, true},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			matched, err := Match(rec, tc.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if matched != tc.expected {
				t.Fatalf("Expected %v but got %v", tc.expected, matched)
			}
		})
	}
}

func TestMatchPredicate(t *testing.T) {
	t.Parallel()

	rec := mustRecord(t, map[string]any{"n": 5})

	matched, err := Match(rec, func(r *record.Record) bool {
		v, ok := r.Get("n")
		return ok && v.(record.Number) > 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Fatal("Expected predicate to match")
	}

	matched, err = Match(rec, Predicate(func(*record.Record) bool { return false }))
	if err != nil {
		t.Fatal(err)
	}
	if matched {
		t.Fatal("Expected predicate to reject")
	}
}

func TestMatchRecordPattern(t *testing.T) {
	t.Parallel()

	rec := mustRecord(t, map[string]any{"svc": "auth", "n": 1})
	pattern := mustRecord(t, map[string]any{"svc": "auth"})

	matched, err := Match(rec, pattern)
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Fatal("Expected record pattern to match")
	}

	matched, err = Match(rec, mustRecord(t, map[string]any{"svc": "auth", "extra": true}))
	if err != nil {
		t.Fatal(err)
	}
	if matched {
		t.Fatal("Expected record pattern with extra field to reject")
	}
}

func TestMatchNestedEquality(t *testing.T) {
	t.Parallel()

	rec := mustRecord(t, map[string]any{"meta": map[string]any{"a": 1, "b": 2}})

	// Nested values compare by whole-value equality, not partially.
	matched, err := Match(rec, map[string]any{"meta": map[string]any{"a": 1, "b": 2}})
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Fatal("Expected equal nested record to match")
	}

	matched, err = Match(rec, map[string]any{"meta": map[string]any{"a": 1}})
	if err != nil {
		t.Fatal(err)
	}
	if matched {
		t.Fatal("Expected partial nested record to reject")
	}
}

func TestMatchInvalidPattern(t *testing.T) {
	t.Parallel()

	rec := mustRecord(t, map[string]any{"x": 1})

	if _, err := Match(rec, 42); !IsInvalidPattern(err) {
		t.Fatalf("Expected invalid pattern error but got %v", err)
	}
	if _, err := Match(rec, map[string]any{"a": map[string]any{"b": Wildcard}}); !IsInvalidPattern(err) {
		t.Fatalf("Expected invalid pattern error for nested wildcard but got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	a, ok := Normalize(map[string]any{"svc": "auth", "n": Wildcard})
	if !ok {
		t.Fatal("Expected canonical form")
	}
	b, ok := Normalize(map[string]any{"n": Wildcard, "svc": "auth"})
	if !ok {
		t.Fatal("Expected canonical form")
	}
	if a.Digest() != b.Digest() {
		t.Fatalf("Expected equal pattern digests but got %v and %v", a.Digest(), b.Digest())
	}

	c, ok := Normalize(map[string]any{"svc": "auth"})
	if !ok {
		t.Fatal("Expected canonical form")
	}
	if a.Digest() == c.Digest() {
		t.Fatal("Expected different patterns to have different digests")
	}

	if _, ok := Normalize(func(*record.Record) bool { return true }); ok {
		t.Fatal("Expected no canonical form for predicates")
	}
	if _, ok := Normalize(map[string]any{"a": []any{Wildcard}}); ok {
		t.Fatal("Expected no canonical form for nested wildcard")
	}

	empty, ok := Normalize(nil)
	if !ok {
		t.Fatal("Expected canonical form for nil pattern")
	}
	rec, ok := Normalize(mustRecord(t, map[string]any{}))
	if !ok {
		t.Fatal("Expected canonical form for record pattern")
	}
	if empty.Digest() != rec.Digest() {
		t.Fatal("Expected nil and empty record patterns to normalize alike")
	}
}

func TestCompileReuse(t *testing.T) {
	t.Parallel()

	f, err := Compile(map[string]any{"svc": "auth"})
	if err != nil {
		t.Fatal(err)
	}

	if !f(mustRecord(t, map[string]any{"svc": "auth", "n": 1})) {
		t.Fatal("Expected match")
	}
	if f(mustRecord(t, map[string]any{"svc": "billing"})) {
		t.Fatal("Expected mismatch")
	}
	if f(nil) {
		t.Fatal("Expected nil record to never match")
	}
}
