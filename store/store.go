// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package store implements an in-memory transactional collection of named
// binding records layered on the interning registry.
//
// Records are keyed by caller-chosen string ids. All writes go through
// Transact which applies a batch of operations atomically, bumps the store
// revision, and reports the resulting changes. Reads are served under a
// shared lock; query results are cached until the next commit invalidates
// them.
package store

import (
	"context"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bindery/bindery/bindings"
	"github.com/bindery/bindery/logging"
	"github.com/bindery/bindery/metrics"
	"github.com/bindery/bindery/record"
)

// defaultQueryCacheSize is the number of query results retained between
// commits when the store is constructed without an explicit size.
const defaultQueryCacheSize = 128

// Store is an in-memory collection of binding records keyed by id. A store
// owns an interning registry; records returned by the store are canonical in
// that registry. All methods are safe for concurrent use.
type Store struct {
	mtx       sync.RWMutex
	reg       *bindings.Registry
	records   map[string]*storedRecord
	revision  uint64
	triggers  map[string]TriggerConfig
	cache     *lru.Cache[record.Digest, *bindings.Multiset]
	cacheSize int
	logger    logging.Logger
	metrics   metrics.Metrics
}

type storedRecord struct {
	rec *record.Record

	// revision of the commit that last wrote the record.
	revision uint64
}

// Opt configures a store created by New.
type Opt func(*Store)

// WithLogger sets the logger used by the store and its registry.
func WithLogger(l logging.Logger) Opt {
	return func(s *Store) {
		s.logger = l
	}
}

// WithMetrics sets the metrics provider the store records into.
func WithMetrics(m metrics.Metrics) Opt {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithQueryCacheSize overrides the default number of cached query results.
func WithQueryCacheSize(n int) Opt {
	return func(s *Store) {
		s.cacheSize = n
	}
}

// New returns a new empty store.
func New(opts ...Opt) (*Store, error) {
	s := &Store{
		records:   map[string]*storedRecord{},
		triggers:  map[string]TriggerConfig{},
		cacheSize: defaultQueryCacheSize,
		logger:    logging.NewNoOpLogger(),
		metrics:   metrics.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize <= 0 {
		return nil, invalidArgumentError("invalid query cache size: %d", s.cacheSize)
	}
	cache, err := lru.New[record.Digest, *bindings.Multiset](s.cacheSize)
	if err != nil {
		return nil, invalidArgumentError("invalid query cache size: %d", s.cacheSize)
	}
	s.cache = cache
	s.reg = bindings.New(
		bindings.WithResolver(resolveHandle),
		bindings.WithLogger(s.logger),
		bindings.WithMetrics(s.metrics),
	)
	return s, nil
}

// Registry returns the interning registry backing the store. Multisets meant
// to hold handles from this store must be bound to it.
func (s *Store) Registry() *bindings.Registry {
	return s.reg
}

// Handle is a stable reference to a stored record. Handles may be added to
// multisets bound to the store's registry; the registry resolves them to the
// record they refer to.
type Handle struct {
	ID       string
	Revision uint64

	rec *record.Record
}

// Record returns the record the handle refers to.
func (h Handle) Record() *record.Record {
	return h.rec
}

// resolveHandle rewrites store handles into the record they refer to. It is
// installed as the resolver of every store-owned registry.
func resolveHandle(x any) (any, bool) {
	switch h := x.(type) {
	case Handle:
		return h.rec, true
	case *Handle:
		return h.rec, true
	}
	return x, false
}

// Get returns a handle to the record stored under id.
func (s *Store) Get(id string) (Handle, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	sr, ok := s.records[id]
	if !ok {
		return Handle{}, notFoundError(id)
	}
	return Handle{ID: id, Revision: sr.revision, rec: sr.rec}, nil
}

// IDs returns the ids of all stored records in lexical order.
func (s *Store) IDs() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.records)
}

// Revision returns the revision of the most recent commit, or zero if no
// transaction has been applied yet.
func (s *Store) Revision() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.revision
}

// TriggerConfig contains the trigger registration configuration.
type TriggerConfig struct {

	// OnCommit is invoked after each successful commit with a report of the
	// changes. The store lock is held for the duration of the call, so the
	// callback must not call back into the store.
	OnCommit func(ctx context.Context, report *Report)
}

// Register adds a trigger that fires on every commit. Registering under an
// existing id replaces the previous trigger.
func (s *Store) Register(id string, config TriggerConfig) error {
	if config.OnCommit == nil {
		return invalidArgumentError("trigger %q has no callback", id)
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.triggers[id] = config
	return nil
}

// Unregister removes the trigger registered under id.
func (s *Store) Unregister(id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.triggers, id)
}
