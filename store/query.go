// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"time"

	"github.com/bindery/bindery/bindings"
	"github.com/bindery/bindery/match"
	"github.com/bindery/bindery/metrics"
)

// Query returns the multiset of stored records matching the pattern. The
// pattern accepts everything match.Compile accepts. Results for normalizable
// patterns are cached until the next commit; predicate patterns are evaluated
// on every call.
//
// The returned multiset is bound to the store's registry and owned by the
// caller. Mutating it does not affect the store or the cache.
func (s *Store) Query(ctx context.Context, pattern any) (*bindings.Multiset, error) {
	start := time.Now()
	defer func() {
		s.metrics.Histogram(metrics.StoreQuery).Update(time.Since(start).Nanoseconds())
	}()

	f, err := match.Compile(pattern)
	if err != nil {
		return nil, err
	}
	key, cacheable := match.Normalize(pattern)

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	// The cache is only read and written under the store lock so that a
	// concurrent commit cannot purge between the scan below and the add.
	if cacheable {
		if cached, ok := s.cache.Get(key.Digest()); ok {
			s.metrics.Counter(metrics.StoreQueryCacheHit).Incr()
			return cached.Clone(), nil
		}
	}

	result := bindings.NewMultiset(s.reg)
	for _, sr := range s.records {
		if !f(sr.rec) {
			continue
		}
		if err := result.AddRecord(sr.rec); err != nil {
			return nil, err
		}
	}

	if cacheable {
		s.cache.Add(key.Digest(), result.Clone())
	}
	return result, nil
}
