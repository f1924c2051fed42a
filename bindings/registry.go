// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package bindings implements the binding multiset engine: an interning
// registry that maps content digests to canonical binding records, and a
// multiset of binding records keyed by those digests.
package bindings

import (
	"fmt"
	"sync"
	"time"

	"github.com/bindery/bindery/logging"
	"github.com/bindery/bindery/metrics"
	"github.com/bindery/bindery/record"
)

// maxResolveDepth bounds resolver rewriting so that a resolver which keeps
// producing wrappers cannot loop forever.
const maxResolveDepth = 100

// Resolver rewrites wrapper values into the value they stand for before
// admission. It returns the replacement and true if it applied, or the input
// and false if the value needs no rewriting. Resolvers are applied repeatedly
// until they report no rewrite.
type Resolver func(x any) (any, bool)

type entry struct {
	rec *record.Record

	// admitted is set when the record enters the registry and is retained
	// for debugging.
	admitted bool
}

// Registry is an append-only interning store mapping content digests to their
// canonical binding records. A digest is inserted at most once; subsequent
// admissions of structurally equal records return the existing digest. All
// methods are safe for concurrent use.
type Registry struct {
	mtx      sync.RWMutex
	entries  map[record.Digest]*entry
	resolver Resolver
	metrics  metrics.Metrics
	logger   logging.Logger
}

// Opt configures a registry.
type Opt func(*Registry)

// WithResolver sets the resolver applied to values before admission.
func WithResolver(r Resolver) Opt {
	return func(reg *Registry) {
		reg.resolver = r
	}
}

// WithMetrics sets the metrics provider the registry records into.
func WithMetrics(m metrics.Metrics) Opt {
	return func(reg *Registry) {
		reg.metrics = m
	}
}

// WithLogger sets the logger used by the registry.
func WithLogger(l logging.Logger) Opt {
	return func(reg *Registry) {
		reg.logger = l
	}
}

// New returns a new empty registry.
func New(opts ...Opt) *Registry {
	r := &Registry{
		entries: map[record.Digest]*entry{},
		metrics: metrics.NoOp(),
		logger:  logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var global = New()

// Global returns the process-wide default registry. Multisets constructed
// without an explicit registry bind to it.
func Global() *Registry {
	return global
}

// Intern admits x into the registry and returns its content digest. The value
// is resolved, converted to a canonical binding record, and inserted if no
// structurally equal record is present. Intern never overwrites: once a
// digest maps to a record, it maps to that record forever.
func (r *Registry) Intern(x any) (record.Digest, error) {
	start := time.Now()
	defer func() {
		r.metrics.Histogram(metrics.RegistryIntern).Update(time.Since(start).Nanoseconds())
	}()

	rec, err := r.admit(x)
	if err != nil {
		return record.Digest{}, err
	}
	return r.InternRecord(rec)
}

// InternRecord admits an already constructed binding record and returns its
// content digest. The resolver does not apply.
func (r *Registry) InternRecord(rec *record.Record) (record.Digest, error) {
	if rec == nil {
		return record.Digest{}, invalidArgumentError("cannot intern nil record")
	}
	d := rec.Digest()

	r.mtx.RLock()
	_, ok := r.entries[d]
	r.mtx.RUnlock()
	if ok {
		r.metrics.Counter(metrics.RegistryInternHit).Incr()
		return d, nil
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.entries[d]; ok {
		r.metrics.Counter(metrics.RegistryInternHit).Incr()
		return d, nil
	}
	r.entries[d] = &entry{rec: rec, admitted: true}
	r.metrics.Counter(metrics.RegistryInternMiss).Incr()
	r.logger.Debug("interned record %v", d)
	return d, nil
}

// Digest resolves and converts x like Intern but does not insert anything.
// Use it for read-only operations such as multiplicity lookups.
func (r *Registry) Digest(x any) (record.Digest, error) {
	rec, err := r.admit(x)
	if err != nil {
		return record.Digest{}, err
	}
	return rec.Digest(), nil
}

// Lookup returns the canonical record for the digest and true, or nil and
// false if the digest was never interned.
func (r *Registry) Lookup(d record.Digest) (*record.Record, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	e, ok := r.entries[d]
	if !ok {
		return nil, false
	}
	return e.rec, true
}

// Len returns the number of interned records.
func (r *Registry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.entries)
}

func (r *Registry) admit(x any) (*record.Record, error) {
	if r.resolver != nil {
		for depth := 0; ; depth++ {
			if depth == maxResolveDepth {
				return nil, &record.Error{
					Code:    record.CyclicStructureErr,
					Message: fmt.Sprintf("resolver did not reach a fixed point after %d rewrites", maxResolveDepth),
				}
			}
			y, ok := r.resolver(x)
			if !ok {
				break
			}
			x = y
		}
	}
	return record.InterfaceToRecord(x)
}
