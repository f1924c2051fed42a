// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"slices"
	"time"

	"github.com/bindery/bindery/metrics"
	"github.com/bindery/bindery/record"
)

// OpKind is the enumeration of transaction operations.
type OpKind int

// Transactions support add, remove, and replace operations.
const (
	AddOp OpKind = iota
	RemoveOp
	ReplaceOp
)

func (k OpKind) String() string {
	switch k {
	case AddOp:
		return "add"
	case RemoveOp:
		return "remove"
	case ReplaceOp:
		return "replace"
	}
	return "unknown"
}

// Op describes a single modification within a transaction.
type Op struct {
	Kind OpKind

	// ID names the record the operation applies to.
	ID string

	// Value holds the record to write for add and replace operations. It
	// accepts anything the registry can intern and is ignored for removes.
	Value any
}

// Report describes the outcome of a committed transaction.
type Report struct {

	// Revision is the store revision the commit produced.
	Revision uint64 `json:"revision"`

	// Changes groups the committed operations by kind. Each group maps the
	// record id to the content digest written, or for removes, the digest
	// removed.
	Changes *record.Record `json:"changes"`
}

// Transact applies ops atomically. Either every operation applies and the
// store revision is bumped, or the store is left untouched and an error
// describes the first operation that failed. Operations see the effects of
// earlier operations in the same transaction, so a remove followed by an add
// of the same id reinserts the record. At most one operation of each kind may
// name a given id.
//
// On success the query cache is invalidated, registered triggers fire with
// the commit report, and the report is returned.
func (s *Store) Transact(ctx context.Context, ops []Op) (*Report, error) {
	start := time.Now()
	defer func() {
		s.metrics.Histogram(metrics.StoreTransact).Update(time.Since(start).Nanoseconds())
	}()

	if len(ops) == 0 {
		return nil, invalidTransactionError("transaction contains no operations")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	staged := make(map[string]*storedRecord, len(ops))
	changes := record.NewRecord(nil)

	for _, op := range ops {
		frag, err := s.stage(staged, op)
		if err != nil {
			return nil, err
		}
		merged, ok := changes.Merge(frag)
		if !ok {
			return nil, invalidTransactionError("duplicate %v of record %q in one transaction", op.Kind, op.ID)
		}
		changes = merged
	}

	s.revision++
	for id, sr := range staged {
		if sr == nil {
			delete(s.records, id)
			continue
		}
		sr.revision = s.revision
		s.records[id] = sr
	}
	s.cache.Purge()

	report := &Report{Revision: s.revision, Changes: changes}
	s.logger.Debug("committed revision %d (%d ops)", s.revision, len(ops))

	for _, id := range s.triggerIDs() {
		s.triggers[id].OnCommit(ctx, report)
	}
	return report, nil
}

// Add stores value under id. It is shorthand for a single-op transaction.
func (s *Store) Add(ctx context.Context, id string, value any) (*Report, error) {
	return s.Transact(ctx, []Op{{Kind: AddOp, ID: id, Value: value}})
}

// Remove deletes the record under id. It is shorthand for a single-op
// transaction.
func (s *Store) Remove(ctx context.Context, id string) (*Report, error) {
	return s.Transact(ctx, []Op{{Kind: RemoveOp, ID: id}})
}

// stage validates one operation against the store and the operations staged
// before it, records its effect in staged, and returns the change fragment to
// merge into the commit report. A nil staged entry marks a removal.
func (s *Store) stage(staged map[string]*storedRecord, op Op) (*record.Record, error) {
	if op.ID == "" {
		return nil, invalidTransactionError("%v operation without an id", op.Kind)
	}
	switch op.Kind {
	case AddOp:
		if _, ok := s.lookupStaged(staged, op.ID); ok {
			return nil, conflictError("record %q already exists", op.ID)
		}
		rec, err := s.intern(op.Value)
		if err != nil {
			return nil, err
		}
		staged[op.ID] = &storedRecord{rec: rec}
		return fragment(op.Kind, op.ID, rec.Digest()), nil
	case RemoveOp:
		old, ok := s.lookupStaged(staged, op.ID)
		if !ok {
			return nil, notFoundError(op.ID)
		}
		staged[op.ID] = nil
		return fragment(op.Kind, op.ID, old.rec.Digest()), nil
	case ReplaceOp:
		if _, ok := s.lookupStaged(staged, op.ID); !ok {
			return nil, notFoundError(op.ID)
		}
		rec, err := s.intern(op.Value)
		if err != nil {
			return nil, err
		}
		staged[op.ID] = &storedRecord{rec: rec}
		return fragment(op.Kind, op.ID, rec.Digest()), nil
	}
	return nil, invalidTransactionError("invalid operation kind for record %q", op.ID)
}

// lookupStaged returns the record stored under id as the staged operations
// would leave it.
func (s *Store) lookupStaged(staged map[string]*storedRecord, id string) (*storedRecord, bool) {
	if sr, ok := staged[id]; ok {
		return sr, sr != nil
	}
	sr, ok := s.records[id]
	return sr, ok
}

// intern admits a transaction value into the registry and returns its
// canonical record.
func (s *Store) intern(x any) (*record.Record, error) {
	d, err := s.reg.Intern(x)
	if err != nil {
		return nil, err
	}
	// The digest was interned above, so the lookup cannot miss.
	rec, _ := s.reg.Lookup(d)
	return rec, nil
}

func fragment(kind OpKind, id string, d record.Digest) *record.Record {
	var key string
	switch kind {
	case AddOp:
		key = "added"
	case RemoveOp:
		key = "removed"
	default:
		key = "replaced"
	}
	return record.NewRecord(map[string]record.Value{
		key: record.NewRecord(map[string]record.Value{
			id: record.String(d.String()),
		}),
	})
}

func (s *Store) triggerIDs() []string {
	ids := make([]string, 0, len(s.triggers))
	for id := range s.triggers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
