// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package bindings

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/bindery/bindery/record"
	"github.com/bindery/bindery/util"
)

// Multiset is a bag of binding records bound to a registry. It stores one
// multiplicity count per content digest; the records themselves live in the
// registry. Structurally equal records therefore occupy a single slot no
// matter how many times they are added.
//
// Mutating methods (Add, AddAll) update the receiver in place. The remaining
// operations are persistent: they leave the receiver untouched and return new
// multisets that share storage copy-on-write, so Clone is O(1).
//
// A multiset is not safe for concurrent mutation. Snapshots obtained from
// Clone may be used from other goroutines as long as each multiset value is
// confined to one goroutine.
type Multiset struct {
	reg    *Registry
	counts map[record.Digest]uint64
	card   uint64
	shared bool
}

// NewMultiset returns a new empty multiset bound to reg. If reg is nil the
// global registry is used.
func NewMultiset(reg *Registry) *Multiset {
	if reg == nil {
		reg = Global()
	}
	return &Multiset{
		reg:    reg,
		counts: map[record.Digest]uint64{},
	}
}

// From returns a new multiset bound to reg containing the given elements.
func From(reg *Registry, xs ...any) (*Multiset, error) {
	ms := NewMultiset(reg)
	if err := ms.AddAll(xs...); err != nil {
		return nil, err
	}
	return ms, nil
}

// Registry returns the registry the multiset is bound to.
func (ms *Multiset) Registry() *Registry {
	return ms.reg
}

// Add interns x and increments its multiplicity.
func (ms *Multiset) Add(x any) error {
	d, err := ms.reg.Intern(x)
	if err != nil {
		return err
	}
	ms.insert(d, 1)
	return nil
}

// AddRecord interns an already constructed binding record and increments its
// multiplicity. The registry resolver does not apply.
func (ms *Multiset) AddRecord(rec *record.Record) error {
	d, err := ms.reg.InternRecord(rec)
	if err != nil {
		return err
	}
	ms.insert(d, 1)
	return nil
}

// AddAll interns each element and increments its multiplicity. If any element
// fails to convert the multiset is left unchanged.
func (ms *Multiset) AddAll(xs ...any) error {
	ds := make([]record.Digest, len(xs))
	for i := range xs {
		d, err := ms.reg.Intern(xs[i])
		if err != nil {
			return err
		}
		ds[i] = d
	}
	for _, d := range ds {
		ms.insert(d, 1)
	}
	return nil
}

// With returns a new multiset equal to ms plus one occurrence of x.
func (ms *Multiset) With(x any) (*Multiset, error) {
	result := ms.Clone()
	if err := result.Add(x); err != nil {
		return nil, err
	}
	return result, nil
}

// WithAll returns a new multiset equal to ms plus one occurrence of each
// element.
func (ms *Multiset) WithAll(xs ...any) (*Multiset, error) {
	result := ms.Clone()
	if err := result.AddAll(xs...); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the multiplicity of x, or zero if the multiset does not
// contain it. Count does not intern x.
func (ms *Multiset) Count(x any) (uint64, error) {
	d, err := ms.reg.Digest(x)
	if err != nil {
		return 0, err
	}
	return ms.counts[d], nil
}

// Contains returns true if the multiset contains at least one occurrence of
// x.
func (ms *Multiset) Contains(x any) (bool, error) {
	n, err := ms.Count(x)
	return n > 0, err
}

// Len returns the number of distinct records in the multiset.
func (ms *Multiset) Len() int {
	return len(ms.counts)
}

// Cardinality returns the total number of occurrences across all records.
func (ms *Multiset) Cardinality() uint64 {
	return ms.card
}

// IsEmpty returns true if the multiset holds no records.
func (ms *Multiset) IsEmpty() bool {
	return len(ms.counts) == 0
}

// Clone returns a multiset equal to ms. The clone shares storage with the
// receiver until either side is mutated. The shared flag is only written when
// it changes, so concurrent clones of an already shared multiset are
// read-only.
func (ms *Multiset) Clone() *Multiset {
	if !ms.shared {
		ms.shared = true
	}
	cp := *ms
	return &cp
}

// Merge returns a new multiset holding every record of ms and other with the
// multiplicities added. Merge returns an InvalidArgumentErr if other is nil
// or bound to a different registry. Merge is commutative and associative.
func (ms *Multiset) Merge(other *Multiset) (*Multiset, error) {
	if other == nil {
		return nil, invalidArgumentError("cannot merge with nil multiset")
	}
	if other.reg != ms.reg {
		return nil, invalidArgumentError("cannot merge multisets bound to different registries")
	}
	result := ms.Clone()
	for d, n := range other.counts {
		result.insert(d, n)
	}
	return result, nil
}

// Iter invokes f for each distinct record with its multiplicity, in digest
// order. If f returns true, iteration stops and Iter returns true. Otherwise
// Iter returns false.
func (ms *Multiset) Iter(f func(rec *record.Record, n uint64) bool) bool {
	for _, d := range ms.sortedDigests() {
		if f(ms.mustLookup(d), ms.counts[d]) {
			return true
		}
	}
	return false
}

// Reduce folds f over the multiset in digest order, starting from init. Each
// distinct record is passed once together with its multiplicity.
func (ms *Multiset) Reduce(init any, f func(acc any, rec *record.Record, n uint64) (any, error)) (any, error) {
	acc := init
	var err error
	ms.Iter(func(rec *record.Record, n uint64) bool {
		acc, err = f(acc, rec, n)
		return err != nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Map returns a new multiset obtained by applying f to each distinct record.
// Multiplicities carry over; records mapped to the same result accumulate.
func (ms *Multiset) Map(f func(rec *record.Record) (*record.Record, error)) (*Multiset, error) {
	result := NewMultiset(ms.reg)
	var err error
	ms.Iter(func(rec *record.Record, n uint64) bool {
		var mapped *record.Record
		if mapped, err = f(rec); err != nil {
			return true
		}
		var d record.Digest
		if d, err = ms.reg.InternRecord(mapped); err != nil {
			return true
		}
		result.insert(d, n)
		return false
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FlatMap returns a new multiset obtained by applying f to each distinct
// record and collecting every produced record. Each produced record inherits
// the multiplicity of the record it came from.
func (ms *Multiset) FlatMap(f func(rec *record.Record) ([]*record.Record, error)) (*Multiset, error) {
	result := NewMultiset(ms.reg)
	var err error
	ms.Iter(func(rec *record.Record, n uint64) bool {
		var produced []*record.Record
		if produced, err = f(rec); err != nil {
			return true
		}
		for _, p := range produced {
			var d record.Digest
			if d, err = ms.reg.InternRecord(p); err != nil {
				return true
			}
			result.insert(d, n)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Select returns the sub-multiset of records satisfying the predicate.
// Multiplicities are preserved.
func (ms *Multiset) Select(f func(rec *record.Record) (bool, error)) (*Multiset, error) {
	result := NewMultiset(ms.reg)
	var err error
	ms.Iter(func(rec *record.Record, n uint64) bool {
		var keep bool
		if keep, err = f(rec); err != nil {
			return true
		}
		if keep {
			result.insert(rec.Digest(), n)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Find returns the first record in digest order satisfying the predicate, or
// nil and false if no record does.
func (ms *Multiset) Find(f func(rec *record.Record) bool) (*record.Record, bool) {
	var found *record.Record
	ms.Iter(func(rec *record.Record, _ uint64) bool {
		if f(rec) {
			found = rec
			return true
		}
		return false
	})
	return found, found != nil
}

// Get returns the value bound to key by the first record in digest order that
// defines it. Multiple records may define the key with different values; Get
// answers for the first one only.
func (ms *Multiset) Get(key string) (record.Value, bool) {
	var out record.Value
	ms.Iter(func(rec *record.Record, _ uint64) bool {
		if v, ok := rec.Get(key); ok {
			out = v
			return true
		}
		return false
	})
	return out, out != nil
}

// ToSlice returns the members of the multiset in digest order. Records with
// multiplicity n appear n times in adjacent positions.
func (ms *Multiset) ToSlice() []*record.Record {
	out := make([]*record.Record, 0, int(ms.card))
	ms.Iter(func(rec *record.Record, n uint64) bool {
		for i := uint64(0); i < n; i++ {
			out = append(out, rec)
		}
		return false
	})
	return out
}

// Hashes returns the digests of the distinct records in sorted order.
func (ms *Multiset) Hashes() []record.Digest {
	return ms.sortedDigests()
}

// Group holds one partition produced by GroupBy.
type Group struct {
	Key     record.Value
	Members *Multiset
}

// GroupBy partitions the multiset by the key the selector extracts from each
// distinct record. The selector must return a non-nil value. Groups are
// returned sorted by key digest; every record of ms appears in exactly one
// group with its multiplicity preserved.
func (ms *Multiset) GroupBy(key func(rec *record.Record) record.Value) []Group {
	groups := util.NewHashMap[record.Value, *Multiset](
		func(a, b record.Value) bool { return a.Equal(b) },
		record.Value.Hash,
	)
	ms.Iter(func(rec *record.Record, n uint64) bool {
		k := key(rec)
		group, ok := groups.Get(k)
		if !ok {
			group = NewMultiset(ms.reg)
			groups.Put(k, group)
		}
		group.insert(rec.Digest(), n)
		return false
	})
	out := make([]Group, 0, groups.Len())
	groups.Iter(func(k record.Value, members *Multiset) bool {
		out = append(out, Group{Key: k, Members: members})
		return false
	})
	slices.SortFunc(out, func(a, b Group) int {
		return a.Key.Digest().Compare(b.Key.Digest())
	})
	return out
}

// GroupByKey partitions the multiset by the projection of each record onto
// the named fields.
func (ms *Multiset) GroupByKey(names ...string) []Group {
	return ms.GroupBy(func(rec *record.Record) record.Value {
		return rec.Project(names)
	})
}

// Equal returns true if other holds the same records with the same
// multiplicities.
func (ms *Multiset) Equal(other *Multiset) bool {
	if other == nil {
		return false
	}
	return ms.card == other.card && maps.Equal(ms.counts, other.counts)
}

func (ms *Multiset) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	ms.Iter(func(rec *record.Record, n uint64) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(rec.String())
		sb.WriteString(": ")
		sb.WriteString(strconv.FormatUint(n, 10))
		return false
	})
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON implements json.Marshaler. The debug view exposes the sorted
// digest list alongside the multiplicity map.
func (ms *Multiset) MarshalJSON() ([]byte, error) {
	hashes := make([]string, 0, len(ms.counts))
	for _, d := range ms.sortedDigests() {
		hashes = append(hashes, d.String())
	}
	counts := make(map[string]uint64, len(ms.counts))
	for d, n := range ms.counts {
		counts[d.String()] = n
	}
	return json.Marshal(struct {
		Hashes []string          `json:"hashes"`
		Counts map[string]uint64 `json:"counts"`
	}{hashes, counts})
}

// insert adds n occurrences of the digest, copying shared storage first.
func (ms *Multiset) insert(d record.Digest, n uint64) {
	if n == 0 {
		return
	}
	ms.ensureOwned()
	ms.counts[d] += n
	ms.card += n
}

func (ms *Multiset) ensureOwned() {
	if !ms.shared {
		return
	}
	counts := make(map[record.Digest]uint64, len(ms.counts))
	maps.Copy(counts, ms.counts)
	ms.counts = counts
	ms.shared = false
}

func (ms *Multiset) sortedDigests() []record.Digest {
	ds := make([]record.Digest, 0, len(ms.counts))
	for d := range ms.counts {
		ds = append(ds, d)
	}
	slices.SortFunc(ds, record.Digest.Compare)
	return ds
}

// mustLookup resolves a digest held by the multiset. Every digest in counts
// was interned through the bound registry, so a miss means memory corruption
// or registry misuse and panics.
func (ms *Multiset) mustLookup(d record.Digest) *record.Record {
	rec, ok := ms.reg.Lookup(d)
	if !ok {
		panic("corrupt multiset: digest not present in registry")
	}
	return rec
}
