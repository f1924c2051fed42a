// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package record

import (
	"fmt"
	"sort"
	"strings"
)

type field struct {
	name  string
	value Value
}

// Record represents a binding record: a flat mapping of field names to
// values. Fields are held sorted by name, so records constructed from the
// same fields in any order are identical.
type Record struct {
	fields []field
	hash   int
	digest Digest
}

// NewRecord constructs a record from a map of field names to values.
func NewRecord(fields map[string]Value) *Record {
	fs := make([]field, 0, len(fields))
	for name, value := range fields {
		fs = append(fs, field{name: name, value: value})
	}
	sort.Slice(fs, func(i, j int) bool {
		return fs[i].name < fs[j].name
	})
	return newRecord(fs)
}

// newRecord constructs a record from fields already sorted by name.
func newRecord(sorted []field) *Record {
	hash := 0
	for i := range sorted {
		hash += String(sorted[i].name).Hash() + sorted[i].value.Hash()
	}
	return &Record{
		fields: sorted,
		hash:   hash,
		digest: recordDigest(sorted),
	}
}

// Len returns the number of fields in the record.
func (rec *Record) Len() int {
	return len(rec.fields)
}

// Get returns the value of the named field and true, or nil and false if the
// record does not define the field.
func (rec *Record) Get(name string) (Value, bool) {
	i := sort.Search(len(rec.fields), func(i int) bool {
		return rec.fields[i].name >= name
	})
	if i < len(rec.fields) && rec.fields[i].name == name {
		return rec.fields[i].value, true
	}
	return nil, false
}

// Keys returns the field names of the record in sorted order.
func (rec *Record) Keys() []string {
	keys := make([]string, len(rec.fields))
	for i := range rec.fields {
		keys[i] = rec.fields[i].name
	}
	return keys
}

// Iter invokes f for each field in name order. If f returns true, iteration
// stops and Iter returns true. Otherwise Iter returns false.
func (rec *Record) Iter(f func(name string, value Value) bool) bool {
	for i := range rec.fields {
		if f(rec.fields[i].name, rec.fields[i].value) {
			return true
		}
	}
	return false
}

// Project returns a new record containing only the named fields. Names the
// record does not define are skipped, so the result may have fewer fields
// than names were given.
func (rec *Record) Project(names []string) *Record {
	want := make(map[string]struct{}, len(names))
	for _, name := range names {
		want[name] = struct{}{}
	}
	fs := make([]field, 0, len(want))
	for i := range rec.fields {
		if _, ok := want[rec.fields[i].name]; ok {
			fs = append(fs, rec.fields[i])
		}
	}
	return newRecord(fs)
}

// Equal returns true if the other value is a Record and is equal.
func (rec *Record) Equal(other Value) bool {
	switch other := other.(type) {
	case *Record:
		return rec.digest == other.digest
	default:
		return false
	}
}

// Hash returns the hash code for the value.
func (rec *Record) Hash() int {
	return rec.hash
}

// Digest returns the canonical content digest of the value.
func (rec *Record) Digest() Digest {
	return rec.digest
}

func (rec *Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := range rec.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %s", rec.fields[i].name, rec.fields[i].value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON implements json.Marshaler. Fields marshal in name order.
func (rec *Record) MarshalJSON() ([]byte, error) {
	return marshalNative(rec)
}

// Merge returns a record containing the union of the fields of rec and other.
// Fields defined by exactly one side are copied as-is. Fields defined by both
// sides merge recursively if both values are records; any other overlap fails
// and Merge returns nil and false.
func (rec *Record) Merge(other *Record) (*Record, bool) {
	fs := make([]field, 0, len(rec.fields)+len(other.fields))
	i, j := 0, 0
	for i < len(rec.fields) && j < len(other.fields) {
		a, b := rec.fields[i], other.fields[j]
		switch {
		case a.name < b.name:
			fs = append(fs, a)
			i++
		case a.name > b.name:
			fs = append(fs, b)
			j++
		default:
			ra, aok := a.value.(*Record)
			rb, bok := b.value.(*Record)
			if !aok || !bok {
				return nil, false
			}
			merged, ok := ra.Merge(rb)
			if !ok {
				return nil, false
			}
			fs = append(fs, field{name: a.name, value: merged})
			i++
			j++
		}
	}
	fs = append(fs, rec.fields[i:]...)
	fs = append(fs, other.fields[j:]...)
	return newRecord(fs), true
}
