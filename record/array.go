// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package record

import (
	"sort"
	"strings"
)

// Array represents an unordered collection of values. Elements are held in
// canonical digest order, so arrays constructed from the same elements in any
// order are identical. Duplicate elements are preserved.
type Array struct {
	elems  []Value
	hash   int
	digest Digest
}

// NewArray returns a new array of the given elements. The array takes
// ownership of the slice.
func NewArray(elems ...Value) *Array {
	digests := make([]Digest, len(elems))
	hash := 0
	for i := range elems {
		digests[i] = elems[i].Digest()
		hash += elems[i].Hash()
	}
	sort.Sort(&arraySorter{elems: elems, digests: digests})
	return &Array{
		elems:  elems,
		hash:   hash,
		digest: arrayDigest(digests),
	}
}

// Len returns the number of elements in the array.
func (arr *Array) Len() int {
	return len(arr.elems)
}

// Elem returns the element at position i in the canonical order.
func (arr *Array) Elem(i int) Value {
	return arr.elems[i]
}

// Iter invokes f for each element in canonical order. If f returns true,
// iteration stops and Iter returns true. Otherwise Iter returns false.
func (arr *Array) Iter(f func(Value) bool) bool {
	for i := range arr.elems {
		if f(arr.elems[i]) {
			return true
		}
	}
	return false
}

// Equal returns true if the other value is an Array and is equal.
func (arr *Array) Equal(other Value) bool {
	switch other := other.(type) {
	case *Array:
		return arr.digest == other.digest
	default:
		return false
	}
}

// Hash returns the hash code for the value.
func (arr *Array) Hash() int {
	return arr.hash
}

// Digest returns the canonical content digest of the value.
func (arr *Array) Digest() Digest {
	return arr.digest
}

func (arr *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range arr.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arr.elems[i].String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON implements json.Marshaler. Elements marshal in canonical order.
func (arr *Array) MarshalJSON() ([]byte, error) {
	return marshalNative(arr)
}

type arraySorter struct {
	elems   []Value
	digests []Digest
}

func (s *arraySorter) Len() int {
	return len(s.elems)
}

func (s *arraySorter) Less(i, j int) bool {
	return s.digests[i].Less(s.digests[j])
}

func (s *arraySorter) Swap(i, j int) {
	s.elems[i], s.elems[j] = s.elems[j], s.elems[i]
	s.digests[i], s.digests[j] = s.digests[j], s.digests[i]
}
