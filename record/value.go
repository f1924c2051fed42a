// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package record implements the value model for binding records: the flat
// variable-to-value mappings produced by pattern matching. Every value carries
// a canonical content digest that is insensitive to key and element order, so
// structurally equal values are interchangeable wherever the engine stores or
// compares them.
package record

import (
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Value declares the common interface for all values that can appear inside a
// binding record:
//
// - Null, Boolean, Number, String
// - Array, Record
//
// Arrays are unordered for identity purposes: two arrays holding structurally
// equal elements are equal regardless of element order. Callers that need a
// set simply use an array.
type Value interface {
	// Equal returns true if this value equals the other value.
	Equal(other Value) bool

	// Hash returns a non-cryptographic hash code of the value, suitable for
	// chained hash tables. Hash codes may collide across values; Digest is
	// the equality proxy, Hash is not.
	Hash() int

	// Digest returns the canonical content digest of the value.
	Digest() Digest

	// String returns a human readable representation of the value.
	String() string
}

// Null represents the null value.
type Null struct{}

// Equal returns true if the other value is also Null.
func (Null) Equal(other Value) bool {
	_, ok := other.(Null)
	return ok
}

// Hash returns the hash code for the value.
func (Null) Hash() int {
	return 0
}

// Digest returns the canonical content digest of the value.
func (Null) Digest() Digest {
	return nullDigest
}

func (Null) String() string {
	return "null"
}

// Boolean represents a boolean value.
type Boolean bool

// Equal returns true if the other value is a Boolean and is equal.
func (bol Boolean) Equal(other Value) bool {
	switch other := other.(type) {
	case Boolean:
		return bol == other
	default:
		return false
	}
}

// Hash returns the hash code for the value.
func (bol Boolean) Hash() int {
	if bol {
		return 1
	}
	return 0
}

// Digest returns the canonical content digest of the value.
func (bol Boolean) Digest() Digest {
	if bol {
		return trueDigest
	}
	return falseDigest
}

func (bol Boolean) String() string {
	return strconv.FormatBool(bool(bol))
}

// Number represents a numeric value. Numbers follow JSON semantics: there is a
// single numeric kind and integers admitted from native Go values are
// represented exactly as long as they fit in the float64 mantissa.
type Number float64

// Equal returns true if the other value is a Number and is equal.
func (num Number) Equal(other Value) bool {
	switch other := other.(type) {
	case Number:
		return num == other
	default:
		return false
	}
}

// Hash returns the hash code for the value.
func (num Number) Hash() int {
	var buf [8]byte
	putNumberBits(buf[:], float64(num))
	return int(xxhash.Sum64(buf[:]))
}

// Digest returns the canonical content digest of the value.
func (num Number) Digest() Digest {
	var buf [8]byte
	putNumberBits(buf[:], float64(num))
	return scalarDigest(tagNumber, buf[:])
}

func (num Number) String() string {
	return strconv.FormatFloat(float64(num), 'g', -1, 64)
}

// String represents a string value.
type String string

// Equal returns true if the other value is a String and is equal.
func (str String) Equal(other Value) bool {
	switch other := other.(type) {
	case String:
		return str == other
	default:
		return false
	}
}

// Hash returns the hash code for the value.
func (str String) Hash() int {
	return int(xxhash.Sum64String(string(str)))
}

// Digest returns the canonical content digest of the value.
func (str String) Digest() Digest {
	return scalarDigest(tagString, []byte(str))
}

func (str String) String() string {
	return strconv.Quote(string(str))
}

// putNumberBits writes the canonical IEEE-754 encoding of f. Negative zero
// encodes as zero and all NaN payloads collapse to one bit pattern so that
// digests stay order- and representation-insensitive.
func putNumberBits(buf []byte, f float64) {
	if f == 0 {
		f = 0
	}
	bits := math.Float64bits(f)
	if math.IsNaN(f) {
		bits = math.Float64bits(math.NaN())
	}
	buf[0] = byte(bits >> 56)
	buf[1] = byte(bits >> 48)
	buf[2] = byte(bits >> 40)
	buf[3] = byte(bits >> 32)
	buf[4] = byte(bits >> 24)
	buf[5] = byte(bits >> 16)
	buf[6] = byte(bits >> 8)
	buf[7] = byte(bits)
}
