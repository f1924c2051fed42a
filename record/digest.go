// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package record

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Digest is the canonical content digest of a value: a SHA-256 checksum over a
// versioned, type-tagged serialization of the value. Children of unordered
// containers are serialized in digest order, so the digest is independent of
// construction order and stable across processes and runs.
type Digest [sha256.Size]byte

// digestVersion is the first byte of every serialization. Bump it whenever the
// encoding below changes so that digests from different encodings never
// collide.
const digestVersion byte = 1

// Type tags keep values of different kinds from ever sharing a digest.
const (
	tagNull byte = iota + 1
	tagBoolean
	tagNumber
	tagString
	tagArray
	tagRecord
)

var (
	nullDigest  = scalarDigest(tagNull, nil)
	trueDigest  = scalarDigest(tagBoolean, []byte{1})
	falseDigest = scalarDigest(tagBoolean, []byte{0})
)

// Compare returns -1, 0, or 1 depending on whether d is less than, equal to,
// or greater than other in the canonical digest order.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// Less returns true if d sorts before other in the canonical digest order.
func (d Digest) Less(other Digest) bool {
	return bytes.Compare(d[:], other[:]) < 0
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText implements encoding.TextMarshaler so digests can serve as JSON
// object keys in debug output.
func (d Digest) MarshalText() ([]byte, error) {
	dst := make([]byte, hex.EncodedLen(len(d)))
	hex.Encode(dst, d[:])
	return dst, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != sha256.Size {
		return fmt.Errorf("invalid digest length %d", len(text))
	}
	_, err := hex.Decode(d[:], text)
	return err
}

// ParseDigest parses the hexadecimal representation produced by String.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	err := d.UnmarshalText([]byte(s))
	return d, err
}

func scalarDigest(tag byte, payload []byte) Digest {
	h := sha256.New()
	h.Write([]byte{digestVersion, tag})
	h.Write(payload)
	var d Digest
	h.Sum(d[:0])
	return d
}

// arrayDigest computes the digest of an array from its element digests. The
// caller must pass the digests already sorted in canonical order.
func arrayDigest(sorted []Digest) Digest {
	h := sha256.New()
	var buf [4]byte
	h.Write([]byte{digestVersion, tagArray})
	binary.BigEndian.PutUint32(buf[:], uint32(len(sorted)))
	h.Write(buf[:])
	for i := range sorted {
		h.Write(sorted[i][:])
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// recordDigest computes the digest of a record from its fields. The caller
// must pass the fields already sorted by name.
func recordDigest(sorted []field) Digest {
	h := sha256.New()
	var buf [4]byte
	h.Write([]byte{digestVersion, tagRecord})
	binary.BigEndian.PutUint32(buf[:], uint32(len(sorted)))
	h.Write(buf[:])
	for i := range sorted {
		binary.BigEndian.PutUint32(buf[:], uint32(len(sorted[i].name)))
		h.Write(buf[:])
		h.Write([]byte(sorted[i].name))
		d := sorted[i].value.Digest()
		h.Write(d[:])
	}
	var d Digest
	h.Sum(d[:0])
	return d
}
