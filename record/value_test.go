// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package record

import (
	"math"
	"testing"
)

func TestDigestOrderInsensitive(t *testing.T) {
	t.Parallel()

	a := NewArray(Number(1), String("x"), Boolean(true))
	b := NewArray(Boolean(true), Number(1), String("x"))

	if a.Digest() != b.Digest() {
		t.Fatalf("Expected equal digests but got %v and %v", a.Digest(), b.Digest())
	}
	if !a.Equal(b) {
		t.Fatalf("Expected %v to equal %v", a, b)
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("Expected equal hash codes but got %v and %v", a.Hash(), b.Hash())
	}
}

func TestDigestOrderInsensitiveNested(t *testing.T) {
	t.Parallel()

	a := NewRecord(map[string]Value{
		"xs": NewArray(NewArray(Number(1), Number(2)), NewArray(Number(3))),
		"y":  Null{},
	})
	b := NewRecord(map[string]Value{
		"y":  Null{},
		"xs": NewArray(NewArray(Number(3)), NewArray(Number(2), Number(1))),
	})

	if a.Digest() != b.Digest() {
		t.Fatalf("Expected equal digests but got %v and %v", a.Digest(), b.Digest())
	}
}

func TestDigestDistinctAcrossKinds(t *testing.T) {
	t.Parallel()

	values := []Value{
		Null{},
		Boolean(false),
		Boolean(true),
		Number(0),
		Number(1),
		String(""),
		String("0"),
		String("null"),
		NewArray(),
		NewArray(Null{}),
		NewRecord(nil),
		NewRecord(map[string]Value{"": Null{}}),
	}

	seen := map[Digest]Value{}
	for _, v := range values {
		if prev, ok := seen[v.Digest()]; ok {
			t.Fatalf("Expected distinct digests but %v and %v collide", prev, v)
		}
		seen[v.Digest()] = v
	}
}

func TestDigestDuplicatesSignificant(t *testing.T) {
	t.Parallel()

	a := NewArray(Number(1), Number(1))
	b := NewArray(Number(1))

	if a.Digest() == b.Digest() {
		t.Fatalf("Expected distinct digests for %v and %v", a, b)
	}
}

func TestNumberNegativeZero(t *testing.T) {
	t.Parallel()

	pos := Number(0.0)
	neg := Number(math.Copysign(0, -1))

	if pos.Digest() != neg.Digest() {
		t.Fatalf("Expected equal digests but got %v and %v", pos.Digest(), neg.Digest())
	}
	if pos.Hash() != neg.Hash() {
		t.Fatalf("Expected equal hash codes but got %v and %v", pos.Hash(), neg.Hash())
	}
}

func TestDigestDeterministic(t *testing.T) {
	t.Parallel()

	build := func() Value {
		return NewRecord(map[string]Value{
			"id":    Number(7),
			"name":  String("svc"),
			"tags":  NewArray(String("b"), String("a")),
			"inner": NewRecord(map[string]Value{"ok": Boolean(true)}),
		})
	}

	expected := build().Digest()
	for i := 0; i < 10; i++ {
		if got := build().Digest(); got != expected {
			t.Fatalf("Expected digest %v but got %v on rebuild %d", expected, got, i)
		}
	}
}

func TestValueString(t *testing.T) {
	t.Parallel()

	v := NewRecord(map[string]Value{
		"b": NewArray(Number(2)),
		"a": String("x"),
	})

	expected := `{"a": "x", "b": [2]}`
	if s := v.String(); s != expected {
		t.Fatalf("Expected %v but got %v", expected, s)
	}
}

func TestEqualCrossKind(t *testing.T) {
	t.Parallel()

	if Number(1).Equal(String("1")) {
		t.Fatal("Expected number and string to be distinct")
	}
	if Boolean(false).Equal(Null{}) {
		t.Fatal("Expected false and null to be distinct")
	}
	if NewArray().Equal(NewRecord(nil)) {
		t.Fatal("Expected empty array and empty record to be distinct")
	}
}

func TestDigestText(t *testing.T) {
	t.Parallel()

	d := String("hello").Digest()

	text, err := d.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseDigest(string(text))
	if err != nil {
		t.Fatal(err)
	}
	if parsed != d {
		t.Fatalf("Expected %v but got %v", d, parsed)
	}

	if _, err := ParseDigest("abc123"); err == nil {
		t.Fatal("Expected error for truncated digest")
	}
}
