// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package match implements the pattern matcher for binding records. A pattern
// is either a predicate function or a partial record: a map of field names to
// required values, where the Wildcard marker stands for any value.
package match

import (
	"errors"
	"fmt"

	"github.com/bindery/bindery/record"
)

const (
	// InvalidPatternErr indicates a pattern that cannot be compiled.
	InvalidPatternErr string = "match_invalid_pattern_error"
)

// Error is the error type returned for malformed patterns.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// IsInvalidPattern returns true if this err is an InvalidPatternErr.
func IsInvalidPattern(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == InvalidPatternErr
}

func invalidPatternError(f string, a ...any) *Error {
	return &Error{
		Code:    InvalidPatternErr,
		Message: fmt.Sprintf(f, a...),
	}
}

type wildcard struct{}

// Wildcard marks a pattern field as unconstrained: the field must be present
// but may hold any value.
var Wildcard = wildcard{}

// Predicate is a pattern that matches records by arbitrary criteria.
type Predicate func(*record.Record) bool

type constraint struct {
	name string
	// value is nil when the constraint is a wildcard.
	value record.Value
}

// Compile validates the pattern and returns a function deciding whether a
// record matches it. Accepted patterns are:
//
//   - nil, matching every record
//   - a Predicate or plain func(*record.Record) bool
//   - a *record.Record, requiring every one of its fields to be present with
//     an equal value
//   - a map[string]any of required field values; a Wildcard value requires
//     presence only
//
// Anything else fails with an InvalidPatternErr.
func Compile(pattern any) (Predicate, error) {
	switch p := pattern.(type) {
	case nil:
		return func(*record.Record) bool { return true }, nil
	case Predicate:
		return p, nil
	case func(*record.Record) bool:
		return p, nil
	case *record.Record:
		if p == nil {
			return func(*record.Record) bool { return true }, nil
		}
		constraints := make([]constraint, 0, p.Len())
		p.Iter(func(name string, value record.Value) bool {
			constraints = append(constraints, constraint{name: name, value: value})
			return false
		})
		return matcher(constraints), nil
	case map[string]any:
		constraints := make([]constraint, 0, len(p))
		for name, value := range p {
			if _, ok := value.(wildcard); ok {
				constraints = append(constraints, constraint{name: name})
				continue
			}
			if containsWildcard(value) {
				return nil, invalidPatternError("wildcard below top level of field %q", name)
			}
			v, err := record.InterfaceToValue(value)
			if err != nil {
				return nil, invalidPatternError("field %q: %v", name, err)
			}
			constraints = append(constraints, constraint{name: name, value: v})
		}
		return matcher(constraints), nil
	default:
		return nil, invalidPatternError("unsupported pattern type %T", pattern)
	}
}

// Match reports whether the record matches the pattern. It compiles the
// pattern on every call; callers matching many records should use Compile.
func Match(rec *record.Record, pattern any) (bool, error) {
	f, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return f(rec), nil
}

// Normalize returns a canonical record describing the pattern, suitable for
// content-addressed caching of match results. Equality constraints land under
// "eq" and wildcard field names under "any". Predicates have no canonical
// form, so Normalize returns false for them and for invalid patterns.
func Normalize(pattern any) (*record.Record, bool) {
	eq := map[string]record.Value{}
	var names []record.Value

	switch p := pattern.(type) {
	case nil:
	case *record.Record:
		if p != nil {
			p.Iter(func(name string, value record.Value) bool {
				eq[name] = value
				return false
			})
		}
	case map[string]any:
		for name, value := range p {
			if _, ok := value.(wildcard); ok {
				names = append(names, record.String(name))
				continue
			}
			if containsWildcard(value) {
				return nil, false
			}
			v, err := record.InterfaceToValue(value)
			if err != nil {
				return nil, false
			}
			eq[name] = v
		}
	default:
		return nil, false
	}

	return record.NewRecord(map[string]record.Value{
		"eq":  record.NewRecord(eq),
		"any": record.NewArray(names...),
	}), true
}

func matcher(constraints []constraint) Predicate {
	return func(rec *record.Record) bool {
		if rec == nil {
			return false
		}
		for _, c := range constraints {
			v, ok := rec.Get(c.name)
			if !ok {
				return false
			}
			if c.value != nil && !c.value.Equal(v) {
				return false
			}
		}
		return true
	}
}

func containsWildcard(x any) bool {
	switch x := x.(type) {
	case wildcard:
		return true
	case []any:
		for i := range x {
			if containsWildcard(x[i]) {
				return true
			}
		}
	case map[string]any:
		for _, v := range x {
			if containsWildcard(v) {
				return true
			}
		}
	}
	return false
}
