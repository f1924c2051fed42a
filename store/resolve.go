// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package store

import (
	"fmt"

	"github.com/bindery/bindery/record"
)

// refField marks a reference record. A record whose only field is refField
// bound to a string names another stored record.
const refField = "$ref"

// Resolve returns the record stored under id with references reified: every
// single-field {"$ref": target} record inside it, at any depth, is replaced
// by the resolved record stored under target. Records that bind refField
// alongside other fields are left alone.
//
// Two fields may reference the same target, but a reference chain that
// reaches a record already being resolved fails with a CyclicStructureErr.
// A reference to an id with no stored record fails with a NotFoundErr.
func (s *Store) Resolve(id string) (*record.Record, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.resolve(id, map[string]struct{}{})
}

func (s *Store) resolve(id string, path map[string]struct{}) (*record.Record, error) {
	if _, ok := path[id]; ok {
		return nil, &record.Error{
			Code:    record.CyclicStructureErr,
			Message: fmt.Sprintf("reference cycle through record %q", id),
		}
	}
	sr, ok := s.records[id]
	if !ok {
		return nil, notFoundError(id)
	}
	path[id] = struct{}{}
	v, err := s.resolveValue(sr.rec, path)
	delete(path, id)
	if err != nil {
		return nil, err
	}
	return v.(*record.Record), nil
}

func (s *Store) resolveValue(v record.Value, path map[string]struct{}) (record.Value, error) {
	switch v := v.(type) {
	case *record.Record:
		if target, ok := refTarget(v); ok {
			rec, err := s.resolve(target, path)
			if err != nil {
				return nil, err
			}
			return rec, nil
		}
		fields := make(map[string]record.Value, v.Len())
		var err error
		v.Iter(func(name string, value record.Value) bool {
			var resolved record.Value
			if resolved, err = s.resolveValue(value, path); err != nil {
				return true
			}
			fields[name] = resolved
			return false
		})
		if err != nil {
			return nil, err
		}
		return record.NewRecord(fields), nil
	case *record.Array:
		elems := make([]record.Value, 0, v.Len())
		var err error
		v.Iter(func(elem record.Value) bool {
			var resolved record.Value
			if resolved, err = s.resolveValue(elem, path); err != nil {
				return true
			}
			elems = append(elems, resolved)
			return false
		})
		if err != nil {
			return nil, err
		}
		return record.NewArray(elems...), nil
	}
	return v, nil
}

// refTarget returns the id a reference record points at.
func refTarget(rec *record.Record) (string, bool) {
	if rec.Len() != 1 {
		return "", false
	}
	v, ok := rec.Get(refField)
	if !ok {
		return "", false
	}
	str, ok := v.(record.String)
	if !ok {
		return "", false
	}
	return string(str), true
}
