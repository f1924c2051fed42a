// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package record

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/bindery/bindery/util"
)

// InterfaceToValue converts the native Go value x into a Value. Maps, slices,
// and JSON scalars convert directly; any other type is round-tripped through
// JSON first, so struct values convert according to their JSON shape. Values
// containing reference cycles are rejected with a CyclicStructureErr.
func InterfaceToValue(x any) (Value, error) {
	return interfaceToValue(x, nil)
}

// InterfaceToRecord converts the native Go value x into a Record. It returns
// an IllegalValueErr if x does not convert to a record.
func InterfaceToRecord(x any) (*Record, error) {
	v, err := InterfaceToValue(x)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(*Record)
	if !ok {
		return nil, illegalValueError("record required but got %T", v)
	}
	return rec, nil
}

// interfaceToValue walks x keeping the set of container addresses on the path
// from the root in path. An address seen twice on one path is a cycle. Shared
// acyclic substructure is fine: addresses are removed again on the way out.
func interfaceToValue(x any, path map[uintptr]struct{}) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Boolean(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, illegalValueError("invalid number %v: %v", x, err)
		}
		return Number(f), nil
	case int:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint:
		return Number(x), nil
	case uint32:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case float64:
		return Number(x), nil
	case string:
		return String(x), nil
	case []string:
		elems := make([]Value, len(x))
		for i := range x {
			elems[i] = String(x[i])
		}
		return NewArray(elems...), nil
	case []any:
		if len(x) == 0 {
			return NewArray(), nil
		}
		addr := reflect.ValueOf(x).Pointer()
		path, err := enter(path, addr)
		if err != nil {
			return nil, err
		}
		elems := make([]Value, len(x))
		for i := range x {
			v, err := interfaceToValue(x[i], path)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		delete(path, addr)
		return NewArray(elems...), nil
	case map[string]string:
		fields := make(map[string]Value, len(x))
		for name, value := range x {
			fields[name] = String(value)
		}
		return NewRecord(fields), nil
	case map[string]any:
		if len(x) == 0 {
			return NewRecord(nil), nil
		}
		addr := reflect.ValueOf(x).Pointer()
		path, err := enter(path, addr)
		if err != nil {
			return nil, err
		}
		fields := make(map[string]Value, len(x))
		for name, value := range x {
			v, err := interfaceToValue(value, path)
			if err != nil {
				return nil, err
			}
			fields[name] = v
		}
		delete(path, addr)
		return NewRecord(fields), nil
	default:
		ptr := util.Reference(x)
		if err := util.RoundTrip(ptr); err != nil {
			return nil, roundTripError(x, err)
		}
		return interfaceToValue(*ptr, path)
	}
}

func enter(path map[uintptr]struct{}, addr uintptr) (map[uintptr]struct{}, error) {
	if path == nil {
		path = map[uintptr]struct{}{}
	} else if _, ok := path[addr]; ok {
		return nil, cyclicStructureError("cyclic reference found during conversion")
	}
	path[addr] = struct{}{}
	return path, nil
}

// roundTripError classifies JSON round-trip failures. The JSON encoder
// reports cycles inside struct or pointer values as unsupported values with a
// message prefix we can key on; everything else is an illegal value.
func roundTripError(x any, err error) *Error {
	var unsupported *json.UnsupportedValueError
	if errors.As(err, &unsupported) && strings.HasPrefix(unsupported.Str, "encountered a cycle") {
		return cyclicStructureError("cyclic reference found in %T value", x)
	}
	return illegalValueError("cannot convert %T value: %v", x, err)
}

// ValueToInterface converts v into the native Go representation: nil, bool,
// float64, string, []any, and map[string]any. Array elements appear in
// canonical order.
func ValueToInterface(v Value) (any, error) {
	switch v := v.(type) {
	case Null:
		return nil, nil
	case Boolean:
		return bool(v), nil
	case Number:
		return float64(v), nil
	case String:
		return string(v), nil
	case *Array:
		buf := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			x, err := ValueToInterface(v.Elem(i))
			if err != nil {
				return nil, err
			}
			buf[i] = x
		}
		return buf, nil
	case *Record:
		buf := make(map[string]any, v.Len())
		var err error
		v.Iter(func(name string, value Value) bool {
			var x any
			if x, err = ValueToInterface(value); err != nil {
				return true
			}
			buf[name] = x
			return false
		})
		if err != nil {
			return nil, err
		}
		return buf, nil
	default:
		return nil, illegalValueError("illegal value type %T", v)
	}
}

func marshalNative(v Value) ([]byte, error) {
	x, err := ValueToInterface(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(x)
}
