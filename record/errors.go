// Copyright 2025 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package record

import (
	"errors"
	"fmt"
)

const (
	// CyclicStructureErr indicates a native value contained a reference
	// cycle and could not be reduced to a canonical form.
	CyclicStructureErr string = "record_cyclic_structure_error"

	// IllegalValueErr indicates a native value could not be represented in
	// the value model.
	IllegalValueErr string = "record_illegal_value_error"
)

// Error is the error type returned by value admission.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// IsError returns true if the err is an Error.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsCyclicStructure returns true if this err is a CyclicStructureErr.
func IsCyclicStructure(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CyclicStructureErr
}

// IsIllegalValue returns true if this err is an IllegalValueErr.
func IsIllegalValue(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == IllegalValueErr
}

func cyclicStructureError(f string, a ...any) *Error {
	return &Error{
		Code:    CyclicStructureErr,
		Message: fmt.Sprintf(f, a...),
	}
}

func illegalValueError(f string, a ...any) *Error {
	return &Error{
		Code:    IllegalValueErr,
		Message: fmt.Sprintf(f, a...),
	}
}
