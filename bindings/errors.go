// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package bindings

import (
	"errors"
	"fmt"
)

const (
	// InvalidArgumentErr indicates an operation was invoked with an
	// argument it cannot accept, such as merging multisets bound to
	// different registries.
	InvalidArgumentErr string = "bindings_invalid_argument_error"
)

// Error is the error type returned by registry and multiset operations.
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

// IsInvalidArgument returns true if this err is an InvalidArgumentErr.
func IsInvalidArgument(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == InvalidArgumentErr
}

func invalidArgumentError(f string, a ...any) *Error {
	return &Error{
		Code:    InvalidArgumentErr,
		Message: fmt.Sprintf(f, a...),
	}
}
