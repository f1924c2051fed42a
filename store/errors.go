// Copyright 2026 The Bindery Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package store

import (
	"errors"
	"fmt"
)

const (
	// NotFoundErr indicates the id used in the operation does not locate a
	// stored record.
	NotFoundErr string = "store_not_found_error"

	// ConflictErr indicates a write collided with an existing record.
	ConflictErr string = "store_conflict_error"

	// InvalidTransactionErr indicates a transaction that cannot be applied,
	// such as one containing conflicting operations for the same id.
	InvalidTransactionErr string = "store_invalid_transaction_error"

	// InvalidArgumentErr indicates a malformed argument, such as a trigger
	// registration without a callback.
	InvalidArgumentErr string = "store_invalid_argument_error"
)

// Error is the error type returned by the store.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// IsNotFound returns true if this err is a NotFoundErr.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == NotFoundErr
}

// IsConflict returns true if this err is a ConflictErr.
func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ConflictErr
}

// IsInvalidTransaction returns true if this err is an InvalidTransactionErr.
func IsInvalidTransaction(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == InvalidTransactionErr
}

// IsInvalidArgument returns true if this err is an InvalidArgumentErr.
func IsInvalidArgument(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == InvalidArgumentErr
}

func notFoundError(id string) *Error {
	return &Error{
		Code:    NotFoundErr,
		Message: fmt.Sprintf("record %q does not exist", id),
	}
}

func conflictError(f string, a ...any) *Error {
	return &Error{
		Code:    ConflictErr,
		Message: fmt.Sprintf(f, a...),
	}
}

func invalidTransactionError(f string, a ...any) *Error {
	return &Error{
		Code:    InvalidTransactionErr,
		Message: fmt.Sprintf(f, a...),
	}
}

func invalidArgumentError(f string, a ...any) *Error {
	return &Error{
		Code:    InvalidArgumentErr,
		Message: fmt.Sprintf(f, a...),
	}
}
