// Package errors provides error types and error codes for the catalog packages.
// This is a leaf package with no internal dependencies so that the query,
// store and manager packages can all share one taxonomy.
//
// Import graph: errors <- models <- query <- store <- manager
package errors

import (
	goerrors "errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested record does not exist in the store.
	ErrNotFound ErrorCode = iota + 1

	// ErrAlreadyExists indicates a record with the same id or uuid already exists.
	ErrAlreadyExists

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument

	// ErrTypeMismatch indicates an updater, specification, path or record
	// targets a record kind the store does not hold. It is a routing signal:
	// the dual-store manager reacts to it by trying the other store.
	ErrTypeMismatch

	// ErrUnrecognizedType indicates both stores rejected the operation on type
	// grounds. It is terminal and names the offending runtime type.
	ErrUnrecognizedType

	// ErrStoreFailure indicates the backing store failed for a reason unrelated
	// to the caller's input (connection lost, constraint violation, ...).
	ErrStoreFailure
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrUnrecognizedType:
		return "UnrecognizedType"
	case ErrStoreFailure:
		return "StoreFailure"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// StoreError represents a catalog error with an error code.
//
// Store names the store that produced the error ("metadata", "metadata_draft")
// and may be empty for errors raised above the store layer. Cause carries the
// underlying error, if any, and is exposed through Unwrap.
type StoreError struct {
	Code    ErrorCode
	Message string
	Store   string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Store != "" {
		msg = fmt.Sprintf("%s (store: %s)", msg, e.Store)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewNotFoundError creates a NotFound error for the given record id.
func NewNotFoundError(store string, id int) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("record %d not found", id),
		Store:   store,
	}
}

// NewAlreadyExistsError creates an AlreadyExists error for the given record id.
func NewAlreadyExistsError(store string, id int) *StoreError {
	return &StoreError{
		Code:    ErrAlreadyExists,
		Message: fmt.Sprintf("record %d already exists", id),
		Store:   store,
	}
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewTypeMismatchError creates a TypeMismatch error. what is the offending
// value (updater, specification, path or record); its Go type is reported.
func NewTypeMismatchError(store string, what any) *StoreError {
	return &StoreError{
		Code:    ErrTypeMismatch,
		Message: fmt.Sprintf("%T does not target this store", what),
		Store:   store,
	}
}

// NewUnrecognizedTypeError creates an UnrecognizedType error naming the Go
// type of what. cause may be nil; when set it is the failure observed on the
// store that was attempted before giving up.
func NewUnrecognizedTypeError(what any, cause error) *StoreError {
	return &StoreError{
		Code:    ErrUnrecognizedType,
		Message: fmt.Sprintf("unknown record subtype: %T", what),
		Cause:   cause,
	}
}

// NewStoreFailureError wraps a backend error.
func NewStoreFailureError(store string, op string, cause error) *StoreError {
	return &StoreError{
		Code:    ErrStoreFailure,
		Message: op + " failed",
		Store:   store,
		Cause:   cause,
	}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

// hasCode reports whether any StoreError in err's chain carries code.
func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		var storeErr *StoreError
		if !goerrors.As(err, &storeErr) {
			return false
		}
		if storeErr.Code == code {
			return true
		}
		err = storeErr.Cause
	}
	return false
}

// IsNotFoundError returns true if the error is (or wraps) a NotFound error.
func IsNotFoundError(err error) bool {
	return hasCode(err, ErrNotFound)
}

// IsAlreadyExistsError returns true if the error is (or wraps) an AlreadyExists error.
func IsAlreadyExistsError(err error) bool {
	return hasCode(err, ErrAlreadyExists)
}

// IsInvalidArgumentError returns true if the error is (or wraps) an InvalidArgument error.
func IsInvalidArgumentError(err error) bool {
	return hasCode(err, ErrInvalidArgument)
}

// IsTypeMismatchError returns true if the error is a TypeMismatch routing signal.
func IsTypeMismatchError(err error) bool {
	return hasCode(err, ErrTypeMismatch)
}

// IsUnrecognizedTypeError returns true if the error is a terminal UnrecognizedType error.
func IsUnrecognizedTypeError(err error) bool {
	return hasCode(err, ErrUnrecognizedType)
}
