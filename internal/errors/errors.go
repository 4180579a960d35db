// Package errors provides structured error types for the design store.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrInvalidInput         = errors.New("invalid input")
	ErrStorageIO            = errors.New("storage I/O failure")
	ErrArchitectureNotFound = errors.New("architecture not found")
	ErrModuleNotFound       = errors.New("module not found")
)

// StorageError represents a filesystem or decoding failure on a document.
// A missing file is never a StorageError.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes every StorageError match ErrStorageIO.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageIO
}

// NewStorageError wraps err with the operation and document path.
func NewStorageError(op, path string, err error) *StorageError {
	return &StorageError{Op: op, Path: path, Err: err}
}

// IsNotFound returns true for any of the expected "absent" outcomes.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrArchitectureNotFound) ||
		errors.Is(err, ErrModuleNotFound)
}

// IsStorage returns true if err is a genuine I/O fault.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorageIO)
}

// IsRetryable reports whether repeating the operation may succeed.
// Only storage faults qualify.
func IsRetryable(err error) bool {
	return IsStorage(err)
}
