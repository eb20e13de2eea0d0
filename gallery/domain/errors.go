package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageFailure is matched by every error caused by the storage medium
	// being unreachable, full or corrupted.
	ErrStorageFailure = errors.New("storage failure")

	ErrEmptyLocator = errors.New("image locator cannot be empty")
)

// StorageError wraps a driver error with the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageFailure, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorageFailure as a match so callers can test with errors.Is.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// NewStorageError returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
