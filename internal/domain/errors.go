package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request rejected for a missing or invalid field.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrAttachmentNotFound marks a read of an attachment that does not
	// resolve, either because the record has none or because the stored
	// object is gone. Distinct from ErrNotFound so callers can tell
	// "no such item" apart from "item exists, photo does not".
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// StorageError wraps a filesystem failure from the attachment store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError wraps a row-store failure or constraint violation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
