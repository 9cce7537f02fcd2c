package store

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID        = errors.New("duplicate transaction id")
	ErrMalformedSnapshot  = errors.New("malformed snapshot collection")
	ErrUnknownDriver      = errors.New("unknown store driver")
	errBackendUnavailable = errors.New("backend closed")
)

// DuplicateIDError is returned when appending a snapshot whose id is taken
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("transaction %s already exists", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// MalformedSnapshotError describes a persisted document that failed to parse.
// It is logged and recovered from, never returned by List.
type MalformedSnapshotError struct {
	Key string
	Err error
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("collection %q is malformed: %v", e.Key, e.Err)
}

func (e *MalformedSnapshotError) Unwrap() error { return e.Err }

func (e *MalformedSnapshotError) Is(target error) bool { return target == ErrMalformedSnapshot }
