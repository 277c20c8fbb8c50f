package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Storage Errors.

	// ErrPermitUnavailable indicates the caller gave up waiting for the writer permit.
	// Nothing was acquired and nothing was written.
	ErrPermitUnavailable = errors.New("writer permit unavailable")

	// ErrBusy indicates the database stayed locked past the busy timeout.
	ErrBusy = errors.New("database busy")

	// ErrConstraint indicates a row violated a UNIQUE, NOT NULL or FOREIGN KEY constraint.
	ErrConstraint = errors.New("constraint violation")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store closed")
)

// ConnectionError reports a failure to obtain or configure a database connection.
// Wait timeouts wrap ErrPermitUnavailable; open and PRAGMA failures wrap the driver error.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DataError reports a failed read or write against an entity.
// Kind is one of ErrConstraint, ErrBusy or nil for unclassified driver errors.
type DataError struct {
	Op   string
	Kind error
	Err  error
}

func (e *DataError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the classification and the driver error to errors.Is.
func (e *DataError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}
