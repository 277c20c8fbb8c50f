package sqlite

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// classify wraps a failed statement in a *domain.DataError tagged with the
// SQLite failure kind. Errors that already carry a classification
// (connection errors, domain sentinels) pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var connErr *domain.ConnectionError
	var dataErr *domain.DataError
	switch {
	case errors.As(err, &connErr), errors.As(err, &dataErr):
		return err
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		return err
	}

	return &domain.DataError{Op: op, Kind: kindOf(err), Err: err}
}

// kindOf maps a driver error to ErrConstraint or ErrBusy, or nil when the
// failure is neither.
func kindOf(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}

	// Extended result codes carry the primary code in the low byte.
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return domain.ErrConstraint
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return domain.ErrBusy
	default:
		return nil
	}
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY conflict.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}
