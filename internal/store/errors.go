package store

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	// ErrInvalidName is returned for type or field names outside [a-z][a-z0-9_]*.
	ErrInvalidName = errors.New("invalid name")

	// ErrUnstored is returned when an operation needs a bean's id but the
	// bean has never been stored.
	ErrUnstored = errors.New("bean has not been stored")

	// ErrSelfAssociation is returned when associating two beans of the same
	// type; link tables join two distinct types.
	ErrSelfAssociation = errors.New("cannot associate beans of the same type")

	// ErrNotFound is returned by Load when no bean has the requested id.
	ErrNotFound = errors.New("bean not found")
)

// IsConflict reports whether err is a uniqueness violation, e.g. two writers
// creating the same tag title at once. Callers may re-find and retry.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}

	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			mattnErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var moderncErr *moderncsqlite.Error
	if errors.As(err, &moderncErr) {
		switch moderncErr.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlitelib.SQLITE_CONSTRAINT:
			// Primary code only when extended codes are off
			return strings.Contains(moderncErr.Error(), "UNIQUE constraint failed")
		}
	}

	return false
}
