package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an insert collides with a UNIQUE column.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation is returned when a mandatory field is missing. No write
	// has been attempted when it is returned.
	ErrValidation = errors.New("validation error")

	// ErrPasswordTooLong is the ErrValidation returned for a password bcrypt
	// cannot hash.
	ErrPasswordTooLong = fmt.Errorf("%w: password longer than 72 bytes", ErrValidation)

	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// identifier or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorage wraps failures of the underlying store (disk, connection, locks).
	ErrStorage = errors.New("storage error")
)

// isUniqueViolation reports whether err is a sqlite3 UNIQUE/PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
