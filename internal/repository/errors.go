package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrCodeNotFound      = errors.New("verification code not found")
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a unique constraint failure and, if so,
// the name of the constraint or column list the driver reported.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	// SQLite: "UNIQUE constraint failed: accounts.username"
	msg := err.Error()
	if idx := strings.Index(msg, "UNIQUE constraint failed:"); idx != -1 {
		return msg[idx+len("UNIQUE constraint failed:"):], true
	}
	if strings.Contains(msg, "duplicate key value") {
		return msg, true
	}

	return "", false
}

// accountConflict maps a unique violation on accounts to the matching sentinel.
func accountConflict(err error) error {
	target, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	if strings.Contains(target, "username") {
		return ErrDuplicateUsername
	}
	if strings.Contains(target, "email") {
		return ErrDuplicateEmail
	}
	return err
}
