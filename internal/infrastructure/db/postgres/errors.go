package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const codeCheckViolation = "23514"

func IsPgCheckViolation(err error) bool { return pgCode(err) == codeCheckViolation }

// ConstraintName returns the violated constraint, if err carries one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
