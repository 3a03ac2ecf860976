package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgreSQL error codes inspected by the Is* helpers
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeUndefinedTable      = "42P01"
)

// Code returns the SQLSTATE of a PostgreSQL error from either driver, or ""
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation returns true if the error is a unique constraint violation
func IsUniqueViolation(err error) bool {
	return Code(err) == codeUniqueViolation
}

// IsForeignKeyViolation returns true if the error is a foreign key violation
func IsForeignKeyViolation(err error) bool {
	return Code(err) == codeForeignKeyViolation
}

// IsNotNullViolation returns true if the error is a NOT NULL violation
func IsNotNullViolation(err error) bool {
	return Code(err) == codeNotNullViolation
}

// IsUndefinedTable returns true if the statement referenced a missing table
func IsUndefinedTable(err error) bool {
	return Code(err) == codeUndefinedTable
}
