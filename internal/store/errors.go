package store

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated, e.g. a
	// duplicate slug, domain or subdomain. The unique index is the
	// serialization point for concurrent tenant creation.
	ErrConflict = errors.New("conflict")
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"
