package domain

import "errors"

// ErrInvalidSlug is returned for slugs that fail the identifier grammar.
// Slugs become PostgreSQL schema names, so the grammar is a strict subset of
// SQL identifiers: lowercase ascii letters, digits and underscore, not
// starting with a digit, at most 63 bytes (the Postgres identifier limit).
var ErrInvalidSlug = errors.New("invalid tenant slug")

// reservedSlugs are schema names that can never belong to a tenant.
var reservedSlugs = map[string]struct{}{
	"public":             {},
	"information_schema": {},
	"pg_catalog":         {},
	"pg_toast":           {},
}

// ValidateSlug checks a tenant slug against the schema-identifier grammar.
// This is the single validation point: a slug that passes here is treated as
// a trusted schema-name token by the provisioner, which interpolates it into
// DDL. Nothing user-supplied reaches DDL without passing this function.
func ValidateSlug(slug string) error {
	if len(slug) == 0 || len(slug) > 63 {
		return ErrInvalidSlug
	}
	for i := 0; i < len(slug); i++ {
		c := slug[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return ErrInvalidSlug
			}
		default:
			return ErrInvalidSlug
		}
	}
	if _, reserved := reservedSlugs[slug]; reserved {
		return ErrInvalidSlug
	}
	if len(slug) >= 3 && slug[:3] == "pg_" {
		return ErrInvalidSlug
	}
	return nil
}
