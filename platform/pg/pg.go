// Package pg collects helpers shared by all Postgres backed services.
package pg

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const (
	// MetaNamespace is the namespace keeping all high-level meta info.
	MetaNamespace = "tally"

	// TimeFormat is used to format time fields for storage.
	TimeFormat = "2006-01-02 15:04:05.000 UTC"

	// URLTest points to a local Postgres for integration tests.
	URLTest = "postgres://%s@127.0.0.1:5432/tallier_test?sslmode=disable&connect_timeout=5"

	codeRelationNotFound = "42P01"

	guardIndex = `DO $$
		BEGIN
		IF NOT EXISTS (
			SELECT 1
			FROM pg_indexes
			WHERE schemaname = '%s'
			AND indexname = '%s'
		) THEN
		%s;
		END IF;
		END$$;`
)

// ErrRelationNotFound is returned when the queried relation is missing.
var ErrRelationNotFound = fmt.Errorf("relation not found")

// ClausesToWhere joins the given clauses into a WHERE clause.
func ClausesToWhere(clauses ...string) string {
	return fmt.Sprintf("WHERE %s", strings.Join(clauses, "\nAND "))
}

// GuardIndex wraps an index creation query with an existence check to keep
// setup idempotent.
func GuardIndex(namespace, index, query string, args ...interface{}) string {
	ps := []interface{}{
		index,
		namespace,
	}
	ps = append(ps, args...)

	return fmt.Sprintf(
		guardIndex,
		namespace,
		index,
		fmt.Sprintf(query, ps...),
	)
}

// IsRelationNotFound indicates if err is ErrRelationNotFound.
func IsRelationNotFound(err error) bool {
	return err == ErrRelationNotFound
}

// WrapError checks err for replacement with a package error.
func WrapError(err error) error {
	if e, ok := err.(*pq.Error); ok && e.Code == codeRelationNotFound {
		return ErrRelationNotFound
	}
	return err
}
