// Package pgrepos implements the repositories over postgres with hand-written sqlx queries.
package pgrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
)

const uniqueViolation = "23505"

var newestFirst = core.DBOrdering{Field: "created_at"}.String() + ", " + core.DBOrdering{Field: "id"}.String()

// uniqueConstraint returns the violated constraint name when err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// trapNoRowsErr maps "no rows" to notFound and wraps anything else with msg.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func likePattern(s string) string {
	return "%" + s + "%"
}
