package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested document doesn't exist.
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable indicates a transient backend failure. Callers may retry.
	ErrUnavailable = errors.New("store unavailable")
)

// Legality violations, always wrapped in a *QueryError.
var (
	ErrInvalidField          = errors.New("invalid field path")
	ErrInvalidValue          = errors.New("invalid constraint value")
	ErrMultipleArrayFilters  = errors.New("at most one array-membership filter per query")
	ErrInequalityFields      = errors.New("inequality filters must all be on the same field")
	ErrOrderMismatch         = errors.New("first order-by must be on the inequality field")
	ErrDuplicateOrder        = errors.New("field ordered more than once")
	ErrCursorWithoutOrder    = errors.New("start-after requires an order-by")
	ErrCursorShape           = errors.New("cursor does not match order-by clauses")
	ErrInvalidLimit          = errors.New("limit must be positive")
	ErrDuplicateConstraint   = errors.New("constraint given more than once")
	ErrTooManyDisjunctValues = errors.New("too many values in membership filter")
)

// QueryError reports a constraint set rejected by a compiler or a backend.
type QueryError struct {
	Constraint string // human-readable description of the offending constraint
	Err        error
}

func (e *QueryError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("invalid query: %v", e.Err)
	}
	return fmt.Sprintf("invalid query at %s: %v", e.Constraint, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError reports whether err is or wraps a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
