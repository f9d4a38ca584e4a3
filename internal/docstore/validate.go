package docstore

import (
	"fmt"
	"regexp"
)

// MaxDisjunctValues caps In and ArrayContainsAny operand lists.
const MaxDisjunctValues = 30

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Validate checks a constraint list against the legality rules shared by all
// backends. Violations are returned as *QueryError.
func Validate(constraints []Constraint) error {
	_, err := prepare(constraints)
	return err
}

// prepare validates constraints and returns a copy with normalized operands.
func prepare(constraints []Constraint) ([]Constraint, error) {
	out := make([]Constraint, 0, len(constraints))

	var (
		arrayFilter  *Constraint
		inequality   *Constraint
		orders       []Constraint
		cursor       *Constraint
		limit        *Constraint
		orderedField = map[string]bool{}
	)

	for _, c := range constraints {
		qerr := func(err error) error {
			return &QueryError{Constraint: c.String(), Err: err}
		}

		switch c.Op {
		case OpEq, OpLt, OpLte, OpGt, OpGte, OpIn, OpArrayContains, OpArrayContainsAny, OpOrderBy:
			if !fieldPattern.MatchString(c.Field) {
				return nil, qerr(fmt.Errorf("%w: %q", ErrInvalidField, c.Field))
			}
		}

		switch c.Op {
		case OpEq:
			v, err := normalize(c.Value)
			if err != nil || !isScalar(v) {
				return nil, qerr(ErrInvalidValue)
			}
			c.Value = v

		case OpLt, OpLte, OpGt, OpGte:
			v, err := normalize(c.Value)
			if err != nil || v == nil || !isScalar(v) {
				return nil, qerr(ErrInvalidValue)
			}
			c.Value = v
			if inequality != nil && inequality.Field != c.Field {
				return nil, qerr(ErrInequalityFields)
			}
			inequality = &c

		case OpArrayContains:
			v, err := normalize(c.Value)
			if err != nil || v == nil || !isScalar(v) {
				return nil, qerr(ErrInvalidValue)
			}
			c.Value = v
			if arrayFilter != nil {
				return nil, qerr(ErrMultipleArrayFilters)
			}
			arrayFilter = &c

		case OpIn, OpArrayContainsAny:
			if len(c.Values) == 0 {
				return nil, qerr(fmt.Errorf("%w: empty value list", ErrInvalidValue))
			}
			if len(c.Values) > MaxDisjunctValues {
				return nil, qerr(ErrTooManyDisjunctValues)
			}
			vals := make([]any, len(c.Values))
			for i, raw := range c.Values {
				v, err := normalize(raw)
				if err != nil || v == nil || !isScalar(v) {
					return nil, qerr(ErrInvalidValue)
				}
				vals[i] = v
			}
			c.Values = vals
			if c.Op == OpArrayContainsAny {
				if arrayFilter != nil {
					return nil, qerr(ErrMultipleArrayFilters)
				}
				arrayFilter = &c
			}

		case OpOrderBy:
			if c.Dir != Asc && c.Dir != Desc {
				return nil, qerr(fmt.Errorf("%w: direction %d", ErrInvalidValue, c.Dir))
			}
			if orderedField[c.Field] {
				return nil, qerr(ErrDuplicateOrder)
			}
			orderedField[c.Field] = true
			orders = append(orders, c)

		case OpStartAfter:
			if cursor != nil {
				return nil, qerr(ErrDuplicateConstraint)
			}
			if c.Cursor == nil || c.Cursor.ID == "" {
				return nil, qerr(fmt.Errorf("%w: empty cursor", ErrInvalidValue))
			}
			vals := make([]any, len(c.Cursor.Values))
			for i, raw := range c.Cursor.Values {
				v, err := normalize(raw)
				if err != nil {
					return nil, qerr(ErrInvalidValue)
				}
				vals[i] = v
			}
			c.Cursor = &Cursor{Values: vals, ID: c.Cursor.ID}
			cursor = &c

		case OpLimit:
			if limit != nil {
				return nil, qerr(ErrDuplicateConstraint)
			}
			if c.N <= 0 {
				return nil, qerr(ErrInvalidLimit)
			}
			limit = &c

		default:
			return nil, qerr(fmt.Errorf("unknown constraint op %d", c.Op))
		}
		out = append(out, c)
	}

	if inequality != nil && len(orders) > 0 && orders[0].Field != inequality.Field {
		return nil, &QueryError{Constraint: orders[0].String(), Err: ErrOrderMismatch}
	}
	if cursor != nil {
		if len(orders) == 0 {
			return nil, &QueryError{Constraint: cursor.String(), Err: ErrCursorWithoutOrder}
		}
		if len(cursor.Cursor.Values) != len(orders) {
			return nil, &QueryError{Constraint: cursor.String(), Err: ErrCursorShape}
		}
	}
	return out, nil
}
