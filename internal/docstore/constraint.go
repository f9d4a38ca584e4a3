package docstore

import (
	"fmt"
	"strings"
)

// Op identifies a constraint kind.
type Op int

const (
	OpEq Op = iota + 1
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpArrayContains
	OpArrayContainsAny
	OpOrderBy
	OpStartAfter
	OpLimit
)

var opNames = map[Op]string{
	OpEq:               "==",
	OpLt:               "<",
	OpLte:              "<=",
	OpGt:               ">",
	OpGte:              ">=",
	OpIn:               "in",
	OpArrayContains:    "array-contains",
	OpArrayContainsAny: "array-contains-any",
	OpOrderBy:          "order-by",
	OpStartAfter:       "start-after",
	OpLimit:            "limit",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Direction is an order-by direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Constraint is a single filter, ordering or paging clause.
// Build them with the constructor functions rather than literals.
type Constraint struct {
	Op     Op
	Field  string
	Value  any   // comparison operand for Eq, inequalities and ArrayContains
	Values []any // operands for In and ArrayContainsAny
	Dir    Direction
	Cursor *Cursor
	N      int
}

// Eq matches documents whose field equals v.
func Eq(field string, v any) Constraint { return Constraint{Op: OpEq, Field: field, Value: v} }

// Lt matches documents whose field is less than v.
func Lt(field string, v any) Constraint { return Constraint{Op: OpLt, Field: field, Value: v} }

// Lte matches documents whose field is less than or equal to v.
func Lte(field string, v any) Constraint { return Constraint{Op: OpLte, Field: field, Value: v} }

// Gt matches documents whose field is greater than v.
func Gt(field string, v any) Constraint { return Constraint{Op: OpGt, Field: field, Value: v} }

// Gte matches documents whose field is greater than or equal to v.
func Gte(field string, v any) Constraint { return Constraint{Op: OpGte, Field: field, Value: v} }

// In matches documents whose field equals any of values.
func In[T any](field string, values []T) Constraint {
	return Constraint{Op: OpIn, Field: field, Values: anySlice(values)}
}

// ArrayContains matches documents whose array field holds v.
func ArrayContains(field string, v any) Constraint {
	return Constraint{Op: OpArrayContains, Field: field, Value: v}
}

// ArrayContainsAny matches documents whose array field holds any of values.
func ArrayContainsAny[T any](field string, values []T) Constraint {
	return Constraint{Op: OpArrayContainsAny, Field: field, Values: anySlice(values)}
}

// OrderBy sorts results by field. Documents missing the field are excluded.
func OrderBy(field string, dir Direction) Constraint {
	return Constraint{Op: OpOrderBy, Field: field, Dir: dir}
}

// StartAfter resumes a query after the document the cursor was taken from.
func StartAfter(c *Cursor) Constraint { return Constraint{Op: OpStartAfter, Cursor: c} }

// Limit caps the number of returned documents.
func Limit(n int) Constraint { return Constraint{Op: OpLimit, N: n} }

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// IsInequality reports whether c is a range comparison.
func (c Constraint) IsInequality() bool {
	switch c.Op {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// IsArrayMembership reports whether c tests membership in an array field.
func (c Constraint) IsArrayMembership() bool {
	return c.Op == OpArrayContains || c.Op == OpArrayContainsAny
}

// IsFilter reports whether c restricts which documents match.
func (c Constraint) IsFilter() bool {
	switch c.Op {
	case OpOrderBy, OpStartAfter, OpLimit:
		return false
	}
	return true
}

func (c Constraint) String() string {
	switch c.Op {
	case OpOrderBy:
		return fmt.Sprintf("order-by %s %s", c.Field, c.Dir)
	case OpStartAfter:
		if c.Cursor == nil {
			return "start-after <nil>"
		}
		return fmt.Sprintf("start-after %s", c.Cursor.Encode())
	case OpLimit:
		return fmt.Sprintf("limit %d", c.N)
	case OpIn, OpArrayContainsAny:
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = fmt.Sprintf("%v", v)
		}
		return fmt.Sprintf("%s %s [%s]", c.Field, c.Op, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
	}
}

// Filters returns only the filter constraints of cs.
func Filters(cs []Constraint) []Constraint {
	var out []Constraint
	for _, c := range cs {
		if c.IsFilter() {
			out = append(out, c)
		}
	}
	return out
}

// OrderFields returns the order-by constraints of cs in order.
func OrderFields(cs []Constraint) []Constraint {
	var out []Constraint
	for _, c := range cs {
		if c.Op == OpOrderBy {
			out = append(out, c)
		}
	}
	return out
}
