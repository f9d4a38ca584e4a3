package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Legal(t *testing.T) {
	cur := &Cursor{Values: []any{2020, 5}, ID: "m1"}
	cs := []Constraint{
		ArrayContainsAny("categoryCountrySlugs", []string{"hanh-dong", "au-my"}),
		In("type", []string{"single", "series"}),
		Lte("year", 2020),
		OrderBy("year", Desc),
		OrderBy("createdAt", Desc),
		StartAfter(cur),
		Limit(20),
	}
	assert.NoError(t, Validate(cs))
}

func TestValidate_Illegal(t *testing.T) {
	tests := []struct {
		name string
		cs   []Constraint
		want error
	}{
		{
			name: "two array filters",
			cs:   []Constraint{ArrayContainsAny("categorySlugs", []string{"a"}), ArrayContainsAny("countrySlugs", []string{"b"})},
			want: ErrMultipleArrayFilters,
		},
		{
			name: "inequalities on two fields",
			cs:   []Constraint{Gte("name_lower", "abc"), Lte("year", 2020)},
			want: ErrInequalityFields,
		},
		{
			name: "order not on inequality field",
			cs:   []Constraint{Lte("year", 2020), OrderBy("createdAt", Desc)},
			want: ErrOrderMismatch,
		},
		{
			name: "start-after without order",
			cs:   []Constraint{StartAfter(&Cursor{ID: "x"})},
			want: ErrCursorWithoutOrder,
		},
		{
			name: "cursor shape",
			cs:   []Constraint{OrderBy("view", Desc), StartAfter(&Cursor{Values: []any{1, 2}, ID: "x"})},
			want: ErrCursorShape,
		},
		{
			name: "zero limit",
			cs:   []Constraint{Limit(0)},
			want: ErrInvalidLimit,
		},
		{
			name: "two limits",
			cs:   []Constraint{Limit(1), Limit(2)},
			want: ErrDuplicateConstraint,
		},
		{
			name: "empty in",
			cs:   []Constraint{In("type", []string{})},
			want: ErrInvalidValue,
		},
		{
			name: "too many values",
			cs:   []Constraint{In("year", make([]int, MaxDisjunctValues+1))},
			want: ErrTooManyDisjunctValues,
		},
		{
			name: "bad field",
			cs:   []Constraint{Eq("name'; DROP", "x")},
			want: ErrInvalidField,
		},
		{
			name: "non-scalar value",
			cs:   []Constraint{Eq("tags", []string{"a"})},
			want: ErrInvalidValue,
		},
		{
			name: "nil inequality",
			cs:   []Constraint{Lt("year", nil)},
			want: ErrInvalidValue,
		},
		{
			name: "ordered twice",
			cs:   []Constraint{OrderBy("view", Desc), OrderBy("view", Asc)},
			want: ErrDuplicateOrder,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cs)
			require.Error(t, err)
			assert.True(t, IsQueryError(err))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_NormalizesNamedTypes(t *testing.T) {
	type movieType string
	cs, err := prepare([]Constraint{In("type", []movieType{"single"}), Lte("year", int32(2020))})
	require.NoError(t, err)
	assert.Equal(t, []any{"single"}, cs[0].Values)
	assert.Equal(t, float64(2020), cs[1].Value)
}

func TestQueryError_Message(t *testing.T) {
	err := Validate([]Constraint{Lte("year", 2020), OrderBy("createdAt", Desc)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order-by createdAt desc")
}

func TestConstraint_String(t *testing.T) {
	assert.Equal(t, "year <= 2020", Lte("year", 2020).String())
	assert.Equal(t, "type in [single, series]", In("type", []string{"single", "series"}).String())
	assert.Equal(t, "limit 20", Limit(20).String())
	assert.Equal(t, "order-by view desc", OrderBy("view", Desc).String())
}
