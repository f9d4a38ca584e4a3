// Package query compiles catalog searches into document store constraints.
//
// The compiler is deterministic: the same SearchQuery always yields the same
// constraint list, and every list it emits passes docstore.Validate.
package query

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
)

// MaxPageSize caps SearchQuery.PageSize.
const MaxPageSize = 100

// prefixSentinel is the highest code point; appended to a term it bounds
// every string that starts with the term.
const prefixSentinel = "\U0010FFFF"

var (
	// ErrInvalidPage indicates a page number below 1 or a non-positive page size.
	ErrInvalidPage = errors.New("invalid page")

	// ErrYearConflict indicates explicit years newer than the "older" bucket
	// were combined with it.
	ErrYearConflict = errors.New("explicit years after the cutoff cannot be combined with older")

	// ErrMultipleRanges indicates a name search combined with the "older" year bucket.
	ErrMultipleRanges = errors.New("name search cannot be combined with older years")
)

// SearchQuery is one page request against the movies collection.
type SearchQuery struct {
	Term     string
	Filters  catalog.FilterState
	Page     int
	PageSize int
	Cursor   *docstore.Cursor
}

// Plan is a compiled query.
type Plan struct {
	Filters  []docstore.Constraint
	Order    []docstore.Constraint
	PageSize int
}

// PageConstraints returns filters, order-bys, an optional start-after and the limit.
func (p *Plan) PageConstraints(cursor *docstore.Cursor, limit int) []docstore.Constraint {
	out := make([]docstore.Constraint, 0, len(p.Filters)+len(p.Order)+2)
	out = append(out, p.Filters...)
	out = append(out, p.Order...)
	if cursor != nil {
		out = append(out, docstore.StartAfter(cursor))
	}
	return append(out, docstore.Limit(limit))
}

// CountConstraints returns the filters only.
func (p *Plan) CountConstraints() []docstore.Constraint {
	return slices.Clone(p.Filters)
}

// Compile validates q and builds its plan.
func Compile(q SearchQuery) (*Plan, error) {
	if q.Page < 1 || q.PageSize <= 0 {
		return nil, &docstore.QueryError{
			Constraint: fmt.Sprintf("page %d size %d", q.Page, q.PageSize),
			Err:        ErrInvalidPage,
		}
	}
	if err := q.Filters.Validate(); err != nil {
		return nil, &docstore.QueryError{Constraint: "filters", Err: err}
	}

	plan, err := CompileFilters(q.Term, q.Filters)
	if err != nil {
		return nil, err
	}
	plan.PageSize = min(q.PageSize, MaxPageSize)

	if err := docstore.Validate(plan.PageConstraints(q.Cursor, plan.PageSize)); err != nil {
		return nil, err
	}
	return plan, nil
}

// CompileFilters builds the filter and order clauses for a term and filter
// selection, without paging. The term matches name prefixes only, never
// substrings.
func CompileFilters(term string, f catalog.FilterState) (*Plan, error) {
	f = f.Normalize()
	p := &Plan{}

	// taxonomy: never more than one array-membership filter
	switch {
	case len(f.Categories) > 0 && len(f.Countries) > 0:
		union := append(slices.Clone(f.Categories), f.Countries...)
		slices.Sort(union)
		p.Filters = append(p.Filters, docstore.ArrayContainsAny(catalog.FieldCategoryCountrySlugs, slices.Compact(union)))
	case len(f.Categories) > 0:
		p.Filters = append(p.Filters, docstore.ArrayContainsAny(catalog.FieldCategorySlugs, f.Categories))
	case len(f.Countries) > 0:
		p.Filters = append(p.Filters, docstore.ArrayContainsAny(catalog.FieldCountrySlugs, f.Countries))
	}

	if len(f.Types) > 0 {
		p.Filters = append(p.Filters, docstore.In(catalog.FieldType, f.Types))
	}
	if len(f.Languages) > 0 {
		p.Filters = append(p.Filters, docstore.In(catalog.FieldLang, f.Languages))
	}

	var rangeOrder *docstore.Constraint

	yearFilter, older, err := compileYears(f.Years)
	if err != nil {
		return nil, err
	}
	if yearFilter != nil {
		p.Filters = append(p.Filters, *yearFilter)
	}
	if older {
		o := docstore.OrderBy(catalog.FieldYear, docstore.Desc)
		rangeOrder = &o
	}

	if key := catalog.NameKey(term); key != "" {
		if rangeOrder != nil {
			return nil, &docstore.QueryError{
				Constraint: fmt.Sprintf("%s prefix %q", catalog.FieldNameLower, key),
				Err:        ErrMultipleRanges,
			}
		}
		p.Filters = append(p.Filters,
			docstore.Gte(catalog.FieldNameLower, key),
			docstore.Lt(catalog.FieldNameLower, key+prefixSentinel),
		)
		o := docstore.OrderBy(catalog.FieldNameLower, docstore.Asc)
		rangeOrder = &o
	}

	by := catalog.ResolveSort(string(f.Sort))
	dir := docstore.Asc
	if by.Desc {
		dir = docstore.Desc
	}
	switch {
	case rangeOrder == nil:
		p.Order = []docstore.Constraint{docstore.OrderBy(by.Field, dir)}
	case rangeOrder.Field == by.Field:
		// sorting on the range field itself: the sort direction wins
		p.Order = []docstore.Constraint{docstore.OrderBy(by.Field, dir)}
	default:
		p.Order = []docstore.Constraint{*rangeOrder, docstore.OrderBy(by.Field, dir)}
	}
	return p, nil
}

// compileYears expands the older bucket to year <= CutoffYear. Explicit
// years at or before the cutoff are absorbed by it; later ones conflict.
func compileYears(years []catalog.YearOption) (*docstore.Constraint, bool, error) {
	if len(years) == 0 {
		return nil, false, nil
	}
	older := slices.Contains(years, catalog.YearOlder)

	var explicit []int
	for _, y := range years {
		if y == catalog.YearOlder {
			continue
		}
		if older && int(y) <= catalog.CutoffYear {
			continue
		}
		explicit = append(explicit, int(y))
	}

	if older {
		if len(explicit) > 0 {
			return nil, false, &docstore.QueryError{
				Constraint: fmt.Sprintf("%s in %v with older", catalog.FieldYear, explicit),
				Err:        ErrYearConflict,
			}
		}
		c := docstore.Lte(catalog.FieldYear, catalog.CutoffYear)
		return &c, true, nil
	}
	c := docstore.In(catalog.FieldYear, explicit)
	return &c, false, nil
}
