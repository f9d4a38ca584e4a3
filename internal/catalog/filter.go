package catalog

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// CutoffYear is the upper bound of the "older" year bucket.
const CutoffYear = 2020

// olderLabel is the wire form of YearOlder shown by the filter panel.
const olderLabel = "Cũ hơn"

// YearOption is an explicit release year or the YearOlder bucket.
type YearOption int

// YearOlder selects every movie released in or before CutoffYear.
const YearOlder YearOption = -1

// ParseYearOption accepts a four-digit year, "older", or "Cũ hơn".
func ParseYearOption(s string) (YearOption, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "older") || s == olderLabel {
		return YearOlder, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 2100 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return YearOption(y), nil
}

func (y YearOption) String() string {
	if y == YearOlder {
		return olderLabel
	}
	return strconv.Itoa(int(y))
}

// MarshalText renders the year as it appears in filter URLs.
func (y YearOption) MarshalText() ([]byte, error) {
	return []byte(y.String()), nil
}

// UnmarshalText parses the forms accepted by ParseYearOption.
func (y *YearOption) UnmarshalText(b []byte) error {
	v, err := ParseYearOption(string(b))
	if err != nil {
		return err
	}
	*y = v
	return nil
}

// UnmarshalJSON accepts a bare number as well as any string form.
func (y *YearOption) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		return y.UnmarshalText([]byte(x))
	case float64:
		if x != math.Trunc(x) {
			return fmt.Errorf("invalid year %v", x)
		}
		return y.UnmarshalText([]byte(strconv.Itoa(int(x))))
	}
	return fmt.Errorf("invalid year %s", b)
}

// YearOptions lists the year choices of the filter panel: every year from
// current down to CutoffYear+1, then YearOlder.
func YearOptions(current int) []YearOption {
	var out []YearOption
	for y := current; y > CutoffYear; y-- {
		out = append(out, YearOption(y))
	}
	return append(out, YearOlder)
}

// FilterState is the active filter selection of a listing view.
// Every set is kept sorted and deduplicated by Normalize; fields are independent of each other.
type FilterState struct {
	Types      []MovieType  `json:"type,omitempty"`
	Countries  []string     `json:"country,omitempty"`
	Categories []string     `json:"category,omitempty"`
	Years      []YearOption `json:"year,omitempty"`
	Languages  []Language   `json:"lang,omitempty"`
	Sort       SortKey      `json:"sort,omitempty"`
}

// Normalize returns a copy with sorted, deduplicated sets and a resolved sort key.
func (f FilterState) Normalize() FilterState {
	return FilterState{
		Types:      sortedSet(f.Types),
		Countries:  sortedSet(f.Countries),
		Categories: sortedSet(f.Categories),
		Years:      sortedSet(f.Years),
		Languages:  sortedSet(f.Languages),
		Sort:       ResolveSort(string(f.Sort)).Key,
	}
}

// Validate rejects unknown enum values. Slugs are not checked against the taxonomy.
func (f FilterState) Validate() error {
	for _, t := range f.Types {
		if !t.Valid() {
			return fmt.Errorf("unknown movie type %q", t)
		}
	}
	for _, l := range f.Languages {
		if !l.Valid() {
			return fmt.Errorf("unknown language %q", l)
		}
	}
	if f.Sort != "" {
		if _, ok := lookupSort(string(f.Sort)); !ok {
			return fmt.Errorf("unknown sort %q", f.Sort)
		}
	}
	return nil
}

func sortedSet[T cmp.Ordered](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// SplitList splits a comma-separated query parameter, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
