package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovie_Derive(t *testing.T) {
	m := &Movie{
		Name:       "Người Nhện: Không Còn Nhà",
		Categories: []Taxon{{Name: "Hành Động", Slug: "hanh-dong"}, {Name: "Viễn Tưởng", Slug: "vien-tuong"}},
		Countries:  []Taxon{{Name: "Âu Mỹ", Slug: "au-my"}},
	}
	m.Derive()

	assert.Equal(t, "người nhện: không còn nhà", m.NameLower)
	assert.Equal(t, []string{"hanh-dong", "vien-tuong"}, m.CategorySlugs)
	assert.Equal(t, []string{"au-my"}, m.CountrySlugs)
	assert.Equal(t, []string{"hanh-dong", "vien-tuong", "au-my"}, m.CategoryCountrySlugs)
}

func TestMovie_Derive_Placeholder(t *testing.T) {
	m := &Movie{Name: "Untitled"}
	m.Derive()

	assert.Equal(t, []Taxon{Placeholder}, m.Categories)
	assert.Equal(t, []Taxon{Placeholder}, m.Countries)
	// union is deduplicated
	assert.Equal(t, []string{"chua-cap-nhat"}, m.CategoryCountrySlugs)
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Avengers: ENDGAME ", "avengers: endgame"},
		{"ĐẢO HẢI TẶC", "đảo hải tặc"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NameKey(tt.in))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hành Động", "hanh-dong"},
		{"Hàn Quốc", "han-quoc"},
		{"Âu Mỹ", "au-my"},
		{"Việt Nam", "viet-nam"},
		{"  Khoa Học -- Viễn Tưởng!! ", "khoa-hoc-vien-tuong"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestParseYearOption(t *testing.T) {
	y, err := ParseYearOption("2024")
	require.NoError(t, err)
	assert.Equal(t, YearOption(2024), y)

	y, err = ParseYearOption("Cũ hơn")
	require.NoError(t, err)
	assert.Equal(t, YearOlder, y)

	y, err = ParseYearOption("older")
	require.NoError(t, err)
	assert.Equal(t, YearOlder, y)

	_, err = ParseYearOption("soon")
	assert.Error(t, err)
	_, err = ParseYearOption("1200")
	assert.Error(t, err)
}

func TestYearOption_JSON(t *testing.T) {
	f := FilterState{Years: []YearOption{2024, YearOlder}}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":["2024","Cũ hơn"]}`, string(b))

	var back FilterState
	require.NoError(t, json.Unmarshal([]byte(`{"year":["2023","older"],"sort":"view"}`), &back))
	assert.Equal(t, []YearOption{2023, YearOlder}, back.Years)
	assert.Equal(t, SortView, back.Sort)

	var numeric FilterState
	require.NoError(t, json.Unmarshal([]byte(`{"year":[2024,"2019"]}`), &numeric))
	assert.Equal(t, []YearOption{2024, 2019}, numeric.Years)

	assert.Error(t, json.Unmarshal([]byte(`{"year":[2024.5]}`), &numeric))
	assert.Error(t, json.Unmarshal([]byte(`{"year":[true]}`), &numeric))
	assert.Error(t, json.Unmarshal([]byte(`{"year":[1200]}`), &numeric))
}

func TestFilterState_Normalize(t *testing.T) {
	a := FilterState{
		Categories: []string{"hanh-dong", "hai-huoc", "hanh-dong"},
		Years:      []YearOption{2024, YearOlder, 2024},
	}
	n := a.Normalize()
	assert.Equal(t, []string{"hai-huoc", "hanh-dong"}, n.Categories)
	assert.Equal(t, []YearOption{YearOlder, 2024}, n.Years)
	assert.Equal(t, SortNewest, n.Sort)
	assert.Equal(t, n, n.Normalize())
}

func TestYearOptions(t *testing.T) {
	assert.Equal(t, []YearOption{2023, 2022, 2021, YearOlder}, YearOptions(2023))
	assert.Equal(t, []YearOption{YearOlder}, YearOptions(CutoffYear))
}

func TestFilterState_Validate(t *testing.T) {
	assert.NoError(t, FilterState{}.Validate())
	assert.NoError(t, FilterState{Types: []MovieType{TypeSeries}, Languages: []Language{LangVietsub}, Sort: "Mới nhất"}.Validate())
	assert.Error(t, FilterState{Types: []MovieType{"documentary"}}.Validate())
	assert.Error(t, FilterState{Languages: []Language{"English"}}.Validate())
	assert.Error(t, FilterState{Sort: "random"}.Validate())
}

func TestResolveSort(t *testing.T) {
	assert.Equal(t, FieldView, ResolveSort("view").Field)
	assert.Equal(t, FieldCreatedAt, ResolveSort("Mới nhất").Field)
	assert.Equal(t, DefaultSort, ResolveSort("nope"))
	assert.Equal(t, DefaultSort, ResolveSort(""))
	assert.False(t, ResolveSort("name").Desc)
	assert.Len(t, Sorts(), 6)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Nil(t, SplitList(""))
}

func TestMatchTaxon(t *testing.T) {
	candidates := []Taxon{
		{Name: "Hành Động", Slug: "hanh-dong"},
		{Name: "Hài Hước", Slug: "hai-huoc"},
		{Name: "Tình Cảm", Slug: "tinh-cam"},
	}

	m := MatchTaxon("hanh-dong", candidates)
	assert.Equal(t, "hanh-dong", m.Taxon.Slug)
	assert.Equal(t, ConfidenceHigh, m.Confidence)

	m = MatchTaxon("Hành động", candidates)
	assert.Equal(t, "hanh-dong", m.Taxon.Slug)
	assert.Equal(t, ConfidenceHigh, m.Confidence)

	m = MatchTaxon("tinh cam", candidates)
	assert.Equal(t, "tinh-cam", m.Taxon.Slug)

	m = MatchTaxon("", candidates)
	assert.Equal(t, ConfidenceNone, m.Confidence)

	m = MatchTaxon("zzzzzz", candidates)
	assert.Equal(t, ConfidenceNone, m.Confidence)
}
