package catalog

// SortKey names one of the fixed listing orders.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortUpdated SortKey = "updated"
	SortYear    SortKey = "year"
	SortView    SortKey = "view"
	SortRating  SortKey = "rating"
	SortName    SortKey = "name"
)

// Sort is a resolved (field, direction) pair.
type Sort struct {
	Key   SortKey
	Label string
	Field string
	Desc  bool
}

var sortTable = map[SortKey]Sort{
	SortNewest:  {Key: SortNewest, Label: "Mới nhất", Field: FieldCreatedAt, Desc: true},
	SortUpdated: {Key: SortUpdated, Label: "Thời gian cập nhật", Field: FieldUpdatedAt, Desc: true},
	SortYear:    {Key: SortYear, Label: "Năm sản xuất", Field: FieldYear, Desc: true},
	SortView:    {Key: SortView, Label: "Lượt xem", Field: FieldView, Desc: true},
	SortRating:  {Key: SortRating, Label: "Điểm đánh giá", Field: FieldRating, Desc: true},
	SortName:    {Key: SortName, Label: "Tên phim", Field: FieldNameLower, Desc: false},
}

// DefaultSort is used when no sort or an unknown sort is requested.
var DefaultSort = sortTable[SortNewest]

// ResolveSort looks up a sort by key or display label, falling back to DefaultSort.
func ResolveSort(name string) Sort {
	if s, ok := lookupSort(name); ok {
		return s
	}
	return DefaultSort
}

func lookupSort(name string) (Sort, bool) {
	if s, ok := sortTable[SortKey(name)]; ok {
		return s, true
	}
	for _, s := range sortTable {
		if s.Label == name {
			return s, true
		}
	}
	return Sort{}, false
}

// Sorts lists the available orders, default first.
func Sorts() []Sort {
	return []Sort{
		sortTable[SortNewest],
		sortTable[SortUpdated],
		sortTable[SortYear],
		sortTable[SortView],
		sortTable[SortRating],
		sortTable[SortName],
	}
}
