// Package catalog defines the movie catalog entities and the filter vocabulary used to browse them.
package catalog

import (
	"slices"
	"time"
)

// Collection names in the document store.
const (
	CollectionMovies     = "movies"
	CollectionCategories = "categories"
	CollectionCountries  = "countries"
	CollectionComments   = "comments"
	CollectionFavorites  = "favorites"
	CollectionSaved      = "saved_movies"
	CollectionWatched    = "watched_movies"
	CollectionStatistics = "statistics"
)

// Movie document field names used by queries.
const (
	FieldName                 = "name"
	FieldNameLower            = "name_lower"
	FieldSlug                 = "slug"
	FieldType                 = "type"
	FieldYear                 = "year"
	FieldLang                 = "lang"
	FieldView                 = "view"
	FieldRating               = "rating"
	FieldCategorySlugs        = "categorySlugs"
	FieldCountrySlugs         = "countrySlugs"
	FieldCategoryCountrySlugs = "categoryCountrySlugs"
	FieldCreatedAt            = "createdAt"
	FieldUpdatedAt            = "updatedAt"
)

// MovieType distinguishes single films from series and other formats.
type MovieType string

const (
	TypeSingle    MovieType = "single"
	TypeSeries    MovieType = "series"
	TypeAnimation MovieType = "hoathinh"
	TypeTVShows   MovieType = "tvshows"
)

// Valid reports whether t is a known movie type.
func (t MovieType) Valid() bool {
	switch t {
	case TypeSingle, TypeSeries, TypeAnimation, TypeTVShows:
		return true
	}
	return false
}

// Language is the audio/subtitle variant of a movie.
type Language string

const (
	LangVietsub    Language = "Vietsub"
	LangThuyetMinh Language = "Thuyết Minh"
	LangLongTieng  Language = "Lồng Tiếng"
)

// Valid reports whether l is a known language variant.
func (l Language) Valid() bool {
	switch l {
	case LangVietsub, LangThuyetMinh, LangLongTieng:
		return true
	}
	return false
}

// MovieStatus tracks whether all episodes have been published.
type MovieStatus string

const (
	StatusCompleted   MovieStatus = "completed"
	StatusOngoing     MovieStatus = "ongoing"
	StatusUncompleted MovieStatus = "uncompleted"
)

// Taxon is a name/slug pair denormalized onto movies (category or country).
type Taxon struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Placeholder is used when a movie has no category or country yet.
var Placeholder = Taxon{Name: "Chưa cập nhật", Slug: "chua-cap-nhat"}

// Movie is a catalog entry.
type Movie struct {
	ID             string      `json:"id"`
	Slug           string      `json:"slug"`
	Name           string      `json:"name"`
	OriginName     string      `json:"origin_name"`
	Content        string      `json:"content"`
	Type           MovieType   `json:"type"`
	Status         MovieStatus `json:"status"`
	Year           int         `json:"year"`
	Lang           Language    `json:"lang"`
	Quality        string      `json:"quality"`
	EpisodeCurrent string      `json:"episode_current"`
	EpisodeTotal   int         `json:"episode_total"`
	PosterURL      string      `json:"poster_url"`
	ThumbURL       string      `json:"thumb_url"`
	TrailerURL     string      `json:"trailer_url"`
	View           int64       `json:"view"`
	Rating         float64     `json:"rating"`
	VoteCount      int         `json:"vote_count"`
	Categories     []Taxon     `json:"category"`
	Countries      []Taxon     `json:"country"`
	Actors         []string    `json:"actor"`
	Directors      []string    `json:"director"`

	// Stored as epoch milliseconds under createdAt/updatedAt so they sort numerically.
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Derived fields, recomputed by Derive on every write.
	NameLower            string   `json:"name_lower"`
	CategorySlugs        []string `json:"categorySlugs"`
	CountrySlugs         []string `json:"countrySlugs"`
	CategoryCountrySlugs []string `json:"categoryCountrySlugs"`
}

// Derive recomputes the denormalized fields queries filter on.
// Missing categories or countries fall back to Placeholder.
func (m *Movie) Derive() {
	if len(m.Categories) == 0 {
		m.Categories = []Taxon{Placeholder}
	}
	if len(m.Countries) == 0 {
		m.Countries = []Taxon{Placeholder}
	}
	m.NameLower = NameKey(m.Name)
	m.CategorySlugs = taxonSlugs(m.Categories)
	m.CountrySlugs = taxonSlugs(m.Countries)

	union := make([]string, 0, len(m.CategorySlugs)+len(m.CountrySlugs))
	union = append(union, m.CategorySlugs...)
	for _, s := range m.CountrySlugs {
		if !slices.Contains(union, s) {
			union = append(union, s)
		}
	}
	m.CategoryCountrySlugs = union
}

func taxonSlugs(ts []Taxon) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		if t.Slug == "" || slices.Contains(out, t.Slug) {
			continue
		}
		out = append(out, t.Slug)
	}
	return out
}

// TaxonEntry is a category or country as managed by the back-office.
type TaxonEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	TotalViews int64     `json:"totalViews"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Comment is a user review on a movie.
type Comment struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movieId"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	LikeCount int       `json:"like_count"`
	LikedBy   []string  `json:"likedby"`
	CreatedAt time.Time `json:"-"`
}

// ListKind names a per-user movie list.
type ListKind string

const (
	ListFavorites ListKind = "favorites"
	ListSaved     ListKind = "saved"
	ListWatched   ListKind = "watched"
)

// Collection returns the store collection backing the list.
func (k ListKind) Collection() string {
	switch k {
	case ListFavorites:
		return CollectionFavorites
	case ListSaved:
		return CollectionSaved
	case ListWatched:
		return CollectionWatched
	}
	return ""
}

// ListEntry is a movie snapshot on a user's list.
type ListEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MovieID   string    `json:"movie_id"`
	Movie     Movie     `json:"movie_data"`
	Episode   string    `json:"episode"`
	CreatedAt time.Time `json:"-"`
}
