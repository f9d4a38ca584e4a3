// internal/events/catalog.go
package events

// Entity types
const (
	EntityMovie    = "movie"
	EntityCategory = "category"
	EntityCountry  = "country"
	EntityComment  = "comment"
	EntityList     = "list"
	EntityStats    = "stats"
)

// Event type constants
const (
	EventMovieAdded      = "movie.added"
	EventMovieUpdated    = "movie.updated"
	EventMovieDeleted    = "movie.deleted"
	EventMoviesReindexed = "movie.reindexed"
	EventTaxonChanged    = "taxon.changed"
	EventCommentAdded    = "comment.added"
	EventListChanged     = "list.changed"
	EventStatsSnapshot   = "stats.snapshot"
)

// MoviePrefix matches every movie event type.
const MoviePrefix = "movie."

// MovieAdded is emitted when a movie is added to the catalog.
type MovieAdded struct {
	BaseEvent
	Slug string `json:"slug"`
	Name string `json:"name"`
	Type string `json:"movie_type"`
	Year int    `json:"year"`
}

// MovieUpdated is emitted when a movie's fields change.
type MovieUpdated struct {
	BaseEvent
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// MovieDeleted is emitted when a movie is removed.
type MovieDeleted struct {
	BaseEvent
}

// MoviesReindexed is emitted after derived fields are rebuilt for every movie.
type MoviesReindexed struct {
	BaseEvent
	Count int `json:"count"`
}

// TaxonChanged is emitted when a category or country is added, renamed or removed.
type TaxonChanged struct {
	BaseEvent
	Slug   string `json:"slug"`
	Action string `json:"action"` // "added", "updated", "deleted"
}

// CommentAdded is emitted when a user comments on a movie.
type CommentAdded struct {
	BaseEvent
	MovieID string `json:"movie_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
}

// ListChanged is emitted when a user's favorites, saved or watched list changes.
type ListChanged struct {
	BaseEvent
	UserID  string `json:"user_id"`
	List    string `json:"list"`
	MovieID string `json:"movie_id"`
	Action  string `json:"action"` // "added", "removed"
}

// StatsSnapshot is emitted when a statistics snapshot is persisted.
type StatsSnapshot struct {
	BaseEvent
	TotalMovies int `json:"total_movies"`
}
