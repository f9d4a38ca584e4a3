package v1

import (
	"encoding/json"
	"time"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/library"
	"github.com/vmunix/phimgo/internal/listing"
)

// movieResponse is a movie with its timestamps.
type movieResponse struct {
	*catalog.Movie
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMovieResponse(m *catalog.Movie) movieResponse {
	return movieResponse{Movie: m, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// listMoviesResponse is the response for rails and suggestions.
type listMoviesResponse struct {
	Items []*catalog.Movie `json:"items"`
}

type taxonRef struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// movieRequest is the admin payload for POST/PUT /movies.
type movieRequest struct {
	Name           string     `json:"name" validate:"required,max=300"`
	Slug           string     `json:"slug" validate:"omitempty,max=300"`
	OriginName     string     `json:"origin_name"`
	Content        string     `json:"content"`
	Type           string     `json:"type" validate:"required,movietype"`
	Status         string     `json:"status" validate:"omitempty,moviestatus"`
	Year           int        `json:"year" validate:"required,gte=1900,lte=2100"`
	Lang           string     `json:"lang" validate:"omitempty,movielang"`
	Quality        string     `json:"quality"`
	EpisodeCurrent string     `json:"episode_current"`
	EpisodeTotal   int        `json:"episode_total" validate:"gte=0"`
	PosterURL      string     `json:"poster_url" validate:"omitempty,url"`
	ThumbURL       string     `json:"thumb_url" validate:"omitempty,url"`
	TrailerURL     string     `json:"trailer_url" validate:"omitempty,url"`
	Rating         float64    `json:"rating" validate:"gte=0,lte=10"`
	VoteCount      int        `json:"vote_count" validate:"gte=0"`
	Categories     []taxonRef `json:"category" validate:"dive"`
	Countries      []taxonRef `json:"country" validate:"dive"`
	Actors         []string   `json:"actor"`
	Directors      []string   `json:"director"`
}

func (m movieRequest) toMovie() *catalog.Movie {
	out := &catalog.Movie{
		Slug:           m.Slug,
		Name:           m.Name,
		OriginName:     m.OriginName,
		Content:        m.Content,
		Type:           catalog.MovieType(m.Type),
		Status:         catalog.MovieStatus(m.Status),
		Year:           m.Year,
		Lang:           catalog.Language(m.Lang),
		Quality:        m.Quality,
		EpisodeCurrent: m.EpisodeCurrent,
		EpisodeTotal:   m.EpisodeTotal,
		PosterURL:      m.PosterURL,
		ThumbURL:       m.ThumbURL,
		TrailerURL:     m.TrailerURL,
		Rating:         m.Rating,
		VoteCount:      m.VoteCount,
		Actors:         m.Actors,
		Directors:      m.Directors,
	}
	for _, t := range m.Categories {
		out.Categories = append(out.Categories, catalog.Taxon(t))
	}
	for _, t := range m.Countries {
		out.Countries = append(out.Countries, catalog.Taxon(t))
	}
	return out
}

type importRequest struct {
	Slug string `json:"slug" validate:"required"`
}

type viewRequest struct {
	Term     string              `json:"q" validate:"max=200"`
	Filters  catalog.FilterState `json:"filters"`
	PageSize int                 `json:"page_size" validate:"gte=0,lte=100"`
}

type mountResponse struct {
	ID   string              `json:"id"`
	Page *listing.PageResult `json:"page"`
}

type taxonRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"omitempty,max=100"`
}

type taxonResponse struct {
	*catalog.TaxonEntry
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type commentRequest struct {
	Name    string `json:"name" validate:"max=100"`
	Avatar  string `json:"avatar" validate:"omitempty,url"`
	Content string `json:"content" validate:"required,max=2000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=10"`
}

type commentResponse struct {
	*catalog.Comment
	CreatedAt time.Time `json:"created_at"`
}

type listEntryRequest struct {
	MovieID string `json:"movie_id" validate:"required"`
	Episode string `json:"episode" validate:"max=50"`
}

type listEntryResponse struct {
	*catalog.ListEntry
	CreatedAt time.Time `json:"created_at"`
}

type statsResponse struct {
	*library.Snapshot
	TakenAt time.Time `json:"taken_at"`
}

type statusResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version,omitempty"`
	Movies         int    `json:"movies"`
	MissingDerived int    `json:"missing_derived"`
	Views          int    `json:"views"`
	Source         bool   `json:"source"`
}

type sortOption struct {
	Key     catalog.SortKey `json:"key"`
	Label   string          `json:"label"`
	Default bool            `json:"default,omitempty"`
}

type filterOptionsResponse struct {
	Types     []catalog.MovieType  `json:"type"`
	Languages []catalog.Language   `json:"lang"`
	Years     []catalog.YearOption `json:"year"`
	Sorts     []sortOption         `json:"sort"`
}

type reindexResponse struct {
	Reindexed     int `json:"reindexed"`
	MissingBefore int `json:"missing_before"`
}

// EventResponse is one entry of the event log.
type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"type"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type listEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}
