// Package ophim provides a client for the upstream movie source API.
package ophim

import (
	"strconv"
	"strings"

	"github.com/vmunix/phimgo/internal/catalog"
)

// response is the body of GET /phim/{slug}.
type response struct {
	Status   bool     `json:"status"`
	Msg      string   `json:"msg"`
	Movie    *Movie   `json:"movie"`
	Episodes []Server `json:"episodes"`
}

// Movie is the source's movie detail.
type Movie struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name"`
	OriginName     string   `json:"origin_name"`
	Slug           string   `json:"slug"`
	Content        string   `json:"content"`
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	PosterURL      string   `json:"poster_url"`
	ThumbURL       string   `json:"thumb_url"`
	TrailerURL     string   `json:"trailer_url"`
	EpisodeCurrent string   `json:"episode_current"`
	EpisodeTotal   string   `json:"episode_total"`
	Quality        string   `json:"quality"`
	Lang           string   `json:"lang"`
	Year           int      `json:"year"`
	View           int64    `json:"view"`
	Actor          []string `json:"actor"`
	Director       []string `json:"director"`
	Category       []Taxon  `json:"category"`
	Country        []Taxon  `json:"country"`
	TMDB           TMDB     `json:"tmdb"`
}

// Taxon is a category or country reference.
type Taxon struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TMDB carries the rating the source copies from The Movie Database.
type TMDB struct {
	Type        string  `json:"type"`
	ID          string  `json:"id"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// Server is one streaming server and its episode list.
type Server struct {
	ServerName string    `json:"server_name"`
	ServerData []Episode `json:"server_data"`
}

// Episode is a playable episode.
type Episode struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
}

// Catalog converts the source movie into a catalog entry ready for MovieService.Add.
// Language variants the catalog does not know are dropped.
func (m *Movie) Catalog() *catalog.Movie {
	total, _ := strconv.Atoi(strings.Fields(m.EpisodeTotal + " 0")[0])
	out := &catalog.Movie{
		Slug:           m.Slug,
		Name:           m.Name,
		OriginName:     m.OriginName,
		Content:        m.Content,
		Type:           catalog.MovieType(m.Type),
		Status:         catalog.MovieStatus(m.Status),
		Year:           m.Year,
		Quality:        m.Quality,
		EpisodeCurrent: m.EpisodeCurrent,
		EpisodeTotal:   total,
		PosterURL:      m.PosterURL,
		ThumbURL:       m.ThumbURL,
		TrailerURL:     m.TrailerURL,
		Rating:         m.TMDB.VoteAverage,
		VoteCount:      m.TMDB.VoteCount,
		Actors:         m.Actor,
		Directors:      m.Director,
	}
	// the source joins variants as "Vietsub + Thuyết Minh"; keep the first known one
	for _, part := range strings.Split(m.Lang, "+") {
		if l := catalog.Language(strings.TrimSpace(part)); l.Valid() {
			out.Lang = l
			break
		}
	}
	for _, c := range m.Category {
		out.Categories = append(out.Categories, catalog.Taxon{Name: c.Name, Slug: c.Slug})
	}
	for _, c := range m.Country {
		out.Countries = append(out.Countries, catalog.Taxon{Name: c.Name, Slug: c.Slug})
	}
	return out
}
