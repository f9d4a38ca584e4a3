package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps HTTP calls to the phimgo server.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// NewClient creates a new phimgo API client. userID may be empty.
func NewClient(serverURL, userID string) *Client {
	return &Client{
		baseURL: serverURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	}
	return &APIError{Status: resp.StatusCode, Code: payload.Code, Message: payload.Error}
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

func (c *Client) delete(path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}

// API response types (mirror server types)

type Taxon struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type MovieResponse struct {
	ID             string  `json:"id"`
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	OriginName     string  `json:"origin_name"`
	Content        string  `json:"content"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	Year           int     `json:"year"`
	Lang           string  `json:"lang"`
	Quality        string  `json:"quality"`
	EpisodeCurrent string  `json:"episode_current"`
	EpisodeTotal   int     `json:"episode_total"`
	View           int64   `json:"view"`
	Rating         float64 `json:"rating"`
	Categories     []Taxon `json:"category"`
	Countries      []Taxon `json:"country"`
}

type PageResponse struct {
	Items      []MovieResponse `json:"items"`
	NextCursor *string         `json:"next_cursor"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Page       int             `json:"page"`
}

type EpisodeResponse struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
}

type TaxonResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	TotalViews int64  `json:"totalViews"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type DistributionResponse struct {
	ByYear     []YearCount `json:"byYear"`
	ByCategory []NameCount `json:"byCategory"`
	ByLang     []NameCount `json:"byLang"`
}

type StatsResponse struct {
	TotalMovies  int                  `json:"totalMovies"`
	TotalViews   int64                `json:"totalViews"`
	Distribution DistributionResponse `json:"distribution"`
	TakenAt      time.Time            `json:"taken_at"`
}

type StatusResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Movies         int    `json:"movies"`
	MissingDerived int    `json:"missing_derived"`
	Views          int    `json:"views"`
	Source         bool   `json:"source"`
}

type ReindexResponse struct {
	Reindexed     int `json:"reindexed"`
	MissingBefore int `json:"missing_before"`
}

type ListEntryResponse struct {
	ID      string        `json:"id"`
	MovieID string        `json:"movie_id"`
	Movie   MovieResponse `json:"movie_data"`
	Episode string        `json:"episode"`
}

// SearchParams are the filters of a catalog search. Multi-valued
// filters are comma-separated.
type SearchParams struct {
	Query    string
	Type     string
	Lang     string
	Year     string
	Category string
	Country  string
	Sort     string
	PageSize int
	Page     int
	Cursor   string
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", p.Query)
	set("type", p.Type)
	set("lang", p.Lang)
	set("year", p.Year)
	set("category", p.Category)
	set("country", p.Country)
	set("sort", p.Sort)
	set("cursor", p.Cursor)
	if p.PageSize > 0 {
		v.Set("page_size", fmt.Sprint(p.PageSize))
	}
	if p.Cursor != "" && p.Page > 1 {
		v.Set("page", fmt.Sprint(p.Page))
	}
	return v
}

func (c *Client) Search(p SearchParams) (*PageResponse, error) {
	var resp PageResponse
	path := "/api/v1/movies"
	if q := p.values().Encode(); q != "" {
		path += "?" + q
	}
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Movie(slug string) (*MovieResponse, error) {
	var resp MovieResponse
	if err := c.get("/api/v1/movies/"+url.PathEscape(slug), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Episodes(slug string) ([]EpisodeResponse, error) {
	var resp struct {
		Items []EpisodeResponse `json:"items"`
	}
	if err := c.get("/api/v1/movies/"+url.PathEscape(slug)+"/episodes", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Import(slug string) (*MovieResponse, error) {
	var resp MovieResponse
	if err := c.post("/api/v1/movies/import", map[string]string{"slug": slug}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Reindex() (*ReindexResponse, error) {
	var resp ReindexResponse
	if err := c.post("/api/v1/movies/reindex", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteMovie(id string) error {
	return c.delete("/api/v1/movies/" + url.PathEscape(id))
}

// Taxa lists "categories" or "countries".
func (c *Client) Taxa(kind string) ([]TaxonResponse, error) {
	var resp struct {
		Items []TaxonResponse `json:"items"`
	}
	if err := c.get("/api/v1/"+kind, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) AddTaxon(kind, name string) (*TaxonResponse, error) {
	var resp TaxonResponse
	if err := c.post("/api/v1/"+kind, map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Stats() (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.get("/api/v1/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Distribution() (*DistributionResponse, error) {
	var resp DistributionResponse
	if err := c.get("/api/v1/stats/distribution", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListEntries(list string) ([]ListEntryResponse, error) {
	var resp struct {
		Items []ListEntryResponse `json:"items"`
	}
	if err := c.get("/api/v1/me/"+url.PathEscape(list), &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) AddEntry(list, movieID, episode string) (*ListEntryResponse, error) {
	var resp ListEntryResponse
	body := map[string]string{"movie_id": movieID, "episode": episode}
	if err := c.post("/api/v1/me/"+url.PathEscape(list), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RemoveEntry(list, entryID string) error {
	return c.delete("/api/v1/me/" + url.PathEscape(list) + "/" + url.PathEscape(entryID))
}
