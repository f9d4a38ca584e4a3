package ophim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/vmunix/phimgo/internal/metrics"
)

const defaultBaseURL = "https://ophim1.com"
const defaultCacheTTL = time.Hour
const defaultRatePerSecond = 5

// ErrNotFound is returned when the source has no movie for a slug.
var ErrNotFound = errors.New("movie not found")

// Client is a movie source API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces outbound requests. Zero or less disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a new source client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:   newCache(defaultCacheTTL),
		limiter: rate.NewLimiter(defaultRatePerSecond, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMovie fetches movie detail by slug.
func (c *Client) GetMovie(ctx context.Context, slug string) (*Movie, error) {
	resp, err := c.fetch(ctx, slug)
	if err != nil {
		return nil, err
	}
	return resp.Movie, nil
}

// GetEpisodes returns the first server's episodes, or an empty slice when
// the source lists none.
func (c *Client) GetEpisodes(ctx context.Context, slug string) ([]Episode, error) {
	resp, err := c.fetch(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(resp.Episodes) == 0 || resp.Episodes[0].ServerData == nil {
		return []Episode{}, nil
	}
	return resp.Episodes[0].ServerData, nil
}

// PruneCache drops expired cache entries and returns how many were removed.
func (c *Client) PruneCache() int {
	return c.cache.prune()
}

func (c *Client) fetch(ctx context.Context, slug string) (*response, error) {
	// Check cache first
	if resp, ok := c.cache.get(slug); ok {
		return resp, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	// Build request
	u := fmt.Sprintf("%s/phim/%s", c.baseURL, url.PathEscape(slug))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Execute
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	// Handle errors
	if httpResp.StatusCode == http.StatusNotFound {
		metrics.SourceRequestsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%s: %w", slug, ErrNotFound)
	}
	if httpResp.StatusCode != http.StatusOK {
		metrics.SourceRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("source API error: %s", httpResp.Status)
	}

	// Decode
	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		metrics.SourceRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Movie == nil || resp.Movie.Slug == "" {
		metrics.SourceRequestsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%s: %w", slug, ErrNotFound)
	}
	metrics.SourceRequestsTotal.WithLabelValues("ok").Inc()

	// Cache and return
	c.cache.set(slug, &resp)
	return &resp, nil
}
