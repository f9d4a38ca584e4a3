package ophim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/phimgo/internal/catalog"
)

const detailBody = `{
  "status": true,
  "msg": "",
  "movie": {
    "_id": "abc123",
    "name": "Đảo Hải Tặc",
    "origin_name": "One Piece",
    "slug": "dao-hai-tac",
    "content": "Luffy ra khơi.",
    "type": "hoathinh",
    "status": "ongoing",
    "episode_current": "Tập 1100",
    "episode_total": "1200 Tập",
    "quality": "FHD",
    "lang": "Vietsub + Thuyết Minh",
    "year": 1999,
    "view": 4200,
    "actor": ["Mayumi Tanaka"],
    "director": ["Eiichiro Oda"],
    "category": [{"id": "c1", "name": "Hoạt Hình", "slug": "hoat-hinh"}],
    "country": [{"id": "n1", "name": "Nhật Bản", "slug": "nhat-ban"}],
    "tmdb": {"type": "tv", "id": "37854", "vote_average": 8.7, "vote_count": 4500}
  },
  "episodes": [
    {"server_name": "Vietsub #1", "server_data": [
      {"name": "1", "slug": "tap-1", "filename": "ep1", "link_embed": "https://embed/1", "link_m3u8": "https://m3u8/1"},
      {"name": "2", "slug": "tap-2", "filename": "ep2", "link_embed": "https://embed/2", "link_m3u8": "https://m3u8/2"}
    ]}
  ]
}`

func newTestServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/phim/dao-hai-tac", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClient_GetMovie(t *testing.T) {
	server, _ := newTestServer(t, detailBody, http.StatusOK)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	movie, err := client.GetMovie(context.Background(), "dao-hai-tac")
	require.NoError(t, err)
	assert.Equal(t, "abc123", movie.ID)
	assert.Equal(t, "Đảo Hải Tặc", movie.Name)
	assert.Equal(t, 1999, movie.Year)
	assert.Equal(t, 8.7, movie.TMDB.VoteAverage)
	require.Len(t, movie.Category, 1)
	assert.Equal(t, "hoat-hinh", movie.Category[0].Slug)
}

func TestClient_GetMovie_NotFound(t *testing.T) {
	server, _ := newTestServer(t, `{"status":false,"msg":"Movie not found"}`, http.StatusNotFound)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	movie, err := client.GetMovie(context.Background(), "dao-hai-tac")
	assert.Nil(t, movie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_GetMovie_StatusFalse(t *testing.T) {
	// the source answers 200 with status false for unknown slugs
	server, _ := newTestServer(t, `{"status":false,"msg":"Movie not found","movie":null}`, http.StatusOK)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	_, err := client.GetMovie(context.Background(), "dao-hai-tac")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_GetMovie_ServerError(t *testing.T) {
	server, _ := newTestServer(t, `oops`, http.StatusBadGateway)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	_, err := client.GetMovie(context.Background(), "dao-hai-tac")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_Cached(t *testing.T) {
	server, calls := newTestServer(t, detailBody, http.StatusOK)
	client := NewClient(WithBaseURL(server.URL), WithCacheTTL(time.Hour), WithRateLimit(0))

	// First call hits API
	_, err := client.GetMovie(context.Background(), "dao-hai-tac")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// Movie and episodes share the cached response
	_, err = client.GetEpisodes(context.Background(), "dao-hai-tac")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "should use cache, not call API again")
}

func TestClient_NotFoundNotCached(t *testing.T) {
	server, calls := newTestServer(t, `{}`, http.StatusNotFound)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	_, _ = client.GetMovie(context.Background(), "dao-hai-tac")
	_, _ = client.GetMovie(context.Background(), "dao-hai-tac")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GetEpisodes(t *testing.T) {
	server, _ := newTestServer(t, detailBody, http.StatusOK)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	eps, err := client.GetEpisodes(context.Background(), "dao-hai-tac")
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, "tap-1", eps[0].Slug)
	assert.Equal(t, "https://m3u8/2", eps[1].LinkM3U8)
}

func TestClient_GetEpisodes_NoServers(t *testing.T) {
	body := `{"status":true,"movie":{"slug":"dao-hai-tac","name":"x"},"episodes":[]}`
	server, _ := newTestServer(t, body, http.StatusOK)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	eps, err := client.GetEpisodes(context.Background(), "dao-hai-tac")
	require.NoError(t, err)
	assert.NotNil(t, eps)
	assert.Empty(t, eps)
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	server, calls := newTestServer(t, detailBody, http.StatusOK)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0.001), WithCacheTTL(0))

	// the first request consumes the only token
	_, err := client.GetMovie(context.Background(), "dao-hai-tac")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.GetMovie(ctx, "dao-hai-tac")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMovie_Catalog(t *testing.T) {
	server, _ := newTestServer(t, detailBody, http.StatusOK)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))

	movie, err := client.GetMovie(context.Background(), "dao-hai-tac")
	require.NoError(t, err)

	m := movie.Catalog()
	assert.Equal(t, "dao-hai-tac", m.Slug)
	assert.Equal(t, "One Piece", m.OriginName)
	assert.Equal(t, catalog.TypeAnimation, m.Type)
	assert.Equal(t, catalog.StatusOngoing, m.Status)
	assert.Equal(t, catalog.LangVietsub, m.Lang)
	assert.Equal(t, 1200, m.EpisodeTotal)
	assert.Equal(t, 8.7, m.Rating)
	assert.Equal(t, 4500, m.VoteCount)
	assert.Equal(t, []catalog.Taxon{{Name: "Hoạt Hình", Slug: "hoat-hinh"}}, m.Categories)
	assert.Equal(t, []catalog.Taxon{{Name: "Nhật Bản", Slug: "nhat-ban"}}, m.Countries)
	assert.Zero(t, m.View, "view counts start locally")
}

func TestMovie_Catalog_UnknownLanguage(t *testing.T) {
	m := (&Movie{Slug: "x", Name: "X", Lang: "Raw", EpisodeTotal: "?"}).Catalog()
	assert.Empty(t, m.Lang)
	assert.Zero(t, m.EpisodeTotal)
}
