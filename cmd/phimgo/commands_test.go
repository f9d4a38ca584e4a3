package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/status").
		RespondJSON(StatusResponse{Status: "ok", Version: "1.0.0", Movies: 42, Views: 3, Source: true}).
		Build()

	out, err := runCLI(t, srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "(ok)")
	assert.Contains(t, out, "Movies:     42")
	assert.Contains(t, out, "configured")
	assert.NotContains(t, out, "need reindex")
}

func TestStatusCommand_ReportsMissingDerived(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/status").
		RespondJSON(StatusResponse{Status: "ok", Movies: 10, MissingDerived: 4}).
		Build()

	out, err := runCLI(t, srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "4 need reindex")
}

func TestMoviesReindexCommand(t *testing.T) {
	srv := newMockServer(t).
		ExpectPOST().
		ExpectPath("/api/v1/movies/reindex").
		RespondJSON(ReindexResponse{Reindexed: 12, MissingBefore: 4}).
		Build()

	out, err := runCLI(t, srv.URL, "movies", "reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "Reindexed 12 movies (4 were missing search fields)")
}

func TestMoviesSearchCommand(t *testing.T) {
	cursor := "abc"
	srv := newMockServer(t).
		ExpectPath("/api/v1/movies").
		ExpectQuery("q", "dao hai").
		ExpectQuery("type", "series").
		RespondJSON(PageResponse{
			Items:      []MovieResponse{{Slug: "dao-hai-tac", Name: "Đảo Hải Tặc", Type: "series", Year: 1999, View: 7}},
			NextCursor: &cursor,
			Total:      30,
			TotalPages: 2,
			Page:       1,
		}).
		Build()

	out, err := runCLI(t, srv.URL, "movies", "search", "--type", "series", "dao", "hai")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 2 (30 movies)")
	assert.Contains(t, out, "dao-hai-tac")
	assert.Contains(t, out, "--cursor abc --page 2")
}

func TestMoviesImportCommand_ReportsFailures(t *testing.T) {
	srv := newMockServer(t).
		RespondAPIError(404, "NOT_FOUND", "movie not found").
		Build()

	out, err := runCLI(t, srv.URL, "movies", "import", "khong-co")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 imports failed")
	assert.Contains(t, out, "khong-co")
}

func TestMeCommand_RequiresUser(t *testing.T) {
	srv := newMockServer(t).RespondStatus(200).Build()

	_, err := runCLI(t, srv.URL, "me", "favorites")
	assert.ErrorIs(t, err, errNoUser)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phimgo", "config.toml")

	out, err := runCLI(t, "http://unused", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[server]")

	_, err = runCLI(t, "http://unused", "init", path)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Mai", truncate("Mai", 10))
	assert.Equal(t, "Đảo H...", truncate("Đảo Hải Tặc", 8))
}

func TestPrintPage_Empty(t *testing.T) {
	var buf bytes.Buffer
	printPage(&buf, &PageResponse{})
	assert.Equal(t, "No movies found.\n", buf.String())
}
