package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/phimgo/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// each connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Apply(db))
	return db
}

// seedMovies writes n movie-shaped documents. Even-numbered documents are
// in "hanh-dong", odd ones in "hai-huoc"; every third is from "han-quoc".
func seedMovies(t *testing.T, s Store, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		category := "hai-huoc"
		if i%2 == 0 {
			category = "hanh-dong"
		}
		country := "au-my"
		if i%3 == 0 {
			country = "han-quoc"
		}
		doc := Document{
			ID: fmt.Sprintf("m%03d", i),
			Fields: map[string]any{
				"name":                 fmt.Sprintf("Movie %d", i),
				"name_lower":           fmt.Sprintf("movie %d", i),
				"year":                 2015 + i%10,
				"view":                 (i * 37) % 100,
				"type":                 []string{"single", "series"}[i%2],
				"createdAt":            1_700_000_000_000 + i*1000,
				"categorySlugs":        []any{category},
				"countrySlugs":         []any{country},
				"categoryCountrySlugs": []any{category, country},
			},
		}
		require.NoError(t, s.Put(ctx, "movies", doc))
	}
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
