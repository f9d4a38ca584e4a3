package listing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/library"
)

var seedStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// seedMovies stores n movies in category, newest last. offset keeps IDs and
// timestamps distinct across calls.
func seedMovies(t *testing.T, store docstore.Store, category string, offset, n int) {
	t.Helper()
	ctx := context.Background()
	for i := offset; i < offset+n; i++ {
		m := &catalog.Movie{
			ID:         fmt.Sprintf("m%03d", i),
			Slug:       fmt.Sprintf("phim-%03d", i),
			Name:       fmt.Sprintf("Phim %03d", i),
			Type:       catalog.TypeSingle,
			Year:       2024,
			View:       int64(i),
			Categories: []catalog.Taxon{{Name: category, Slug: category}},
			CreatedAt:  seedStart.Add(time.Duration(i) * time.Minute),
		}
		m.UpdatedAt = m.CreatedAt
		m.Derive()
		doc, err := library.EncodeMovie(m)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, catalog.CollectionMovies, doc))
	}
}

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func movieIDs(movies []*catalog.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}
