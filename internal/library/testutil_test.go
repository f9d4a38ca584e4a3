// internal/library/testutil_test.go
package library

import (
	"sync"
	"testing"
	"time"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
)

var testStart = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// fakeClock advances one second per call so "newest first" orders are deterministic.
func fakeClock() func() time.Time {
	var mu sync.Mutex
	t := testStart
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func setupTestLibrary(t *testing.T) (*Library, *docstore.Memory, *events.Bus) {
	t.Helper()
	store := docstore.NewMemory()
	bus := events.NewBus(nil, nil)
	t.Cleanup(func() { _ = bus.Close() })

	lib := New(store, bus, nil)
	now := fakeClock()
	lib.Movies.now = now
	lib.Categories.now = now
	lib.Countries.now = now
	lib.Comments.now = now
	lib.Stats.now = now
	lib.Rails.now = now
	for _, l := range lib.Lists {
		l.now = now
	}
	return lib, store, bus
}

func testMovie(name string, year int, view int64, rating float64, categories ...string) *catalog.Movie {
	m := &catalog.Movie{
		Name:   name,
		Type:   catalog.TypeSingle,
		Lang:   catalog.LangVietsub,
		Year:   year,
		View:   view,
		Rating: rating,
	}
	for _, c := range categories {
		m.Categories = append(m.Categories, catalog.Taxon{Name: c, Slug: catalog.Slugify(c)})
	}
	return m
}

func movieNames(movies []*catalog.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Name
	}
	return out
}
