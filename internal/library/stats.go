package library

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
)

// StatsFromYear is the first year counted by Distribution.
const StatsFromYear = 2000

// topCategories is how many categories Distribution reports before folding the rest into OtherLabel.
const topCategories = 10

// OtherLabel names the bucket holding every category past the top ten.
const OtherLabel = "Khác"

// NameCount is one bar of a distribution chart.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearCount is the number of movies released in a year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Distribution breaks the catalog down by year, category and language.
type Distribution struct {
	ByYear     []YearCount `json:"byYear"`
	ByCategory []NameCount `json:"byCategory"`
	ByLang     []NameCount `json:"byLang"`
}

// Snapshot is a persisted Distribution plus catalog totals.
type Snapshot struct {
	ID           string       `json:"id"`
	TotalMovies  int          `json:"totalMovies"`
	TotalViews   int64        `json:"totalViews"`
	Distribution Distribution `json:"distribution"`
	TakenAt      time.Time    `json:"-"`
}

// StatsService computes and stores catalog statistics.
type StatsService struct {
	store  docstore.Store
	bus    *events.Bus
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService creates a statistics service.
func NewStatsService(store docstore.Store, bus *events.Bus, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{
		store:  store,
		bus:    bus,
		logger: logger.With("component", "stats"),
		now:    time.Now,
	}
}

// Distribution counts movies per year from StatsFromYear to this year, per
// category (top ten plus OtherLabel) and per language.
func (s *StatsService) Distribution(ctx context.Context) (*Distribution, error) {
	d, _, err := s.distribution(ctx)
	return d, err
}

func (s *StatsService) distribution(ctx context.Context) (*Distribution, []*catalog.Movie, error) {
	d := &Distribution{}
	for year := StatsFromYear; year <= s.now().Year(); year++ {
		n, err := s.store.Count(ctx, catalog.CollectionMovies, []docstore.Constraint{
			docstore.Eq(catalog.FieldYear, year),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("count movies in %d: %w", year, err)
		}
		d.ByYear = append(d.ByYear, YearCount{Year: year, Count: n})
	}

	docs, err := s.store.Query(ctx, catalog.CollectionMovies, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("scan movies: %w", err)
	}
	movies, err := DecodeMovies(docs)
	if err != nil {
		return nil, nil, err
	}

	byCategory := map[string]int{}
	byLang := map[string]int{}
	for _, m := range movies {
		for _, c := range m.Categories {
			byCategory[c.Name]++
		}
		if m.Lang != "" {
			byLang[string(m.Lang)]++
		}
	}

	cats := sortedCounts(byCategory)
	if len(cats) > topCategories {
		other := 0
		for _, c := range cats[topCategories:] {
			other += c.Count
		}
		cats = append(cats[:topCategories:topCategories], NameCount{Name: OtherLabel, Count: other})
	}
	d.ByCategory = cats
	d.ByLang = sortedCounts(byLang)
	return d, movies, nil
}

// sortedCounts orders by count descending, then name.
func sortedCounts(m map[string]int) []NameCount {
	out := make([]NameCount, 0, len(m))
	for name, n := range m {
		out = append(out, NameCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b NameCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Snapshot computes the distribution and totals and stores them.
func (s *StatsService) Snapshot(ctx context.Context) (*Snapshot, error) {
	d, movies, err := s.distribution(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		ID:           uuid.NewString(),
		TotalMovies:  len(movies),
		Distribution: *d,
		TakenAt:      s.now(),
	}
	for _, m := range movies {
		snap.TotalViews += m.View
	}

	doc, err := encode(snap.ID, snap, snap.TakenAt, time.Time{})
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, catalog.CollectionStatistics, doc); err != nil {
		return nil, fmt.Errorf("put snapshot: %w", err)
	}
	s.logger.Info("statistics snapshot stored", "id", snap.ID, "movies", snap.TotalMovies)

	publish(ctx, s.bus, s.logger, &events.StatsSnapshot{
		BaseEvent:   events.NewBaseEvent(events.EventStatsSnapshot, events.EntityStats, snap.ID),
		TotalMovies: snap.TotalMovies,
	})
	return snap, nil
}

// Latest returns the newest stored snapshot, or ErrNotFound when none exists.
func (s *StatsService) Latest(ctx context.Context) (*Snapshot, error) {
	docs, err := s.store.Query(ctx, catalog.CollectionStatistics, []docstore.Constraint{
		docstore.OrderBy(catalog.FieldCreatedAt, docstore.Desc),
		docstore.Limit(1),
	})
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("latest snapshot: %w", ErrNotFound)
	}
	snap := &Snapshot{}
	created, _, err := decode(docs[0], snap)
	if err != nil {
		return nil, err
	}
	snap.ID = docs[0].ID
	snap.TakenAt = created
	return snap, nil
}
