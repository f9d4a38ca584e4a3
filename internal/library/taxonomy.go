package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/events"
)

const fieldTotalViews = "totalViews"

// TaxonomyService manages one taxonomy collection (categories or countries).
type TaxonomyService struct {
	store      docstore.Store
	collection string
	entity     string
	order      docstore.Constraint
	bus        *events.Bus
	logger     *slog.Logger
	now        func() time.Time

	mu sync.Mutex
}

// NewCategories lists categories by totalViews, most viewed first.
func NewCategories(store docstore.Store, bus *events.Bus, logger *slog.Logger) *TaxonomyService {
	return newTaxonomy(store, catalog.CollectionCategories, events.EntityCategory,
		docstore.OrderBy(fieldTotalViews, docstore.Desc), bus, logger)
}

// NewCountries lists countries by name.
func NewCountries(store docstore.Store, bus *events.Bus, logger *slog.Logger) *TaxonomyService {
	return newTaxonomy(store, catalog.CollectionCountries, events.EntityCountry,
		docstore.OrderBy(catalog.FieldName, docstore.Asc), bus, logger)
}

func newTaxonomy(store docstore.Store, collection, entity string, order docstore.Constraint, bus *events.Bus, logger *slog.Logger) *TaxonomyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxonomyService{
		store:      store,
		collection: collection,
		entity:     entity,
		order:      order,
		bus:        bus,
		logger:     logger.With("component", collection),
		now:        time.Now,
	}
}

// List returns every entry in the collection's display order.
func (s *TaxonomyService) List(ctx context.Context) ([]*catalog.TaxonEntry, error) {
	return s.query(ctx, []docstore.Constraint{s.order})
}

// Top returns the first n entries in display order.
func (s *TaxonomyService) Top(ctx context.Context, n int) ([]*catalog.TaxonEntry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: top %d", ErrInvalid, n)
	}
	return s.query(ctx, []docstore.Constraint{s.order, docstore.Limit(n)})
}

func (s *TaxonomyService) query(ctx context.Context, cs []docstore.Constraint) ([]*catalog.TaxonEntry, error) {
	docs, err := s.store.Query(ctx, s.collection, cs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}
	out := make([]*catalog.TaxonEntry, 0, len(docs))
	for _, d := range docs {
		t, err := decodeTaxon(d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Get retrieves an entry by ID.
func (s *TaxonomyService) Get(ctx context.Context, id string) (*catalog.TaxonEntry, error) {
	doc, err := s.store.Get(ctx, s.collection, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", s.entity, id, mapStoreError(err))
	}
	return decodeTaxon(doc)
}

// GetBySlug retrieves an entry by slug.
func (s *TaxonomyService) GetBySlug(ctx context.Context, slug string) (*catalog.TaxonEntry, error) {
	doc, ok, err := findOne(ctx, s.store, s.collection, catalog.FieldSlug, slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("get %s %q: %w", s.entity, slug, ErrNotFound)
	}
	return decodeTaxon(doc)
}

// Add inserts an entry. An empty slug is derived from the name.
func (s *TaxonomyService) Add(ctx context.Context, t *catalog.TaxonEntry) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalid, s.entity)
	}
	if t.Slug == "" {
		t.Slug = catalog.Slugify(t.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSlug(ctx, t.Slug, ""); err != nil {
		return err
	}
	now := s.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := s.put(ctx, t); err != nil {
		return err
	}
	s.changed(ctx, t, "added")
	return nil
}

// Update renames an entry. TotalViews and CreatedAt are preserved.
func (s *TaxonomyService) Update(ctx context.Context, t *catalog.TaxonEntry) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalid, s.entity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.Get(ctx, t.ID)
	if err != nil {
		return err
	}
	if t.Slug == "" {
		t.Slug = existing.Slug
	}
	if t.Slug != existing.Slug {
		if err := s.checkSlug(ctx, t.Slug, t.ID); err != nil {
			return err
		}
	}
	t.TotalViews = existing.TotalViews
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = s.now()
	if err := s.put(ctx, t); err != nil {
		return err
	}
	s.changed(ctx, t, "updated")
	return nil
}

// Delete removes an entry. Deleting a missing entry is a no-op.
func (s *TaxonomyService) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.entity, id, err)
	}
	s.changed(ctx, t, "deleted")
	return nil
}

// AddViews adds n to the totalViews of the entry with slug.
func (s *TaxonomyService) AddViews(ctx context.Context, slug string, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	t.TotalViews += n
	return s.put(ctx, t)
}

// Resolve maps user input to a taxon: an exact slug first, then the closest
// name at medium confidence or better.
func (s *TaxonomyService) Resolve(ctx context.Context, input string) (catalog.Taxon, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return catalog.Taxon{}, err
	}
	taxa := make([]catalog.Taxon, len(entries))
	for i, e := range entries {
		taxa[i] = catalog.Taxon{Name: e.Name, Slug: e.Slug}
	}
	match := catalog.MatchTaxon(input, taxa)
	if match.Confidence < catalog.ConfidenceMedium {
		return catalog.Taxon{}, fmt.Errorf("resolve %s %q: %w", s.entity, input, ErrNotFound)
	}
	s.logger.Debug("resolved taxon", "input", input, "slug", match.Taxon.Slug, "score", match.Score)
	return match.Taxon, nil
}

func (s *TaxonomyService) checkSlug(ctx context.Context, slug, selfID string) error {
	doc, ok, err := findOne(ctx, s.store, s.collection, catalog.FieldSlug, slug)
	if err != nil {
		return err
	}
	if ok && doc.ID != selfID {
		return fmt.Errorf("%s slug %q: %w", s.entity, slug, ErrDuplicate)
	}
	return nil
}

func (s *TaxonomyService) put(ctx context.Context, t *catalog.TaxonEntry) error {
	doc, err := encodeTaxon(t)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, s.collection, doc); err != nil {
		return fmt.Errorf("put %s %s: %w", s.entity, t.ID, err)
	}
	return nil
}

func (s *TaxonomyService) changed(ctx context.Context, t *catalog.TaxonEntry, action string) {
	s.logger.Info(s.entity+" "+action, "id", t.ID, "slug", t.Slug)
	publish(ctx, s.bus, s.logger, &events.TaxonChanged{
		BaseEvent: events.NewBaseEvent(events.EventTaxonChanged, s.entity, t.ID),
		Slug:      t.Slug,
		Action:    action,
	})
}
