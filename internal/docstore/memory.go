package docstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]map[string]any)}
}

// Query returns matching documents in order.
func (m *Memory) Query(ctx context.Context, collection string, constraints []Constraint) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cs, err := prepare(constraints)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return evaluate(m.collections[collection], cs), nil
}

// Count returns the number of documents Query would return.
func (m *Memory) Count(ctx context.Context, collection string, constraints []Constraint) (int, error) {
	docs, err := m.Query(ctx, collection, constraints)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Get returns a copy of the stored document.
func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.collections[collection][id]
	if !ok {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

// Put stores a normalized copy of doc.
func (m *Memory) Put(ctx context.Context, collection string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields, err := checkDocument(collection, doc)
	if err != nil {
		return err
	}
	m.put(collection, doc.ID, fields)
	return nil
}

func (m *Memory) put(collection, id string, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		m.collections[collection] = coll
	}
	coll[id] = fields
}

// Delete removes a document. Missing documents are not an error.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

func checkDocument(collection string, doc Document) (map[string]any, error) {
	if collection == "" {
		return nil, errors.New("put: empty collection name")
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("put %s: empty document id", collection)
	}
	fields, err := normalizeFields(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("put %s/%s: %w", collection, doc.ID, err)
	}
	return fields, nil
}

// evaluate applies validated constraints to a collection snapshot.
func evaluate(coll map[string]map[string]any, cs []Constraint) []Document {
	var (
		filters []Constraint
		orders  []Constraint
		cursor  *Cursor
		limit   int
	)
	for _, c := range cs {
		switch c.Op {
		case OpOrderBy:
			orders = append(orders, c)
		case OpStartAfter:
			cursor = c.Cursor
		case OpLimit:
			limit = c.N
		default:
			filters = append(filters, c)
		}
	}

	var matched []Document
	for id, fields := range coll {
		if matchesAll(fields, filters) && hasOrderFields(fields, orders) {
			matched = append(matched, Document{ID: id, Fields: fields})
		}
	}

	slices.SortFunc(matched, func(a, b Document) int {
		return compareDocs(a, b, orders)
	})

	if cursor != nil {
		i, _ := slices.BinarySearchFunc(matched, cursor, func(d Document, c *Cursor) int {
			return compareToCursor(d, c, orders)
		})
		for i < len(matched) && compareToCursor(matched[i], cursor, orders) <= 0 {
			i++
		}
		matched = matched[i:]
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]Document, len(matched))
	for i, d := range matched {
		out[i] = Document{ID: d.ID, Fields: cloneFields(d.Fields)}
	}
	return out
}

func hasOrderFields(fields map[string]any, orders []Constraint) bool {
	for _, o := range orders {
		if _, ok := lookup(fields, o.Field); !ok {
			return false
		}
	}
	return true
}

func matchesAll(fields map[string]any, filters []Constraint) bool {
	for _, f := range filters {
		if !matches(fields, f) {
			return false
		}
	}
	return true
}

func matches(fields map[string]any, c Constraint) bool {
	v, ok := lookup(fields, c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return sameType(v, c.Value) && compareValues(v, c.Value) == 0
	case OpLt, OpLte, OpGt, OpGte:
		if !sameType(v, c.Value) {
			return false
		}
		r := compareValues(v, c.Value)
		switch c.Op {
		case OpLt:
			return r < 0
		case OpLte:
			return r <= 0
		case OpGt:
			return r > 0
		default:
			return r >= 0
		}
	case OpIn:
		return containsValue(c.Values, v)
	case OpArrayContains:
		arr, ok := v.([]any)
		return ok && containsValue(arr, c.Value)
	case OpArrayContainsAny:
		arr, ok := v.([]any)
		if !ok {
			return false
		}
		for _, want := range c.Values {
			if containsValue(arr, want) {
				return true
			}
		}
	}
	return false
}

func sameType(a, b any) bool {
	return typeRank(a) == typeRank(b)
}

func containsValue(vals []any, v any) bool {
	return slices.ContainsFunc(vals, func(e any) bool {
		return sameType(e, v) && compareValues(e, v) == 0
	})
}

// compareDocs orders by the order-by clauses, then by ID ascending.
func compareDocs(a, b Document, orders []Constraint) int {
	for _, o := range orders {
		av, _ := lookup(a.Fields, o.Field)
		bv, _ := lookup(b.Fields, o.Field)
		r := compareValues(av, bv)
		if o.Dir == Desc {
			r = -r
		}
		if r != 0 {
			return r
		}
	}
	return strings.Compare(a.ID, b.ID)
}

func compareToCursor(d Document, c *Cursor, orders []Constraint) int {
	for i, o := range orders {
		v, _ := lookup(d.Fields, o.Field)
		r := compareValues(v, c.Values[i])
		if o.Dir == Desc {
			r = -r
		}
		if r != 0 {
			return r
		}
	}
	return strings.Compare(d.ID, c.ID)
}
