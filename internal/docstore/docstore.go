// Package docstore is a queryable document collection store.
//
// Documents are JSON-shaped maps keyed by collection and ID. Queries are an
// ordered list of constraints (filters, order-bys, a start-after cursor and
// a limit) that every backend validates with the same legality rules before
// evaluating, so the memory, bbolt and SQLite backends return identical
// results for identical constraint lists.
package docstore

//go:generate go run go.uber.org/mock/mockgen -source=docstore.go -destination=mocks/store.go -package=mocks Store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document is a stored record. Fields hold JSON-normalized values:
// nil, bool, float64, string, []any and map[string]any.
type Document struct {
	ID     string
	Fields map[string]any
}

// Lookup returns the value at a dotted field path.
func (d Document) Lookup(path string) (any, bool) {
	return lookup(d.Fields, path)
}

// Store is a queryable collection store.
type Store interface {
	// Query returns the documents matching constraints, in order.
	Query(ctx context.Context, collection string, constraints []Constraint) ([]Document, error)
	// Count returns the number of documents Query would return.
	Count(ctx context.Context, collection string, constraints []Constraint) (int, error)
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Put inserts or replaces the document with doc.ID.
	Put(ctx context.Context, collection string, doc Document) error
	// Delete is idempotent.
	Delete(ctx context.Context, collection, id string) error
}

// Encode converts a JSON-tagged struct into a Document.
func Encode(id string, v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("encode document %s: %w", id, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("encode document %s: %w", id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

// Decode fills the JSON-tagged struct v from doc.
func Decode(doc Document, v any) error {
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}
