package library

import (
	"fmt"
	"time"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
)

// encode stores v with createdAt/updatedAt as epoch milliseconds.
func encode(id string, v any, created, updated time.Time) (docstore.Document, error) {
	doc, err := docstore.Encode(id, v)
	if err != nil {
		return docstore.Document{}, err
	}
	if !created.IsZero() {
		doc.Fields[catalog.FieldCreatedAt] = created.UnixMilli()
	}
	if !updated.IsZero() {
		doc.Fields[catalog.FieldUpdatedAt] = updated.UnixMilli()
	}
	return doc, nil
}

func decode(doc docstore.Document, v any) (created, updated time.Time, err error) {
	if err := docstore.Decode(doc, v); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return millis(doc.Fields[catalog.FieldCreatedAt]), millis(doc.Fields[catalog.FieldUpdatedAt]), nil
}

func millis(v any) time.Time {
	switch n := v.(type) {
	case float64:
		return time.UnixMilli(int64(n))
	case int64:
		return time.UnixMilli(n)
	}
	return time.Time{}
}

// EncodeMovie converts a movie into its stored document.
func EncodeMovie(m *catalog.Movie) (docstore.Document, error) {
	return encode(m.ID, m, m.CreatedAt, m.UpdatedAt)
}

// DecodeMovie converts a stored document back into a movie.
func DecodeMovie(doc docstore.Document) (*catalog.Movie, error) {
	m := &catalog.Movie{}
	created, updated, err := decode(doc, m)
	if err != nil {
		return nil, err
	}
	m.ID = doc.ID
	m.CreatedAt = created
	m.UpdatedAt = updated
	return m, nil
}

// DecodeMovies decodes a query result in order.
func DecodeMovies(docs []docstore.Document) ([]*catalog.Movie, error) {
	movies := make([]*catalog.Movie, 0, len(docs))
	for _, d := range docs {
		m, err := DecodeMovie(d)
		if err != nil {
			return nil, fmt.Errorf("decode movies: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

func encodeTaxon(t *catalog.TaxonEntry) (docstore.Document, error) {
	return encode(t.ID, t, t.CreatedAt, t.UpdatedAt)
}

func decodeTaxon(doc docstore.Document) (*catalog.TaxonEntry, error) {
	t := &catalog.TaxonEntry{}
	created, updated, err := decode(doc, t)
	if err != nil {
		return nil, err
	}
	t.ID = doc.ID
	t.CreatedAt = created
	t.UpdatedAt = updated
	return t, nil
}

func encodeComment(c *catalog.Comment) (docstore.Document, error) {
	return encode(c.ID, c, c.CreatedAt, time.Time{})
}

func decodeComment(doc docstore.Document) (*catalog.Comment, error) {
	c := &catalog.Comment{}
	created, _, err := decode(doc, c)
	if err != nil {
		return nil, err
	}
	c.ID = doc.ID
	c.CreatedAt = created
	return c, nil
}

func encodeEntry(e *catalog.ListEntry) (docstore.Document, error) {
	return encode(e.ID, e, e.CreatedAt, time.Time{})
}

func decodeEntry(doc docstore.Document) (*catalog.ListEntry, error) {
	e := &catalog.ListEntry{}
	created, _, err := decode(doc, e)
	if err != nil {
		return nil, err
	}
	e.ID = doc.ID
	e.CreatedAt = created
	return e, nil
}
