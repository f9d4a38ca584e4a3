package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

// Bolt is a Memory store persisted to a bbolt file, one bucket per
// collection. Reads are served from memory; writes go to disk first.
type Bolt struct {
	*Memory
	db *bolt.DB
}

var _ Store = (*Bolt)(nil)

// OpenBolt opens (or creates) the database at path and loads every
// collection into memory.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolterrors.ErrTimeout) {
			return nil, fmt.Errorf("open bolt db: %w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	mem := NewMemory()
	err = db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			collection := string(name)
			return b.ForEach(func(k, v []byte) error {
				var fields map[string]any
				if err := json.Unmarshal(v, &fields); err != nil {
					return fmt.Errorf("decode %s/%s: %w", collection, k, err)
				}
				mem.put(collection, string(k), fields)
				return nil
			})
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load bolt db: %w", err)
	}

	return &Bolt{Memory: mem, db: db}, nil
}

// Put writes doc to disk, then to memory.
func (b *Bolt) Put(ctx context.Context, collection string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields, err := checkDocument(collection, doc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, doc.ID, err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(doc.ID), data)
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, doc.ID, err)
	}

	b.put(collection, doc.ID, fields)
	return nil
}

// Delete removes a document from disk and memory.
func (b *Bolt) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return b.Memory.Delete(ctx, collection, id)
}

// Close releases the database file lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}
