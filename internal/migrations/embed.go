// Package migrations provides embedded SQL migration files.
package migrations

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/001_documents.sql
var DocumentsSQL string

//go:embed sql/002_events.sql
var EventsSQL string

// Apply runs every migration in order. Each file is idempotent.
func Apply(db *sql.DB) error {
	for i, stmt := range []string{DocumentsSQL, EventsSQL} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %03d: %w", i+1, err)
		}
	}
	return nil
}
