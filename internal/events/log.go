package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EventLog keeps a bounded history of catalog events in SQLite, for the
// events endpoint. The scheduler prunes it.
type EventLog struct {
	db *sql.DB
}

// NewEventLog wraps a database migrated with the events table.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

// Record is a stored event. Payload is the event's own JSON encoding.
type Record struct {
	ID         int64
	Type       string
	EntityType string
	EntityID   string
	Payload    json.RawMessage
	OccurredAt time.Time
}

// Append stores e and returns its sequence number.
func (l *EventLog) Append(ctx context.Context, e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("encode %s event: %w", e.EventType(), err)
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO events (event_type, entity_type, entity_id, payload, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		e.EventType(), e.EntityType(), e.EntityID(), string(payload), e.OccurredAt().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("record %s event: %w", e.EventType(), err)
	}
	return res.LastInsertId()
}

// Recent returns up to n events, newest first. A non-empty typePrefix keeps
// only event types starting with it, e.g. "movie.".
func (l *EventLog) Recent(ctx context.Context, n int, typePrefix string) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, event_type, entity_type, entity_id, payload, occurred_at
		FROM events
		WHERE substr(event_type, 1, length(?)) = ?
		ORDER BY id DESC
		LIMIT ?`,
		typePrefix, typePrefix, n,
	)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Record{}
	for rows.Next() {
		var (
			r       Record
			payload string
			millis  int64
		)
		if err := rows.Scan(&r.ID, &r.Type, &r.EntityType, &r.EntityID, &payload, &millis); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		r.Payload = json.RawMessage(payload)
		r.OccurredAt = time.UnixMilli(millis)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune drops events that occurred more than retention ago and reports how many.
func (l *EventLog) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixMilli()
	res, err := l.db.ExecContext(ctx, `DELETE FROM events WHERE occurred_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}
