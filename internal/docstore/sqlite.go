package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// SQLite stores documents as JSON bodies in a single documents table.
// The schema lives in internal/migrations.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite wraps an open database whose documents table has been migrated.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// mapSQLiteError converts driver errors to store sentinels.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// modernc.org/sqlite wraps errors; match on the message
	errStr := err.Error()
	if strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY") {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// Query returns matching documents in order.
func (s *SQLite) Query(ctx context.Context, collection string, constraints []Constraint) ([]Document, error) {
	cs, err := prepare(constraints)
	if err != nil {
		return nil, err
	}
	query, args := buildSelect("id, body", collection, cs)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, mapSQLiteError(err))
	}
	defer func() { _ = rows.Close() }()

	var docs []Document
	for rows.Next() {
		var (
			id   string
			body string
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, mapSQLiteError(err))
	}
	return docs, nil
}

// Count returns the number of documents Query would return.
func (s *SQLite) Count(ctx context.Context, collection string, constraints []Constraint) (int, error) {
	cs, err := prepare(constraints)
	if err != nil {
		return 0, err
	}
	inner, args := buildSelect("id", collection, cs)

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+inner+")", args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, mapSQLiteError(err))
	}
	return n, nil
}

// Get returns ErrNotFound when the document does not exist.
func (s *SQLite) Get(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&body)
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, mapSQLiteError(err))
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

// Put upserts doc.
func (s *SQLite) Put(ctx context.Context, collection string, doc Document) error {
	fields, err := checkDocument(collection, doc)
	if err != nil {
		return err
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, doc.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, doc.ID, string(body), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, doc.ID, mapSQLiteError(err))
	}
	return nil
}

// Delete removes a document. Missing documents are not an error.
func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, mapSQLiteError(err))
	}
	return nil
}

// buildSelect translates validated constraints into a SELECT over documents.
// Field paths are inlined; they are restricted to identifiers by prepare.
func buildSelect(columns, collection string, cs []Constraint) (string, []any) {
	conditions := []string{"collection = ?"}
	args := []any{collection}

	var (
		orders []Constraint
		cursor *Cursor
		limit  int
	)
	for _, c := range cs {
		switch c.Op {
		case OpOrderBy:
			orders = append(orders, c)
			conditions = append(conditions, jsonType(c.Field)+" IS NOT NULL")
		case OpStartAfter:
			cursor = c.Cursor
		case OpLimit:
			limit = c.N
		default:
			cond, condArgs := filterSQL(c)
			conditions = append(conditions, cond)
			args = append(args, condArgs...)
		}
	}

	if cursor != nil {
		cond, condArgs := afterSQL(orders, cursor)
		conditions = append(conditions, cond)
		args = append(args, condArgs...)
	}

	var b strings.Builder
	b.WriteString("SELECT " + columns + " FROM documents WHERE ")
	b.WriteString(strings.Join(conditions, " AND "))

	b.WriteString(" ORDER BY ")
	for _, o := range orders {
		b.WriteString(extract(o.Field))
		if o.Dir == Desc {
			b.WriteString(" DESC, ")
		} else {
			b.WriteString(" ASC, ")
		}
	}
	b.WriteString("id ASC")

	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return b.String(), args
}

func extract(field string) string {
	return "json_extract(body, '$." + field + "')"
}

func jsonType(field string) string {
	return "json_type(body, '$." + field + "')"
}

// sqlTypes lists the json_type names matching a normalized scalar's type.
func sqlTypes(v any) string {
	switch v.(type) {
	case nil:
		return "'null'"
	case bool:
		return "'true', 'false'"
	case float64:
		return "'integer', 'real'"
	default:
		return "'text'"
	}
}

// bindValue converts a normalized scalar to the form json_extract yields.
func bindValue(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	}
	return v
}

func filterSQL(c Constraint) (string, []any) {
	switch c.Op {
	case OpEq:
		if c.Value == nil {
			return jsonType(c.Field) + " = 'null'", nil
		}
		return membershipSQL(extract(c.Field), jsonType(c.Field), []any{c.Value})
	case OpLt, OpLte, OpGt, OpGte:
		cond := fmt.Sprintf("(%s %s ? AND %s IN (%s))", extract(c.Field), c.Op, jsonType(c.Field), sqlTypes(c.Value))
		return cond, []any{bindValue(c.Value)}
	case OpIn:
		return membershipSQL(extract(c.Field), jsonType(c.Field), c.Values)
	case OpArrayContains, OpArrayContainsAny:
		vals := c.Values
		if c.Op == OpArrayContains {
			vals = []any{c.Value}
		}
		inner, args := membershipSQL("value", "type", vals)
		cond := fmt.Sprintf("(%s = 'array' AND EXISTS (SELECT 1 FROM json_each(body, '$.%s') WHERE %s))",
			jsonType(c.Field), c.Field, inner)
		return cond, args
	}
	return "0", nil
}

// membershipSQL matches expr against vals, comparing only values of the same JSON type.
func membershipSQL(expr, typeExpr string, vals []any) (string, []any) {
	groups := map[string][]any{}
	var order []string
	for _, v := range vals {
		t := sqlTypes(v)
		if _, ok := groups[t]; !ok {
			order = append(order, t)
		}
		groups[t] = append(groups[t], bindValue(v))
	}

	var (
		parts []string
		args  []any
	)
	for _, t := range order {
		g := groups[t]
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(g)), ", ")
		parts = append(parts, fmt.Sprintf("(%s IN (%s) AND %s IN (%s))", expr, placeholders, typeExpr, t))
		args = append(args, g...)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// afterSQL expands start-after into a lexicographic comparison over the
// order-by values followed by the ID. SQL NULL sorts first ascending.
func afterSQL(orders []Constraint, c *Cursor) (string, []any) {
	var (
		branches []string
		args     []any
		eqConds  []string
		eqArgs   []any
	)
	for i, o := range orders {
		v := c.Values[i]
		expr := extract(o.Field)

		var strict string
		var strictArgs []any
		switch {
		case v == nil && o.Dir == Asc:
			strict = expr + " IS NOT NULL"
		case v == nil:
			strict = "0"
		case o.Dir == Asc:
			strict = expr + " > ?"
			strictArgs = []any{bindValue(v)}
		default:
			strict = "(" + expr + " < ? OR " + expr + " IS NULL)"
			strictArgs = []any{bindValue(v)}
		}

		branch := append(append([]string{}, eqConds...), strict)
		branches = append(branches, "("+strings.Join(branch, " AND ")+")")
		args = append(args, eqArgs...)
		args = append(args, strictArgs...)

		if v == nil {
			eqConds = append(eqConds, expr+" IS NULL")
		} else {
			eqConds = append(eqConds, expr+" = ?")
			eqArgs = append(eqArgs, bindValue(v))
		}
	}

	last := append(append([]string{}, eqConds...), "id > ?")
	branches = append(branches, "("+strings.Join(last, " AND ")+")")
	args = append(args, eqArgs...)
	args = append(args, c.ID)

	return "(" + strings.Join(branches, " OR ") + ")", args
}
