package docstore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Cursor marks a position in an ordered result set: the order-by values of
// the last returned document plus its ID, which breaks ties.
type Cursor struct {
	Values []any  `json:"v"`
	ID     string `json:"id"`
}

// cursorBody is the wire form of a Cursor. It has no methods, so
// encoding/json does not route it back through MarshalText.
type cursorBody Cursor

// CursorAt builds the cursor for doc under the order-by clauses in constraints.
func CursorAt(doc Document, constraints []Constraint) *Cursor {
	order := OrderFields(constraints)
	c := &Cursor{ID: doc.ID, Values: make([]any, len(order))}
	for i, o := range order {
		v, _ := doc.Lookup(o.Field)
		c.Values[i] = cloneValue(v)
	}
	return c
}

// Encode returns the opaque base64url form handed to clients.
func (c *Cursor) Encode() string {
	data, _ := json.Marshal((*cursorBody)(c))
	return base64.RawURLEncoding.EncodeToString(data)
}

// MarshalText implements encoding.TextMarshaler.
func (c *Cursor) MarshalText() ([]byte, error) {
	return []byte(c.Encode()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cursor) UnmarshalText(b []byte) error {
	parsed, err := ParseCursor(string(b))
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

// ParseCursor decodes a cursor produced by Encode.
func ParseCursor(s string) (*Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var body cursorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	if body.ID == "" {
		return nil, errors.New("decode cursor: missing document id")
	}
	c := Cursor(body)
	return &c, nil
}

// Equal reports whether two cursors mark the same position.
func (c *Cursor) Equal(o *Cursor) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.ID != o.ID || len(c.Values) != len(o.Values) {
		return false
	}
	for i := range c.Values {
		if compareValues(c.Values[i], o.Values[i]) != 0 {
			return false
		}
	}
	return true
}
