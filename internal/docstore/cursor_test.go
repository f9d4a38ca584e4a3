package docstore

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	doc := Document{ID: "m042", Fields: map[string]any{"year": float64(2019), "createdAt": float64(1_700_000_042_000), "name_lower": "đảo hải tặc"}}
	order := []Constraint{Lte("year", 2020), OrderBy("year", Desc), OrderBy("createdAt", Desc), Limit(20)}

	c := CursorAt(doc, order)
	assert.Equal(t, []any{float64(2019), float64(1_700_000_042_000)}, c.Values)

	parsed, err := ParseCursor(c.Encode())
	require.NoError(t, err)
	assert.True(t, c.Equal(parsed))
	assert.Equal(t, "m042", parsed.ID)
}

func TestCursor_TextMarshaling(t *testing.T) {
	c := &Cursor{Values: []any{"abc"}, ID: "x"}
	data, err := json.Marshal(struct {
		Next *Cursor `json:"next"`
	}{c})
	require.NoError(t, err)

	var back struct {
		Next *Cursor `json:"next"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, c.Equal(back.Next))
}

func TestCursor_EncodeIsJSONBody(t *testing.T) {
	c := &Cursor{Values: []any{float64(2024), "abc"}, ID: "m1"}

	data, err := base64.RawURLEncoding.DecodeString(c.Encode())
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":[2024,"abc"],"id":"m1"}`, string(data))

	// a body written by hand parses too
	raw := base64.RawURLEncoding.EncodeToString([]byte(`{"v":[1],"id":"m9"}`))
	parsed, err := ParseCursor(raw)
	require.NoError(t, err)
	assert.Equal(t, "m9", parsed.ID)
	assert.Equal(t, []any{float64(1)}, parsed.Values)
}

func TestParseCursor_Invalid(t *testing.T) {
	_, err := ParseCursor("!!not-base64")
	assert.Error(t, err)

	_, err = ParseCursor((&Cursor{Values: []any{1}}).Encode())
	assert.Error(t, err, "cursor without id")
}

func TestCursor_EqualNil(t *testing.T) {
	var a, b *Cursor
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(&Cursor{ID: "x"}))
}
