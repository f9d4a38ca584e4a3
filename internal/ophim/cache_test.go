package ophim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	c := newCache(time.Hour)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.set("a", &response{Status: true})
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.True(t, got.Status)
}

func TestCache_Expiry(t *testing.T) {
	c := newCache(time.Millisecond)
	c.set("a", &response{})
	c.set("b", &response{})

	time.Sleep(5 * time.Millisecond)
	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.prune())
	assert.Equal(t, 0, c.prune())
}
