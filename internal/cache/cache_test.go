package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := NewTTL(time.Minute)

	_, ok := c.Get("stats")
	assert.False(t, ok)

	c.Set("stats", 42)
	v, ok := c.Get("stats")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTTLCache_Expires(t *testing.T) {
	c := NewTTL(20 * time.Millisecond)
	c.Set("stats", "value")

	assert.Eventually(t, func() bool {
		_, ok := c.Get("stats")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestTTLCache_Invalidate(t *testing.T) {
	c := NewTTL(time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Flush()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	c.Invalidate("a")
	c.Flush()
}
