package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grabtok/grabtok/internal/models"
)

func record(id string) *models.VideoMetadata {
	return &models.VideoMetadata{Username: "creator", VideoID: id}
}

func TestGetSetRoundTrip(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", record("1"))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "1", got.VideoID)
}

func TestExpiry(t *testing.T) {
	c := New(30 * time.Millisecond)
	defer c.Close()

	c.Set("k", record("1"))
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should have expired")
}

func TestSetReplacesEntry(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", record("1"))
	c.Set("k", record("2"))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "2", got.VideoID)
}

func TestStats(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Get("missing")
	c.Set("k", record("1"))
	c.Get("k")
	c.Get("k")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Keys)
}

func TestFlushAllKeepsCounters(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", record("1"))
	c.Set("b", record("2"))
	c.Get("a")
	c.FlushAll()

	stats := c.Stats()
	assert.Equal(t, 0, stats.Keys)
	assert.Equal(t, uint64(1), stats.Hits)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestSweepRemovesExpiredKeys(t *testing.T) {
	c := New(50 * time.Millisecond)
	defer c.Close()

	c.Set("k", record("1"))
	time.Sleep(120 * time.Millisecond)

	// The sweeper runs at TTL/5; by now the key must be gone without a Get.
	assert.Equal(t, 0, c.Stats().Keys)
}
