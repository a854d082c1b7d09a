package assetcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	cache := New(time.Hour)
	id := cache.Put([]byte("png-bytes"), "image/png")
	require.Len(t, id, 32, "id is 128-bit hex")

	asset, ok := cache.Get(id)
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), asset.Bytes)
	assert.Equal(t, "image/png", asset.MimeType)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache := New(time.Hour)
	clock := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	id := cache.Put([]byte("x"), "image/png")

	clock = clock.Add(59 * time.Minute)
	_, ok := cache.Get(id)
	assert.True(t, ok, "still live before TTL")

	clock = clock.Add(2 * time.Minute)
	_, ok = cache.Get(id)
	assert.False(t, ok, "expired after TTL")
	assert.Zero(t, cache.Len(), "expired entry was swept")
}

func TestCacheSweepRemovesOtherExpiredEntries(t *testing.T) {
	cache := New(time.Minute)
	clock := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	old := cache.Put([]byte("old"), "image/png")
	clock = clock.Add(2 * time.Minute)
	fresh := cache.Put([]byte("fresh"), "image/png")

	_, ok := cache.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, 1, cache.Len())

	_, ok = cache.Get(old)
	assert.False(t, ok)
}
