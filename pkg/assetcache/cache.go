// Package assetcache holds generated binary payloads (images) for a bounded
// time so they can be served back over HTTP by id.
package assetcache

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const DefaultTTL = time.Hour

type Asset struct {
	Bytes    []byte
	MimeType string
}

type entry struct {
	asset     Asset
	expiresAt time.Time
}

// Cache is a TTL-bounded in-memory map from opaque id to payload. Expired
// entries are swept lazily on each Get; nothing is evicted early, the TTL
// bounds worst-case size.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]entry{},
	}
}

func newID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func (c *Cache) Put(bytes []byte, mimeType string) string {
	id := newID()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = entry{
		asset:     Asset{Bytes: bytes, MimeType: mimeType},
		expiresAt: c.now().Add(c.ttl),
	}
	return id
}

func (c *Cache) Get(id string) (Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}

	e, ok := c.entries[id]
	if !ok {
		return Asset{}, false
	}
	return e.asset, true
}

// Len reports live entries, for the status command.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
