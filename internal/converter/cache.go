package converter

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// cache is an insert-if-absent map with hit and miss counters. Values for a
// key are always identical, so concurrent duplicate inserts are harmless.
type cache[V any] struct {
	mu      sync.RWMutex
	entries map[uint64]V
	hits    atomic.Int64
	misses  atomic.Int64
}

func newCache[V any]() *cache[V] {
	return &cache[V]{entries: make(map[uint64]V)}
}

func (c *cache[V]) get(key uint64) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *cache[V]) put(key uint64, v V) {
	c.mu.Lock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = v
	}
	c.mu.Unlock()
}

func (c *cache[V]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey fingerprints parts with a NUL separator so that ("ab", "c") and
// ("a", "bc") differ.
func cacheKey(parts ...string) uint64 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.WriteString("\x00")
		}
		_, _ = d.WriteString(p)
	}
	return d.Sum64()
}

// CacheStats reports cache activity since the engine was created.
type CacheStats struct {
	ConvertHits    int64 `json:"convert_hits"`
	ConvertMisses  int64 `json:"convert_misses"`
	ConvertEntries int   `json:"convert_entries"`
	ImportHits     int64 `json:"import_hits"`
	ImportMisses   int64 `json:"import_misses"`
	ImportEntries  int   `json:"import_entries"`
}
