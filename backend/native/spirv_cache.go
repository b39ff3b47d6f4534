package native

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/shaderres"
)

// DefaultCacheCapacity is the number of compiled modules kept when
// Config.CacheCapacity is zero.
const DefaultCacheCapacity = 64

type cacheKey struct {
	kind   shaderres.Kind
	debug  bool
	source string
}

type cacheEntry struct {
	key   cacheKey
	words []uint32
}

// spirvCache is an LRU of compiled SPIR-V keyed by kind and source text.
// Recompiling an unchanged shader in a second context, or after a
// ResizeBuffers, is then a lookup.
type spirvCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]*list.Element
	lru      *list.List

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// CacheStats holds SPIR-V cache counters.
type CacheStats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// String returns a one-line summary for logs.
func (s CacheStats) String() string {
	return fmt.Sprintf("SPIRVCache[%d/%d, hits=%d, misses=%d, evictions=%d]",
		s.Len, s.Capacity, s.Hits, s.Misses, s.Evictions)
}

func newSPIRVCache(capacity int) *spirvCache {
	return &spirvCache{
		capacity: capacity,
		entries:  make(map[cacheKey]*list.Element),
		lru:      list.New(),
	}
}

// get returns the cached words for key. Callers must not modify them.
func (c *spirvCache) get(key cacheKey) ([]uint32, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).words, true
}

func (c *spirvCache) put(key cacheKey, words []uint32) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).words = words
		c.lru.MoveToFront(elem)
		return
	}

	for c.lru.Len() >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		c.evictions.Add(1)
	}

	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, words: words})
}

func (c *spirvCache) stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()
	return CacheStats{
		Len:       n,
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
