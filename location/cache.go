package location

import (
	"sync"

	"github.com/ayu-run/ayu/access"
)

// numShards matches hive/namecache/cache.go's shard count, trading a
// little memory for lower mutex contention under concurrent lookups.
const numShards = 16

type shard struct {
	mu sync.Mutex
	m  map[access.Reference]Location
}

// Cache is the process-lifetime reverse-index mapping a Reference to the
// Location it was last found at (spec.md §4.6). Unlike
// hive/namecache.shardedCache, which is a bounded byte-key LRU, this
// cache is unbounded and explicitly invalidated rather than
// size-evicted: it is keyed by live references (comparable Go values,
// not byte slices) and its whole lifetime is the KeepCache RAII scope,
// not a fixed capacity budget.
type Cache struct {
	shards [numShards]*shard

	scopeMu    sync.Mutex
	scopeCount int
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = &shard{m: map[access.Reference]Location{}}
	}
	return c
}

func shardFor(ref access.Reference) int {
	addr := ref.Host().Addr()
	return int((uintptr(addr) >> 4) & (numShards - 1))
}

// Get returns the cached Location for ref, if present.
func (c *Cache) Get(ref access.Reference) (Location, bool) {
	s := c.shards[shardFor(ref)]
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.m[ref]
	return loc, ok
}

// Put records ref's Location, populating the cache on first query per
// spec.md §4.6.
func (c *Cache) Put(ref access.Reference, loc Location) {
	s := c.shards[shardFor(ref)]
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[ref] = loc
}

func (c *Cache) reset() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.m = map[access.Reference]Location{}
		s.mu.Unlock()
	}
}

// KeepCache opens a KeepLocationCache scope (spec.md §4.6): nested scopes
// are reference-counted, and the cache is invalidated only once the
// outermost scope's returned end function runs. Callers must call the
// returned function exactly once, typically via defer.
func (c *Cache) KeepCache() func() {
	c.scopeMu.Lock()
	c.scopeCount++
	c.scopeMu.Unlock()
	return func() {
		c.scopeMu.Lock()
		c.scopeCount--
		done := c.scopeCount == 0
		c.scopeMu.Unlock()
		if done {
			c.reset()
		}
	}
}

// ScopeActive reports whether a KeepCache scope is outstanding. Mutating
// resource contents while a scope is open would silently corrupt the
// cache; nothing in this module checks ScopeActive before such a
// mutation, so keeping the contents unchanged is up to the caller.
func (c *Cache) ScopeActive() bool {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()
	return c.scopeCount > 0
}
