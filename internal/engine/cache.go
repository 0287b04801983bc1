package engine

import (
	"sync"

	"github.com/anakievah/pdb/internal/table"
)

type cacheKey struct {
	table     string
	predicate string
}

// Cache memoizes filtered reads keyed by (table, predicate). Entries live
// until Invalidate is called for their table; there is no eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey][]table.Record
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]table.Record)}
}

// Get returns the cached rows for (name, pred), calling compute on a miss.
// Errors from compute are returned and not cached. The returned rows are a
// copy that the caller may modify.
func (c *Cache) Get(name string, pred table.Predicate, compute func() ([]table.Record, error)) ([]table.Record, error) {
	key := cacheKey{table: name, predicate: pred.Key()}

	c.mu.Lock()
	rows, ok := c.entries[key]
	if ok {
		c.hits++
		c.mu.Unlock()
		return table.CloneRecords(rows), nil
	}
	c.misses++
	c.mu.Unlock()

	rows, err := compute()
	if err != nil {
		return nil, err
	}
	stored := table.CloneRecords(rows)
	if stored == nil {
		stored = []table.Record{}
	}

	c.mu.Lock()
	c.entries[key] = stored
	c.mu.Unlock()

	return table.CloneRecords(stored), nil
}

// Invalidate drops every entry for the named table.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.table == name {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts since the cache was created.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
