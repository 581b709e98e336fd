package board

import (
	"sort"
	"sync"

	"jobtrack/internal/model"
)

// Snapshot is an immutable copy of one cache entry.
type Snapshot struct {
	Key     string
	Value   model.ListResult
	Present bool
	Version uint64
}

// Cache holds list results keyed by query (see model.ListParams.Key). Every write to a key
// bumps that key's version. Values handed out are deep copies.
type Cache struct {
	mu      sync.Mutex
	entries map[string]model.ListResult
	version map[string]uint64
}

func NewCache() *Cache {
	return &Cache{
		entries: map[string]model.ListResult{},
		version: map[string]uint64{},
	}
}

func (c *Cache) Get(key string) (model.ListResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return model.ListResult{}, false
	}
	return v.Clone(), true
}

func (c *Cache) Set(key string, v model.ListResult) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v.Clone()
	c.version[key]++
	return c.version[key]
}

func (c *Cache) versionOf(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version[key]
}

// Update runs fn against a copy of the current value under key and stores the result
// when fn returns true. It returns the value as it was before fn ran and the version
// after the call. A missing key is passed to fn as an empty result.
func (c *Cache) Update(key string, fn func(cur *model.ListResult) bool) (Snapshot, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.snapshotLocked(key)
	cur := before.Value.Clone()
	if !fn(&cur) {
		return before, c.version[key], false
	}
	c.entries[key] = cur
	c.version[key]++
	return before, c.version[key], true
}

func (c *Cache) snapshotOf(key string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(key)
}

func (c *Cache) snapshotLocked(key string) Snapshot {
	v, ok := c.entries[key]
	return Snapshot{Key: key, Value: v.Clone(), Present: ok, Version: c.version[key]}
}

// RestoreIfVersion puts s back only when the key is still at version want.
func (c *Cache) RestoreIfVersion(s Snapshot, want uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version[s.Key] != want {
		return false
	}
	c.restoreLocked(s)
	return true
}

func (c *Cache) restoreLocked(s Snapshot) {
	if s.Present {
		c.entries[s.Key] = s.Value.Clone()
	} else {
		delete(c.entries, s.Key)
	}
	c.version[s.Key]++
}

func (c *Cache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
