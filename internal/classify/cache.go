package classify

import (
	"errors"
	"path/filepath"
	"sync"
)

// ErrModelUnavailable is returned when a dimension's model artifact is
// missing or failed validation. It marks the dimension unavailable; it never
// aborts a classification call.
var ErrModelUnavailable = errors.New("classification model unavailable")

type cacheEntry struct {
	once  sync.Once
	model *Model
	err   error
}

// Cache lazily loads model artifacts from a directory, once per dimension
// per process. The first caller loads; concurrent callers wait on the same
// load. Loaded models are immutable and shared read-only.
type Cache struct {
	dir string

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func NewCache(dir string) *Cache {
	return &Cache{
		dir:     dir,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the loaded model for a dimension, triggering the one-time load
// on first access. A missing or invalid artifact yields ErrModelUnavailable
// (wrapped) from this and every subsequent call.
func (c *Cache) Get(dimension string) (*Model, error) {
	c.mu.Lock()
	entry, ok := c.entries[dimension]
	if !ok {
		entry = &cacheEntry{}
		c.entries[dimension] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		path := filepath.Join(c.dir, dimension+".json")
		model, err := LoadModel(path, dimension)
		if err != nil {
			entry.err = errors.Join(ErrModelUnavailable, err)
			return
		}
		entry.model = model
	})
	return entry.model, entry.err
}

// Reset discards all cached entries so the next Get reloads from disk.
// Intended for tests and operational model swaps.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}
