package cache

import (
	"sync"

	"questforge/internal/lint"
	"questforge/internal/textutil"
)

// ResultCache memoizes lint findings by script content hash. Quest
// directories commonly hold many byte-identical scripts (copied
// default.pl files), so batch validation lints each distinct body once.
type ResultCache struct {
	mu     sync.RWMutex
	memory map[string][]lint.Issue
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{memory: make(map[string][]lint.Issue)}
}

// Get retrieves cached findings for a script body.
func (c *ResultCache) Get(text string) ([]lint.Issue, bool) {
	hash := textutil.Hash(text)

	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.memory[hash]
	return v, ok
}

// Set stores the findings for a script body.
func (c *ResultCache) Set(text string, issues []lint.Issue) {
	hash := textutil.Hash(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory[hash] = issues
}

// Len reports how many distinct script bodies have been cached.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
