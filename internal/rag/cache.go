package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// Cache memoizes final responses keyed by normalized question text and
// persona id. Entries are write-once and live for the process
// lifetime: the underlying document never changes, so a computed
// response stays valid and is never overwritten or evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Response
}

// NewCache creates an empty response cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Response)}
}

// Get returns the memoized response for (question, personaID) if one
// exists.
func (c *Cache) Get(question, personaID string) (Response, bool) {
	key := cacheKey(question, personaID)
	c.mu.RLock()
	defer c.mu.RUnlock()
	resp, ok := c.entries[key]
	return resp, ok
}

// Put stores a response for (question, personaID). If an entry already
// exists the earlier value is kept, preserving idempotence under
// racing writers.
func (c *Cache) Put(question, personaID string, resp Response) {
	key := cacheKey(question, personaID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = resp
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey hashes the normalized question plus persona id. Questions
// are lowercased and trimmed first so whitespace and case variants hit
// the same entry; SHA-256 keeps distinct inputs from colliding.
func cacheKey(question, personaID string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(personaID + "\x00" + normalized))
	return hex.EncodeToString(sum[:])
}
