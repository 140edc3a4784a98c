package tokencache

import (
	"slices"
	"sync"
)

var _ Cache = &MemoryCache{}

// MemoryCache is a process-local Cache. It is the backing store for the file
// cache and is used directly in tests and short-lived invocations.
type MemoryCache struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*Record
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{records: make(map[string]*Record)}
}

// Accounts returns the cached accounts in insertion order.
func (c *MemoryCache) Accounts() []Account {
	c.mu.RLock()
	defer c.mu.RUnlock()

	accounts := make([]Account, 0, len(c.order))
	for _, id := range c.order {
		accounts = append(accounts, c.records[id].Account)
	}

	return accounts
}

// Get returns the record for the given account identifier.
func (c *MemoryCache) Get(homeID string) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.records[homeID]
	if !ok {
		return nil, false
	}
	cp := *r

	return &cp, true
}

// Put inserts or replaces the record for its account.
func (c *MemoryCache) Put(r *Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *r
	if _, ok := c.records[r.Account.HomeID]; !ok {
		c.order = append(c.order, r.Account.HomeID)
	}
	c.records[r.Account.HomeID] = &cp

	return nil
}

// Remove drops the record for the given account identifier. Removing an
// unknown account is a no-op.
func (c *MemoryCache) Remove(homeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[homeID]; !ok {
		return nil
	}
	delete(c.records, homeID)
	c.order = slices.DeleteFunc(c.order, func(id string) bool { return id == homeID })

	return nil
}
