package lrucacheuint64tohash

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// LRUCache is a least-recently-used cache from
// uint64 to DomainHash
type LRUCache struct {
	cache *lru.Cache
}

// New creates a new LRUCache
func New(capacity int) *LRUCache {
	cache, err := lru.New(capacity)
	if err != nil {
		panic(err)
	}
	return &LRUCache{cache: cache}
}

// Add adds an entry to the LRUCache
func (c *LRUCache) Add(key uint64, value *externalapi.DomainHash) {
	c.cache.Add(key, value)
}

// Get returns the entry for the given key, or (nil, false) otherwise
func (c *LRUCache) Get(key uint64) (*externalapi.DomainHash, bool) {
	value, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return value.(*externalapi.DomainHash), true
}

// Has returns whether the LRUCache contains the given key
func (c *LRUCache) Has(key uint64) bool {
	return c.cache.Contains(key)
}

// Remove removes the entry for the the given key. Does nothing if
// the entry does not exist
func (c *LRUCache) Remove(key uint64) {
	c.cache.Remove(key)
}
