package lrucache

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// LRUCache is a least-recently-used cache for any type
// that's able to be indexed by DomainHash
type LRUCache struct {
	cache *lru.Cache
}

// New creates a new LRUCache
func New(capacity int) *LRUCache {
	cache, err := lru.New(capacity)
	if err != nil {
		// lru.New only fails for a non-positive size
		panic(err)
	}
	return &LRUCache{cache: cache}
}

// Add adds an entry to the LRUCache
func (c *LRUCache) Add(key *externalapi.DomainHash, value interface{}) {
	c.cache.Add(*key, value)
}

// Get returns the entry for the given key, or (nil, false) otherwise
func (c *LRUCache) Get(key *externalapi.DomainHash) (interface{}, bool) {
	return c.cache.Get(*key)
}

// Has returns whether the LRUCache contains the given key
func (c *LRUCache) Has(key *externalapi.DomainHash) bool {
	return c.cache.Contains(*key)
}

// Remove removes the entry for the the given key. Does nothing if
// the entry does not exist
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	c.cache.Remove(*key)
}

// Clear clears the cache
func (c *LRUCache) Clear() {
	c.cache.Purge()
}
