// Package lrucache implements the ListingCache port with a capacity-bounded,
// TTL-aware LRU store.
package lrucache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ListingCache = (*Cache)(nil)

// Cache caches merged listings per folder key. Entries expire after the
// configured TTL and the least recently used entry is evicted once size is
// reached, so the cache cannot grow without bound across a long-lived
// process. All operations are safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, *model.Listing]
}

// New creates a Cache holding at most size entries, each valid for ttl.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, *model.Listing](size, nil, ttl),
	}
}

// Get returns the cached listing for key, or false on miss or expiry.
func (c *Cache) Get(key string) (*model.Listing, bool) {
	return c.lru.Get(key)
}

// Put stores the listing under key, replacing any previous entry.
func (c *Cache) Put(key string, listing *model.Listing) {
	c.lru.Add(key, listing)
}
