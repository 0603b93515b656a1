package store

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 1000

func withLimit[K comparable, V any](limit uint) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.limit = limit
	}
}

type storeFunc[K comparable, V any] func(key K, val V) error

func withStore[K comparable, V any](store storeFunc[K, V]) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.store = store
	}
}

func noStore[K comparable, V any](_ K, _ V) error {
	return fmt.Errorf("no store function for cache put available")
}

type retrieveFunc[K comparable, V any] func(key K) (V, error)

func withRetrieve[K comparable, V any](retrieve retrieveFunc[K, V]) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.retrieve = retrieve
	}
}

func noRetrieve[K comparable, V any](_ K) (V, error) {
	var nullV V
	return nullV, fmt.Errorf("no retrieve function for cache get available")
}

// Cache is a read-through, write-through LRU cache in front of the database.
type Cache[K comparable, V any] struct {
	limit    uint
	store    storeFunc[K, V]
	retrieve retrieveFunc[K, V]
	cache    *lru.Cache[K, V]
}

func newCache[K comparable, V any](options ...func(*Cache[K, V])) *Cache[K, V] {
	c := Cache[K, V]{
		limit:    DefaultCacheSize,
		store:    noStore[K, V],
		retrieve: noRetrieve[K, V],
	}
	for _, option := range options {
		option(&c)
	}
	if c.limit == 0 {
		c.limit = DefaultCacheSize
	}
	// lru.New only fails on non-positive sizes
	c.cache, _ = lru.New[K, V](int(c.limit))
	return &c
}

// IsCached returns true if the key exists in the cache.
// It DOES NOT check whether the key exists in the underlying data store.
func (c *Cache[K, V]) IsCached(key K) bool {
	return c.cache.Contains(key)
}

// Get will try to retrieve the resource from cache first, and then from the
// injected retrieve function. Errors of the retrieve function are returned
// unwrapped, so sentinel errors can be checked by the caller.
func (c *Cache[K, V]) Get(key K) (V, error) {

	// check if we have it in the cache
	resource, cached := c.cache.Get(key)
	if cached {
		return resource, nil
	}

	// get it from the database
	resource, err := c.retrieve(key)
	if err != nil {
		var nullV V
		return nullV, err
	}

	// cache the resource and eject least recently used one if we reached limit
	c.cache.Add(key, resource)
	return resource, nil
}

// Put will add a resource to the database and to the cache.
func (c *Cache[K, V]) Put(key K, resource V) error {

	// try to store the resource
	err := c.store(key, resource)
	if err != nil {
		return fmt.Errorf("could not store resource: %w", err)
	}

	// cache the resource and eject least recently used one if we reached limit
	c.cache.Add(key, resource)
	return nil
}
