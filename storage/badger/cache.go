package badger

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/anchorage/registry-go/model/registry"
)

func withLimit(limit int) func(*cache) {
	return func(c *cache) {
		c.limit = limit
	}
}

type retrieveFunc func(registry.Hash) (interface{}, error)

func withRetrieve(retrieve retrieveFunc) func(*cache) {
	return func(c *cache) {
		c.retrieve = retrieve
	}
}

func noRetrieve(registry.Hash) (interface{}, error) {
	return nil, fmt.Errorf("no retrieve function for cache get available")
}

// cache is a read-through LRU in front of a badger-backed resource.
type cache struct {
	limit    int
	retrieve retrieveFunc
	entries  *lru.Cache
}

func newCache(options ...func(*cache)) *cache {
	c := cache{
		limit:    1000,
		retrieve: noRetrieve,
	}
	for _, option := range options {
		option(&c)
	}
	c.entries, _ = lru.New(c.limit)
	return &c
}

// Get tries the cache first and falls back to the injected retrieve
// function, caching whatever it returns.
func (c *cache) Get(id registry.Hash) (interface{}, error) {
	resource, cached := c.entries.Get(id)
	if cached {
		return resource, nil
	}

	resource, err := c.retrieve(id)
	if err != nil {
		return nil, err
	}

	c.entries.Add(id, resource)
	return resource, nil
}

// Insert replaces the cached resource after a successful write.
func (c *cache) Insert(id registry.Hash, resource interface{}) {
	c.entries.Add(id, resource)
}
