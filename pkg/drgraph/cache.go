package drgraph

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// DefaultParentCacheSize is the number of parent sets kept by a ParentCache
// when no size is given.
const DefaultParentCacheSize = 1 << 14

// ParentCache memoises the parent sets of a wrapped graph. Parent generation
// is pure, so cached results are always identical to recomputed ones.
type ParentCache struct {
	Graph
	cache *lru.ARCCache
}

var _ Graph = (*ParentCache)(nil)

// NewParentCache wraps g with an LRU of up to size parent sets.
func NewParentCache(g Graph, size int) (*ParentCache, error) {
	if size <= 0 {
		size = DefaultParentCacheSize
	}
	c, err := lru.NewARC(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create parent cache")
	}
	return &ParentCache{Graph: g, cache: c}, nil
}

// Parents returns the parents of node from the cache, generating them on a
// miss. Callers must not modify the returned slice.
func (pc *ParentCache) Parents(node uint64) ([]uint64, error) {
	if v, ok := pc.cache.Get(node); ok {
		return v.([]uint64), nil
	}
	parents, err := pc.Graph.Parents(node)
	if err != nil {
		return nil, err
	}
	pc.cache.Add(node, parents)
	return parents, nil
}

// Len is the number of cached parent sets.
func (pc *ParentCache) Len() int {
	return pc.cache.Len()
}
