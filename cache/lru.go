// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// ARC is a typed adaptive replacement cache with hit/miss stats.
type ARC[K comparable, V any] struct {
	arc   *lru.ARCCache
	stats Stats
}

// NewARC creates an ARC cache. maxSize should be > 0, or an error returned.
func NewARC[K comparable, V any](maxSize int) (*ARC[K, V], error) {
	c, err := lru.NewARC(maxSize)
	if err != nil {
		return nil, err
	}
	return &ARC[K, V]{arc: c}, nil
}

func (c *ARC[K, V]) Get(key K) (V, bool) {
	if v, ok := c.arc.Get(key); ok {
		c.stats.Hit()
		return v.(V), true
	}
	c.stats.Miss()
	var zero V
	return zero, false
}

func (c *ARC[K, V]) Add(key K, value V) {
	c.arc.Add(key, value)
}

func (c *ARC[K, V]) Len() int { return c.arc.Len() }

// Stats returns the hit/miss collector.
func (c *ARC[K, V]) Stats() *Stats { return &c.stats }

// GetOrLoad first try to get from cache, do load if missed.
func (c *ARC[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return v, err
	}
	c.Add(key, v)
	return v, nil
}

// LRU is a typed least recently used cache.
type LRU[K comparable, V any] struct {
	lru *lru.Cache
}

// NewLRU creates a LRU cache. maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c}, nil
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := c.lru.Get(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

func (c *LRU[K, V]) Add(key K, value V) {
	c.lru.Add(key, value)
}

func (c *LRU[K, V]) Remove(key K) {
	c.lru.Remove(key)
}

func (c *LRU[K, V]) Purge() {
	c.lru.Purge()
}
