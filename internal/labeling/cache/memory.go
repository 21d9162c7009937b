package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache keeps labels in a bounded in-process LRU
type MemoryCache struct {
	lru *lru.Cache[string, []string]
}

// NewMemoryCache creates an LRU cache holding at most size entries
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	c, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &MemoryCache{lru: c}, nil
}

// Get retrieves labels from cache
func (c *MemoryCache) Get(_ context.Context, key string) ([]string, error) {
	if key == "" {
		observe("get", ErrInvalidKey)
		return nil, ErrInvalidKey
	}
	labels, ok := c.lru.Get(key)
	observe("get", nil)
	if !ok {
		return nil, nil
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out, nil
}

// Set stores labels in cache
func (c *MemoryCache) Set(_ context.Context, key string, labels []string) error {
	if key == "" {
		observe("set", ErrInvalidKey)
		return ErrInvalidKey
	}
	stored := make([]string, len(labels))
	copy(stored, labels)
	c.lru.Add(key, stored)
	observe("set", nil)
	return nil
}

// Delete removes entries from cache
func (c *MemoryCache) Delete(_ context.Context, keys []string) error {
	for _, key := range keys {
		c.lru.Remove(key)
	}
	observe("delete", nil)
	return nil
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Close purges the cache
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// Health always succeeds for the in-process cache
func (c *MemoryCache) Health(context.Context) error {
	return nil
}
