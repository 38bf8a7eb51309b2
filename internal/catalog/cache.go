package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/pbaille/autoclass/internal/domain"
)

// Cache memoizes a Lister for the lifetime of one authoring session.
// Results are never invalidated; failed lookups are not cached.
type Cache struct {
	src Lister

	mu      sync.Mutex
	tags    []domain.Tag
	schemas []domain.Schema
	hasTags bool
	hasSch  bool
}

// NewCache wraps src.
func NewCache(src Lister) *Cache {
	return &Cache{src: src}
}

// ListTags returns the cached tag list, loading it on first use.
func (c *Cache) ListTags(ctx context.Context) ([]domain.Tag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasTags {
		tags, err := c.src.ListTags(ctx)
		if err != nil {
			return nil, err
		}
		c.tags, c.hasTags = tags, true
	}
	return slices.Clone(c.tags), nil
}

// ListSchemas returns the cached schema list, loading it on first use.
func (c *Cache) ListSchemas(ctx context.Context) ([]domain.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasSch {
		schemas, err := c.src.ListSchemas(ctx)
		if err != nil {
			return nil, err
		}
		c.schemas, c.hasSch = schemas, true
	}
	return slices.Clone(c.schemas), nil
}
