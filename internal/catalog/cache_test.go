package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/autoclass/internal/domain"
)

type countingLister struct {
	tagCalls    int
	schemaCalls int
	err         error
}

func (l *countingLister) ListTags(context.Context) ([]domain.Tag, error) {
	l.tagCalls++
	if l.err != nil {
		return nil, l.err
	}
	return []domain.Tag{{Database: "GOV", Schema: "TAGS", Name: "PII"}}, nil
}

func (l *countingLister) ListSchemas(context.Context) ([]domain.Schema, error) {
	l.schemaCalls++
	if l.err != nil {
		return nil, l.err
	}
	return []domain.Schema{{Database: "GOV", Name: "PROFILES"}}, nil
}

func TestCache_ReadThrough(t *testing.T) {
	src := &countingLister{}
	cache := NewCache(src)
	ctx := context.Background()

	for range 3 {
		tags, err := cache.ListTags(ctx)
		require.NoError(t, err)
		assert.Len(t, tags, 1)

		schemas, err := cache.ListSchemas(ctx)
		require.NoError(t, err)
		assert.Len(t, schemas, 1)
	}

	assert.Equal(t, 1, src.tagCalls)
	assert.Equal(t, 1, src.schemaCalls)
}

func TestCache_ErrorsNotCached(t *testing.T) {
	src := &countingLister{err: errors.New("offline")}
	cache := NewCache(src)
	ctx := context.Background()

	_, err := cache.ListTags(ctx)
	assert.Error(t, err)

	src.err = nil
	tags, err := cache.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
	assert.Equal(t, 2, src.tagCalls)
}

func TestCache_ReturnsCopies(t *testing.T) {
	cache := NewCache(&countingLister{})
	ctx := context.Background()

	tags, err := cache.ListTags(ctx)
	require.NoError(t, err)
	tags[0].Name = "CHANGED"

	again, err := cache.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PII", again[0].Name)
}

func TestCache_PerInstanceScope(t *testing.T) {
	src := &countingLister{}
	ctx := context.Background()

	_, err := NewCache(src).ListTags(ctx)
	require.NoError(t, err)
	_, err = NewCache(src).ListTags(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, src.tagCalls, "separate sessions do not share results")
}
