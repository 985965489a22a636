package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"housing-assistant/internal/cache"
	"housing-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func (c *memoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *memoryCache) Close() error { return nil }

type countingStore struct {
	calls    int
	listings []model.Listing
	err      error
}

func (s *countingStore) Search(_ context.Context, _ model.SearchFilters) ([]model.Listing, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.listings, nil
}

func (s *countingStore) GetByID(_ context.Context, id int64) (*model.Listing, error) {
	for i := range s.listings {
		if s.listings[i].ID == id {
			return &s.listings[i], nil
		}
	}
	return nil, nil
}

func TestCachedRepository_ServesRepeatedSearchFromCache(t *testing.T) {
	store := &countingStore{listings: []model.Listing{{ID: 1, Title: "Loft", City: "Shanghai", Price: 4000}}}
	repo := NewCachedRepository(store, newMemoryCache(), time.Minute)
	ctx := context.Background()
	filters := model.SearchFilters{Keyword: "loft", Limit: 5}

	first, err := repo.Search(ctx, filters)
	require.NoError(t, err)
	second, err := repo.Search(ctx, filters)
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, first[0].Title, second[0].Title)

	_, err = repo.Search(ctx, model.SearchFilters{Keyword: "loft", Limit: 6})
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls, "different filters must not share a cache entry")
}

func TestCachedRepository_FallsThroughOnCacheFailure(t *testing.T) {
	store := &countingStore{listings: []model.Listing{{ID: 1, Title: "Loft"}}}
	c := newMemoryCache()
	c.getErr = errors.New("connection refused")
	c.setErr = errors.New("connection refused")
	repo := NewCachedRepository(store, c, time.Minute)

	for i := 0; i < 2; i++ {
		got, err := repo.Search(context.Background(), model.SearchFilters{Limit: 5})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, store.calls)
}

func TestCachedRepository_DoesNotCacheErrors(t *testing.T) {
	store := &countingStore{err: errors.New("db down")}
	c := newMemoryCache()
	repo := NewCachedRepository(store, c, time.Minute)

	_, err := repo.Search(context.Background(), model.SearchFilters{Limit: 5})
	require.Error(t, err)
	assert.Empty(t, c.entries)
}

func TestCachedRepository_InvalidationByPrefix(t *testing.T) {
	store := &countingStore{listings: []model.Listing{{ID: 1, Title: "Loft"}}}
	c := newMemoryCache()
	repo := NewCachedRepository(store, c, time.Minute)
	ctx := context.Background()

	_, _ = repo.Search(ctx, model.SearchFilters{Limit: 5})
	require.NoError(t, c.DeleteByPrefix(ctx, SearchCachePrefix))
	_, _ = repo.Search(ctx, model.SearchFilters{Limit: 5})

	assert.Equal(t, 2, store.calls)
}

func TestCachedRepository_GetByIDPassesThrough(t *testing.T) {
	store := &countingStore{listings: []model.Listing{{ID: 7, Title: "Loft"}}}
	repo := NewCachedRepository(store, newMemoryCache(), 0)

	got, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Loft", got.Title)
}
