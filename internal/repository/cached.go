package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"housing-assistant/internal/cache"
	"housing-assistant/internal/model"
)

// SearchCachePrefix namespaces cached search results
const SearchCachePrefix = "search:"

// Searcher is the listing store behind a CachedRepository
type Searcher interface {
	Search(ctx context.Context, filters model.SearchFilters) ([]model.Listing, error)
	GetByID(ctx context.Context, id int64) (*model.Listing, error)
}

// CachedRepository serves repeated searches from the cache.
// Cache failures are logged and fall through to the underlying store.
type CachedRepository struct {
	next  Searcher
	cache cache.Client
	ttl   time.Duration
}

// NewCachedRepository wraps next with a read-through search cache
func NewCachedRepository(next Searcher, c cache.Client, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedRepository{next: next, cache: c, ttl: ttl}
}

// Search returns cached results for identical filters, querying the store on a miss
func (r *CachedRepository) Search(ctx context.Context, filters model.SearchFilters) ([]model.Listing, error) {
	key, err := searchCacheKey(filters)
	if err != nil {
		return r.next.Search(ctx, filters)
	}

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var listings []model.Listing
		if jsonErr := json.Unmarshal(data, &listings); jsonErr == nil {
			slog.DebugContext(ctx, "search cache hit", "key", key, "count", len(listings))
			return listings, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	case !errors.Is(err, cache.ErrCacheMiss):
		slog.WarnContext(ctx, "search cache unavailable", "error", err)
	}

	listings, err := r.next.Search(ctx, filters)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(listings); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			slog.WarnContext(ctx, "failed to store search result in cache", "error", err)
		}
	}
	return listings, nil
}

// GetByID is not cached
func (r *CachedRepository) GetByID(ctx context.Context, id int64) (*model.Listing, error) {
	return r.next.GetByID(ctx, id)
}

func searchCacheKey(filters model.SearchFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return SearchCachePrefix + hex.EncodeToString(sum[:]), nil
}
