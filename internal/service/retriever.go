package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"housing-assistant/internal/model"
)

// DefaultLimit is the listing cap used when a request does not set one
const DefaultLimit = 5

// Retrieval strategies, in ladder order
const (
	StrategyPrimary       = "primary"
	StrategySingleKeyword = "single_keyword"
	StrategyCityOnly      = "city_only"
	StrategyRawQuery      = "raw_query"
)

// ListingStore is the read side of the listing repository
type ListingStore interface {
	Search(ctx context.Context, filters model.SearchFilters) ([]model.Listing, error)
	GetByID(ctx context.Context, id int64) (*model.Listing, error)
}

// RetrieveRequest carries the raw query and any caller-supplied overrides
type RetrieveRequest struct {
	Query    string
	City     *string
	MinPrice *int64
	MaxPrice *int64
	Limit    int
}

// RetrieveResult is the outcome of walking the fallback ladder
type RetrieveResult struct {
	Facets    *model.FacetSet
	Effective *model.EffectiveFacets
	Listings  []model.Listing
	Strategy  string // rung that produced Listings
	Keyword   string // keyword used by that rung
	Attempts  int    // repository calls made
}

// Retriever searches the listing store with extracted facets, widening the
// search one rung at a time until something matches
type Retriever struct {
	extractor    *FacetExtractor
	store        ListingStore
	defaultLimit int
}

// NewRetriever creates a retriever. A non-positive defaultLimit means DefaultLimit.
func NewRetriever(extractor *FacetExtractor, store ListingStore, defaultLimit int) *Retriever {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Retriever{
		extractor:    extractor,
		store:        store,
		defaultLimit: defaultLimit,
	}
}

// Extract exposes the facet extractor
func (r *Retriever) Extract(query string) *model.FacetSet {
	return r.extractor.Extract(query)
}

// Retrieve runs the ladder: primary, single keyword, city only, raw query.
// An empty final result is not an error; store failures are wrapped in ErrRetrieval.
func (r *Retriever) Retrieve(ctx context.Context, req RetrieveRequest) (*RetrieveResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = r.defaultLimit
	}

	facets := r.extractor.Extract(req.Query)
	effective := mergeFacets(req, facets)
	result := &RetrieveResult{Facets: facets, Effective: effective}

	search := func(strategy, keyword string, filters model.SearchFilters) (bool, error) {
		filters.Keyword = keyword
		filters.Limit = limit
		result.Attempts++

		listings, err := r.store.Search(ctx, filters)
		if err != nil {
			return false, fmt.Errorf("%w: %s search: %w", ErrRetrieval, strategy, err)
		}

		slog.DebugContext(ctx, "retrieval attempt",
			"strategy", strategy,
			"keyword", keyword,
			"results", len(listings))

		result.Listings = listings
		result.Strategy = strategy
		result.Keyword = keyword
		return len(listings) > 0, nil
	}

	bounded := model.SearchFilters{
		City:     effective.City,
		MinPrice: effective.MinPrice,
		MaxPrice: effective.MaxPrice,
	}

	if found, err := search(StrategyPrimary, joinKeywords(facets), bounded); err != nil || found {
		return r.finish(ctx, result, err)
	}

	for _, kw := range facets.Keywords {
		if found, err := search(StrategySingleKeyword, kw, bounded); err != nil || found {
			return r.finish(ctx, result, err)
		}
	}

	if effective.City != nil {
		if found, err := search(StrategyCityOnly, "", bounded); err != nil || found {
			return r.finish(ctx, result, err)
		}
	}

	_, err := search(StrategyRawQuery, req.Query, model.SearchFilters{})
	return r.finish(ctx, result, err)
}

func (r *Retriever) finish(ctx context.Context, result *RetrieveResult, err error) (*RetrieveResult, error) {
	if err != nil {
		return nil, err
	}
	if result.Listings == nil {
		result.Listings = []model.Listing{}
	}
	slog.InfoContext(ctx, "retrieval finished",
		"strategy", result.Strategy,
		"attempts", result.Attempts,
		"results", len(result.Listings))
	return result, nil
}

// mergeFacets applies caller overrides: a non-blank explicit value wins,
// an extracted value fills in only when the caller gave none
func mergeFacets(req RetrieveRequest, facets *model.FacetSet) *model.EffectiveFacets {
	effective := &model.EffectiveFacets{
		City:        facets.City,
		Orientation: facets.Orientation,
		MinPrice:    facets.MinPrice,
		MaxPrice:    facets.MaxPrice,
		Keywords:    facets.Keywords,
	}

	if req.City != nil && strings.TrimSpace(*req.City) != "" {
		city := strings.TrimSpace(*req.City)
		effective.City = &city
	}
	if req.MinPrice != nil {
		effective.MinPrice = req.MinPrice
	}
	if req.MaxPrice != nil {
		effective.MaxPrice = req.MaxPrice
	}
	return effective
}

// joinKeywords builds the primary search string: orientation first, then keywords
func joinKeywords(facets *model.FacetSet) string {
	parts := make([]string, 0, len(facets.Keywords)+1)
	if facets.Orientation != nil {
		parts = append(parts, *facets.Orientation)
	}
	parts = append(parts, facets.Keywords...)
	return strings.Join(parts, " ")
}
