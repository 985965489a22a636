package service

import (
	"context"
	"errors"
	"testing"

	"housing-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore answers searches from a keyword -> listings table and records every call
type stubStore struct {
	byKeyword map[string][]model.Listing
	cityOnly  []model.Listing
	err       error
	calls     []model.SearchFilters
}

func (s *stubStore) Search(_ context.Context, filters model.SearchFilters) ([]model.Listing, error) {
	s.calls = append(s.calls, filters)
	if s.err != nil {
		return nil, s.err
	}
	if filters.Keyword == "" && filters.City != nil {
		return s.cityOnly, nil
	}
	return s.byKeyword[filters.Keyword], nil
}

func (s *stubStore) GetByID(_ context.Context, _ int64) (*model.Listing, error) {
	return nil, nil
}

func newTestRetriever(store ListingStore) *Retriever {
	return NewRetriever(newTestExtractor(), store, 0)
}

func TestRetriever_PrimaryHit(t *testing.T) {
	store := &stubStore{byKeyword: map[string][]model.Listing{
		"南 公寓": {{ID: 1, Title: "朝南公寓"}},
	}}

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: "上海朝南公寓5000以下"})
	require.NoError(t, err)

	assert.Equal(t, StrategyPrimary, res.Strategy)
	assert.Equal(t, "南 公寓", res.Keyword)
	assert.Equal(t, 1, res.Attempts)
	require.Len(t, res.Listings, 1)

	require.Len(t, store.calls, 1)
	call := store.calls[0]
	assert.Equal(t, "上海", *call.City)
	assert.Nil(t, call.MinPrice)
	assert.Equal(t, int64(5000), *call.MaxPrice)
	assert.Equal(t, DefaultLimit, call.Limit)
}

func TestRetriever_SingleKeywordFallback(t *testing.T) {
	store := &stubStore{byKeyword: map[string][]model.Listing{
		"地铁": {{ID: 2, Title: "近地铁"}},
	}}

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: "北京公寓 地铁", Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, StrategySingleKeyword, res.Strategy)
	assert.Equal(t, "地铁", res.Keyword)
	assert.Equal(t, []model.Listing{{ID: 2, Title: "近地铁"}}, res.Listings)

	keywords := make([]string, 0, len(store.calls))
	for _, c := range store.calls {
		keywords = append(keywords, c.Keyword)
		assert.Equal(t, "北京", *c.City)
		assert.Equal(t, 3, c.Limit)
	}
	assert.Equal(t, []string{"公寓 地铁", "公寓", "地铁"}, keywords)
	assert.Equal(t, 3, res.Attempts)
}

func TestRetriever_CityOnlyFallback(t *testing.T) {
	store := &stubStore{cityOnly: []model.Listing{{ID: 3, Title: "Any Shanghai flat"}}}

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: "Shanghai penthouse 3000 to 9000"})
	require.NoError(t, err)

	assert.Equal(t, StrategyCityOnly, res.Strategy)
	assert.Equal(t, "", res.Keyword)
	require.Len(t, res.Listings, 1)

	last := store.calls[len(store.calls)-1]
	assert.Equal(t, "Shanghai", *last.City)
	assert.Equal(t, int64(3000), *last.MinPrice)
	assert.Equal(t, int64(9000), *last.MaxPrice)
	assert.Equal(t, 3, res.Attempts, "primary, one single keyword, city only")
}

func TestRetriever_RawQueryLastResort(t *testing.T) {
	store := &stubStore{byKeyword: map[string][]model.Listing{}}

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: "hello"})
	require.NoError(t, err)

	assert.Equal(t, StrategyRawQuery, res.Strategy)
	assert.Equal(t, "hello", res.Keyword)
	assert.NotNil(t, res.Listings)
	assert.Empty(t, res.Listings)

	require.NotEmpty(t, store.calls)
	assert.Equal(t, "hello", store.calls[0].Keyword)
	last := store.calls[len(store.calls)-1]
	assert.Equal(t, model.SearchFilters{Keyword: "hello", Limit: DefaultLimit}, last)
	assert.Equal(t, []string{"hello"}, res.Facets.Keywords)
}

func TestRetriever_RawQueryDropsConstraints(t *testing.T) {
	raw := "上海 豪宅 3000以上"
	store := &stubStore{byKeyword: map[string][]model.Listing{
		raw: {{ID: 4}},
	}}
	city := "杭州"

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: raw, City: &city})
	require.NoError(t, err)

	assert.Equal(t, StrategyRawQuery, res.Strategy)
	assert.Len(t, res.Listings, 1)

	last := store.calls[len(store.calls)-1]
	assert.Nil(t, last.City)
	assert.Nil(t, last.MinPrice)
	assert.Nil(t, last.MaxPrice)
}

func TestRetriever_ExplicitOverridesWin(t *testing.T) {
	store := &stubStore{}
	city := " 杭州 "
	minPrice := int64(1000)

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{
		Query:    "上海公寓3000到5000",
		City:     &city,
		MinPrice: &minPrice,
	})
	require.NoError(t, err)

	assert.Equal(t, "上海", *res.Facets.City, "extracted facets are reported unchanged")
	assert.Equal(t, "杭州", *res.Effective.City)
	assert.Equal(t, int64(1000), *res.Effective.MinPrice)
	assert.Equal(t, int64(5000), *res.Effective.MaxPrice)

	first := store.calls[0]
	assert.Equal(t, "杭州", *first.City)
	assert.Equal(t, int64(1000), *first.MinPrice)
	assert.Equal(t, int64(5000), *first.MaxPrice)
}

func TestRetriever_BlankExplicitCityFallsBackToExtracted(t *testing.T) {
	store := &stubStore{}
	blank := "  "

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: "北京", City: &blank})
	require.NoError(t, err)
	assert.Equal(t, "北京", *res.Effective.City)
}

func TestRetriever_NoCitySkipsCityOnly(t *testing.T) {
	store := &stubStore{cityOnly: []model.Listing{{ID: 9}}}

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: "公寓"})
	require.NoError(t, err)

	assert.Equal(t, StrategyRawQuery, res.Strategy)
	for _, c := range store.calls {
		assert.False(t, c.Keyword == "" && c.City != nil, "city-only search must not run without a city")
	}
}

func TestRetriever_StoreErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection refused")
	store := &stubStore{err: dbErr}

	res, err := newTestRetriever(store).Retrieve(context.Background(), RetrieveRequest{Query: "公寓"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.ErrorIs(t, err, dbErr)
	assert.Len(t, store.calls, 1, "the ladder stops at the first failure")
}

func TestRetriever_CustomDefaultLimit(t *testing.T) {
	store := &stubStore{}
	_, err := NewRetriever(newTestExtractor(), store, 8).Retrieve(context.Background(), RetrieveRequest{Query: "x", Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, 8, store.calls[0].Limit)
}
