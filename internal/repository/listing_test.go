package repository

import (
	"context"
	"testing"
	"time"

	"housing-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func newTestRepository(t *testing.T) *ListingRepository {
	t.Helper()

	repo, err := NewListingRepository("sqlite", ":memory:", 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	listings := []model.Listing{
		{
			Title: "Sunny two-bedroom apartment", Address: "88 Century Ave", City: "Shanghai",
			District: strPtr("Pudong"), Price: 4800, Orientation: strPtr("south"),
			Description: strPtr("south-facing, near subway"), UpdatedAt: base.Add(1 * time.Hour),
		},
		{
			Title: "朝南两室公寓", Address: "徐汇区漕溪北路", City: "上海",
			Price: 5200, Description: strPtr("精装修，近地铁"), UpdatedAt: base.Add(2 * time.Hour),
		},
		{
			Title: "Studio loft", Address: "1 Chaoyang Rd", City: "Beijing",
			Price: 3000, Description: strPtr("compact studio"), UpdatedAt: base.Add(3 * time.Hour),
		},
		{
			Title: "Family house", Address: "12 Garden St", City: "Shanghai",
			Price: 9000, UpdatedAt: base,
		},
	}
	n, err := repo.InsertListings(ctx, listings)
	require.NoError(t, err)
	require.Equal(t, len(listings), n)

	return repo
}

func titles(listings []model.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Title)
	}
	return out
}

func TestListingRepository_Search(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters model.SearchFilters
		want    []string
	}{
		{
			name:    "no filters returns newest first",
			filters: model.SearchFilters{Limit: 10},
			want:    []string{"Studio loft", "朝南两室公寓", "Sunny two-bedroom apartment", "Family house"},
		},
		{
			name:    "limit caps the result",
			filters: model.SearchFilters{Limit: 2},
			want:    []string{"Studio loft", "朝南两室公寓"},
		},
		{
			name:    "keyword matches title",
			filters: model.SearchFilters{Keyword: "two-bedroom", Limit: 10},
			want:    []string{"Sunny two-bedroom apartment"},
		},
		{
			name:    "keyword matches description",
			filters: model.SearchFilters{Keyword: "地铁", Limit: 10},
			want:    []string{"朝南两室公寓"},
		},
		{
			name:    "keyword matches address",
			filters: model.SearchFilters{Keyword: "Garden", Limit: 10},
			want:    []string{"Family house"},
		},
		{
			name:    "blank keyword is ignored",
			filters: model.SearchFilters{Keyword: "   ", City: strPtr("Beijing"), Limit: 10},
			want:    []string{"Studio loft"},
		},
		{
			name:    "city substring",
			filters: model.SearchFilters{City: strPtr("Shang"), Limit: 10},
			want:    []string{"Sunny two-bedroom apartment", "Family house"},
		},
		{
			name:    "price bounds are inclusive",
			filters: model.SearchFilters{MinPrice: int64Ptr(3000), MaxPrice: int64Ptr(4800), Limit: 10},
			want:    []string{"Studio loft", "Sunny two-bedroom apartment"},
		},
		{
			name:    "inverted bounds match nothing",
			filters: model.SearchFilters{MinPrice: int64Ptr(6000), MaxPrice: int64Ptr(5000), Limit: 10},
			want:    []string{},
		},
		{
			name:    "joined keyword string is one substring",
			filters: model.SearchFilters{Keyword: "south apartment", Limit: 10},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestListingRepository_SearchScansAllColumns(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.Search(context.Background(), model.SearchFilters{Keyword: "Century", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)

	l := got[0]
	assert.NotZero(t, l.ID)
	assert.Equal(t, "Shanghai", l.City)
	assert.Equal(t, int64(4800), l.Price)
	require.NotNil(t, l.District)
	assert.Equal(t, "Pudong", *l.District)
	assert.Nil(t, l.Bedrooms)
	assert.True(t, l.UpdatedAt.Equal(time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)))
}

func TestListingRepository_GetByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	all, err := repo.Search(ctx, model.SearchFilters{Limit: 1})
	require.NoError(t, err)
	require.Len(t, all, 1)

	got, err := repo.GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, all[0].Title, got.Title)

	missing, err := repo.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListingRepository_InsertListingsEmpty(t *testing.T) {
	repo := newTestRepository(t)
	n, err := repo.InsertListings(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListingRepository_SearchFailsWithoutSchema(t *testing.T) {
	repo, err := NewListingRepository("sqlite", ":memory:", 1, 1)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Search(context.Background(), model.SearchFilters{Limit: 5})
	assert.Error(t, err)
}

func TestNewListingRepository_UnknownDriver(t *testing.T) {
	_, err := NewListingRepository("mysql", "whatever", 1, 1)
	assert.Error(t, err)
}

func TestApplyFilters(t *testing.T) {
	where, args := applyFilters(model.SearchFilters{
		Keyword:  " 南 ",
		City:     strPtr("上海"),
		MinPrice: int64Ptr(3000),
		MaxPrice: int64Ptr(5000),
	}, "ILIKE")

	assert.Equal(t,
		`1=1 AND (title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\' OR address ILIKE ? ESCAPE '\') AND city ILIKE ? ESCAPE '\' AND price >= ? AND price <= ?`,
		where)
	assert.Equal(t, []interface{}{"%南%", "%南%", "%南%", "%上海%", int64(3000), int64(5000)}, args)

	_, args = applyFilters(model.SearchFilters{Keyword: `100%_a\b`}, "LIKE")
	assert.Equal(t, `%100\%\_a\\b%`, args[0])

	where, args = applyFilters(model.SearchFilters{City: strPtr("  ")}, "LIKE")
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestListingRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.InsertListings(ctx, []model.Listing{
		{Title: "room a_b", City: "Hangzhou", Price: 2000},
		{Title: "room axb", City: "Hangzhou", Price: 2000},
		{Title: "100% new flat", City: "Hangzhou", Price: 2500},
		{Title: "1000 sq ft flat", City: "Hangzhou", Price: 2500},
	})
	require.NoError(t, err)

	tests := []struct {
		keyword string
		want    []string
	}{
		{"a_b", []string{"room a_b"}},
		{"100%", []string{"100% new flat"}},
		{"%", []string{"100% new flat"}},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got, err := repo.Search(ctx, model.SearchFilters{Keyword: tt.keyword, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}
