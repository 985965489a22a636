package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AskRequest represents a natural-language housing question
type AskRequest struct {
	Query    string      `json:"query"`
	Question string      `json:"question"` // accepted as an alias of query
	City     string      `json:"city"`
	MinPrice OptionalInt `json:"min_price"`
	MaxPrice OptionalInt `json:"max_price"`
	TopK     OptionalInt `json:"top_k"`
}

// Text returns the query, falling back to the question alias
func (r *AskRequest) Text() string {
	if strings.TrimSpace(r.Query) != "" {
		return r.Query
	}
	return r.Question
}

// OptionalInt is an integer that accepts JSON numbers, numeric strings,
// null or "". Anything it cannot read as an integer leaves it unset rather
// than failing the whole request.
type OptionalInt struct {
	Value int64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			*o = OptionalInt{Value: v, Valid: true}
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || f >= 1<<63 || f < math.MinInt64 {
		return nil
	}
	*o = OptionalInt{Value: int64(f), Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

// Ptr returns the value as a pointer, nil when unset
func (o OptionalInt) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// AskResponse represents an answered question
type AskResponse struct {
	Answer    string    `json:"answer"`
	LocalData string    `json:"local_data"`
	Listings  []Listing `json:"listings"`
	Facets    *FacetSet `json:"facets"`
	Strategy  string    `json:"strategy"`
	SearchID  string    `json:"search_id"`
	Took      int64     `json:"took_ms"` // Response time in milliseconds
}

// SearchResponse represents a retrieval-only result
type SearchResponse struct {
	Listings  []Listing        `json:"listings"`
	LocalData string           `json:"local_data"`
	Facets    *FacetSet        `json:"facets"`
	Effective *EffectiveFacets `json:"effective_facets"`
	Strategy  string           `json:"strategy"`
	Keyword   string           `json:"keyword"`
	Attempts  int              `json:"attempts"`
	SearchID  string           `json:"search_id"`
	Took      int64            `json:"took_ms"`
}

// ExtractRequest asks for the facets of a query without searching
type ExtractRequest struct {
	Query string `json:"query" binding:"required"`
}
