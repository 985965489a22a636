package model

// FacetSet holds the structured search facets extracted from a raw query.
// Fields are independently optional; MinPrice > MaxPrice is kept as-is.
type FacetSet struct {
	City        *string  `json:"city,omitempty"`
	Orientation *string  `json:"orientation,omitempty"`
	MinPrice    *int64   `json:"min_price,omitempty"`
	MaxPrice    *int64   `json:"max_price,omitempty"`
	Keywords    []string `json:"keywords"` // discovery order, no duplicates
}

// EffectiveFacets is a FacetSet after caller-supplied overrides are applied
type EffectiveFacets struct {
	City        *string  `json:"city,omitempty"`
	Orientation *string  `json:"orientation,omitempty"`
	MinPrice    *int64   `json:"min_price,omitempty"`
	MaxPrice    *int64   `json:"max_price,omitempty"`
	Keywords    []string `json:"keywords"`
}
