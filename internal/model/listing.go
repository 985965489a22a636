package model

import "time"

// Listing represents a housing listing row
type Listing struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Address     string    `json:"address" db:"address"`
	City        string    `json:"city" db:"city"`
	District    *string   `json:"district,omitempty" db:"district"`
	Price       int64     `json:"price" db:"price"`
	Area        *float64  `json:"area,omitempty" db:"area"`
	Bedrooms    *int      `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms   *int      `json:"bathrooms,omitempty" db:"bathrooms"`
	Floor       *string   `json:"floor,omitempty" db:"floor"`
	Orientation *string   `json:"orientation,omitempty" db:"orientation"`
	Description *string   `json:"description,omitempty" db:"description"`
	Contact     *string   `json:"contact,omitempty" db:"contact"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SearchFilters is the listing repository's query input.
// Empty or nil fields are not applied.
type SearchFilters struct {
	Keyword  string  `json:"keyword,omitempty"`
	City     *string `json:"city,omitempty"`
	MinPrice *int64  `json:"min_price,omitempty"`
	MaxPrice *int64  `json:"max_price,omitempty"`
	Limit    int     `json:"limit"`
}
