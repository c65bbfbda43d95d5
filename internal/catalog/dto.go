package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/mangohub/mangostore-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Category   string           `json:"category,omitempty"`
	Origin     string           `json:"origin,omitempty"`
	Season     string           `json:"season,omitempty"`
	IsFeatured *bool            `json:"is_featured,omitempty"`
	PriceMin   *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax   *decimal.Decimal `json:"price_max,omitempty"`
	Query      string           `json:"q,omitempty"`
}

// SortOrder names the supported listing sorts.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortTopRated  SortOrder = "top_rated"
)

// ListInput captures the inputs needed to paginate/filter the catalog.
type ListInput struct {
	Filters    ListFilters
	Sort       SortOrder
	Pagination pagination.Params
}

// CreateProductInput carries the admin payload for a new listing.
type CreateProductInput struct {
	Name         string
	Description  string
	Image        string
	Origin       string
	Season       string
	Category     string
	Price        decimal.Decimal
	CountInStock int
	IsFeatured   bool
	Tags         []string
}

// UpdateProductInput carries partial updates; nil fields stay untouched.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Image        *string
	Origin       *string
	Season       *string
	Category     *string
	Price        *decimal.Decimal
	CountInStock *int
	IsFeatured   *bool
	Tags         []string
}
