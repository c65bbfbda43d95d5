package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mangohub/mangostore-backend/api/responses"
	"github.com/mangohub/mangostore-backend/api/validators"
	"github.com/mangohub/mangostore-backend/internal/catalog"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/logger"
	"github.com/mangohub/mangostore-backend/pkg/pagination"
)

// GetProduct resolves one listing by id.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts is the public browse endpoint with filters, sort and cursor
// pagination.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func parseListInput(r *http.Request) (catalog.ListInput, error) {
	query := r.URL.Query()

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return catalog.ListInput{}, err
	}

	filters := catalog.ListFilters{
		Category: strings.TrimSpace(query.Get("category")),
		Origin:   strings.TrimSpace(query.Get("origin")),
		Season:   strings.TrimSpace(query.Get("season")),
		Query:    strings.TrimSpace(query.Get("q")),
	}

	if raw := query.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "featured must be a boolean").
				WithDetails(map[string]any{"field": "featured"})
		}
		filters.IsFeatured = &featured
	}

	for _, bound := range []struct {
		key  string
		dest **decimal.Decimal
	}{
		{"price_min", &filters.PriceMin},
		{"price_max", &filters.PriceMax},
	} {
		raw := query.Get(bound.key)
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil || value.IsNegative() {
			return catalog.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price bound must be a non-negative number").
				WithDetails(map[string]any{"field": bound.key})
		}
		*bound.dest = &value
	}

	sort := catalog.SortOrder(query.Get("sort"))
	switch sort {
	case "", catalog.SortNewest:
		sort = catalog.SortNewest
	case catalog.SortPriceAsc, catalog.SortPriceDesc, catalog.SortTopRated:
	default:
		return catalog.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort order").
			WithDetails(map[string]any{"field": "sort"})
	}

	return catalog.ListInput{
		Filters: filters,
		Sort:    sort,
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: query.Get("cursor"),
		},
	}, nil
}

type createProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	Origin       string          `json:"origin"`
	Season       string          `json:"season"`
	Category     string          `json:"category" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	CountInStock int             `json:"count_in_stock" validate:"min=0"`
	IsFeatured   bool            `json:"is_featured"`
	Tags         []string        `json:"tags"`
}

func (req createProductRequest) toInput() catalog.CreateProductInput {
	return catalog.CreateProductInput{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Image:        req.Image,
		Origin:       req.Origin,
		Season:       req.Season,
		Category:     strings.TrimSpace(req.Category),
		Price:        req.Price,
		CountInStock: req.CountInStock,
		IsFeatured:   req.IsFeatured,
		Tags:         req.Tags,
	}
}

// CreateProduct handles admin listing creation.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Image        *string          `json:"image,omitempty"`
	Origin       *string          `json:"origin,omitempty"`
	Season       *string          `json:"season,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	CountInStock *int             `json:"count_in_stock,omitempty" validate:"omitempty,min=0"`
	IsFeatured   *bool            `json:"is_featured,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
}

// UpdateProduct applies a partial admin edit to a listing.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, catalog.UpdateProductInput{
			Name:         payload.Name,
			Description:  payload.Description,
			Image:        payload.Image,
			Origin:       payload.Origin,
			Season:       payload.Season,
			Category:     payload.Category,
			Price:        payload.Price,
			CountInStock: payload.CountInStock,
			IsFeatured:   payload.IsFeatured,
			Tags:         payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a listing.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
