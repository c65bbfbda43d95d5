package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mangohub/mangostore-backend/api/responses"
	"github.com/mangohub/mangostore-backend/api/validators"
	cartsvc "github.com/mangohub/mangostore-backend/internal/cart"
	"github.com/mangohub/mangostore-backend/pkg/db/models"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/logger"
)

// guestSessionHeader identifies an anonymous cart. The client generates the
// value and sends it on every guest-cart call.
const guestSessionHeader = "X-Cart-Session"

// GuestCartStore persists anonymous cart snapshots between requests.
type GuestCartStore interface {
	Load(ctx context.Context, sessionID string) ([]cartsvc.Item, error)
	Save(ctx context.Context, sessionID string, items []cartsvc.Item) error
	Drop(ctx context.Context, sessionID string) error
}

// guestProductLoader is the slice of the catalog the guest cart needs.
type guestProductLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type guestCartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type guestCartView struct {
	SessionID  string          `json:"session_id"`
	Items      []guestCartLine `json:"items"`
	TotalItems int             `json:"total_items"`
	ItemsPrice decimal.Decimal `json:"items_price"`
}

func newGuestCartView(sessionID string, state *cartsvc.State) guestCartView {
	items := state.Items()
	lines := make([]guestCartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, guestCartLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return guestCartView{
		SessionID:  sessionID,
		Items:      lines,
		TotalItems: state.TotalItems(),
		ItemsPrice: state.ItemsPrice(),
	}
}

func guestSession(r *http.Request) (string, error) {
	sessionID := strings.TrimSpace(r.Header.Get(guestSessionHeader))
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, guestSessionHeader+" header is required")
	}
	return sessionID, nil
}

// GetGuestCart returns the snapshot for an anonymous session. An unknown
// session is an empty cart.
func GetGuestCart(store GuestCartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := guestSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := store.Load(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state := cartsvc.NewState(sessionID, nil, items)
		responses.WriteSuccess(w, newGuestCartView(sessionID, state))
	}
}

type guestCartActionRequest struct {
	Action    string     `json:"action" validate:"required,oneof=add remove update_quantity clear"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Quantity  *int       `json:"quantity,omitempty"`
}

// ApplyGuestCartAction runs one cart mutation for an anonymous session and
// persists the resulting snapshot. Added lines are priced from the live
// catalog, never from the request.
func ApplyGuestCartAction(store GuestCartStore, products guestProductLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := guestSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload guestCartActionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := buildGuestCartAction(r.Context(), products, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := store.Load(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state := cartsvc.NewState(sessionID, store, items)
		if err := state.Apply(r.Context(), action); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newGuestCartView(sessionID, state))
	}
}

func buildGuestCartAction(ctx context.Context, products guestProductLoader, payload guestCartActionRequest) (cartsvc.Action, error) {
	switch payload.Action {
	case "add":
		if payload.ProductID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required for add")
		}
		product, err := products.GetProduct(ctx, *payload.ProductID)
		if err != nil {
			return nil, err
		}
		return cartsvc.AddItem{Item: cartsvc.Item{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			UnitPrice: product.Price,
		}}, nil
	case "remove":
		if payload.ProductID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required for remove")
		}
		return cartsvc.RemoveItem{ProductID: *payload.ProductID}, nil
	case "update_quantity":
		if payload.ProductID == nil || payload.Quantity == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id and quantity are required for update_quantity")
		}
		return cartsvc.UpdateQuantity{ProductID: *payload.ProductID, Quantity: *payload.Quantity}, nil
	case "clear":
		return cartsvc.Clear{}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown cart action")
}

// DropGuestCart deletes the stored snapshot for an anonymous session.
func DropGuestCart(store GuestCartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := guestSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Drop(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"session_id": sessionID})
	}
}
