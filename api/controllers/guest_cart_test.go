package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/mangohub/mangostore-backend/internal/cart"
	"github.com/mangohub/mangostore-backend/pkg/db/models"
)

type stubGuestCartStore struct {
	snapshots map[string][]cartsvc.Item
}

func newStubGuestCartStore() *stubGuestCartStore {
	return &stubGuestCartStore{snapshots: map[string][]cartsvc.Item{}}
}

func (s *stubGuestCartStore) Load(_ context.Context, sessionID string) ([]cartsvc.Item, error) {
	return s.snapshots[sessionID], nil
}

func (s *stubGuestCartStore) Save(_ context.Context, sessionID string, items []cartsvc.Item) error {
	s.snapshots[sessionID] = items
	return nil
}

func (s *stubGuestCartStore) Drop(_ context.Context, sessionID string) error {
	delete(s.snapshots, sessionID)
	return nil
}

type guestCartEnvelope struct {
	Data struct {
		SessionID string `json:"session_id"`
		Items     []struct {
			ProductID uuid.UUID `json:"product_id"`
			Name      string    `json:"name"`
			UnitPrice string    `json:"unit_price"`
			Quantity  int       `json:"quantity"`
		} `json:"items"`
		TotalItems int    `json:"total_items"`
		ItemsPrice string `json:"items_price"`
	} `json:"data"`
}

func decodeGuestCart(t *testing.T, resp *httptest.ResponseRecorder) guestCartEnvelope {
	t.Helper()
	var envelope guestCartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func TestGetGuestCartRequiresSessionHeader(t *testing.T) {
	handler := GetGuestCart(newStubGuestCartStore(), nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/guest-cart", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetGuestCartReturnsTotals(t *testing.T) {
	store := newStubGuestCartStore()
	store.snapshots["sess-1"] = []cartsvc.Item{
		{ProductID: uuid.New(), Name: "Sindhri", UnitPrice: decimal.RequireFromString("10.99"), Quantity: 2},
		{ProductID: uuid.New(), Name: "Chaunsa", UnitPrice: decimal.RequireFromString("12.99"), Quantity: 1},
	}
	handler := GetGuestCart(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/guest-cart", nil)
	req.Header.Set("X-Cart-Session", "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	envelope := decodeGuestCart(t, resp)
	if envelope.Data.TotalItems != 3 {
		t.Fatalf("total items = %d", envelope.Data.TotalItems)
	}
	if envelope.Data.ItemsPrice != "34.97" {
		t.Fatalf("items price = %s", envelope.Data.ItemsPrice)
	}
}

func TestApplyGuestCartActionAddPricesFromCatalog(t *testing.T) {
	store := newStubGuestCartStore()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  "Sindhri",
		Price: decimal.RequireFromString("10.99"),
	}
	handler := ApplyGuestCartAction(store, &stubCatalogService{product: product}, nil)

	body := `{"action":"add","product_id":"` + product.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guest-cart/actions", strings.NewReader(body))
	req.Header.Set("X-Cart-Session", "sess-2")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	saved := store.snapshots["sess-2"]
	if len(saved) != 1 {
		t.Fatalf("snapshot lines = %d", len(saved))
	}
	if saved[0].Quantity != 1 {
		t.Fatalf("quantity = %d", saved[0].Quantity)
	}
	if !saved[0].UnitPrice.Equal(product.Price) {
		t.Fatalf("unit price = %s, want catalog price %s", saved[0].UnitPrice, product.Price)
	}
}

func TestApplyGuestCartActionAddBumpsExistingLine(t *testing.T) {
	store := newStubGuestCartStore()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  "Sindhri",
		Price: decimal.RequireFromString("10.99"),
	}
	store.snapshots["sess-3"] = []cartsvc.Item{
		{ProductID: product.ID, Name: product.Name, UnitPrice: product.Price, Quantity: 2},
	}
	handler := ApplyGuestCartAction(store, &stubCatalogService{product: product}, nil)

	body := `{"action":"add","product_id":"` + product.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guest-cart/actions", strings.NewReader(body))
	req.Header.Set("X-Cart-Session", "sess-3")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if qty := store.snapshots["sess-3"][0].Quantity; qty != 3 {
		t.Fatalf("quantity = %d, want 3", qty)
	}
}

func TestApplyGuestCartActionClampsQuantity(t *testing.T) {
	store := newStubGuestCartStore()
	productID := uuid.New()
	store.snapshots["sess-4"] = []cartsvc.Item{
		{ProductID: productID, Name: "Sindhri", UnitPrice: decimal.RequireFromString("10.99"), Quantity: 5},
	}
	handler := ApplyGuestCartAction(store, &stubCatalogService{}, nil)

	body := `{"action":"update_quantity","product_id":"` + productID.String() + `","quantity":-2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guest-cart/actions", strings.NewReader(body))
	req.Header.Set("X-Cart-Session", "sess-4")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if qty := store.snapshots["sess-4"][0].Quantity; qty != 1 {
		t.Fatalf("quantity = %d, want clamp to 1", qty)
	}
}

func TestApplyGuestCartActionRejectsUnknownAction(t *testing.T) {
	handler := ApplyGuestCartAction(newStubGuestCartStore(), &stubCatalogService{}, nil)

	body := `{"action":"merge"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/guest-cart/actions", strings.NewReader(body))
	req.Header.Set("X-Cart-Session", "sess-5")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDropGuestCartDeletesSnapshot(t *testing.T) {
	store := newStubGuestCartStore()
	store.snapshots["sess-6"] = []cartsvc.Item{
		{ProductID: uuid.New(), Name: "Sindhri", UnitPrice: decimal.RequireFromString("10.99"), Quantity: 1},
	}
	handler := DropGuestCart(store, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/guest-cart", nil)
	req.Header.Set("X-Cart-Session", "sess-6")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if _, ok := store.snapshots["sess-6"]; ok {
		t.Fatal("snapshot not dropped")
	}
}
