package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokohq/go-shop-api/internal/auth"
	"github.com/tokohq/go-shop-api/internal/shop"
)

const testProductID = "7f1c2a9e-6f1b-4a44-9a77-0cbd3f3a6a01"

type fakeOrderPlacer struct {
	placeErr   error
	lastUserID string
	lastItems  []shop.OrderItemInput
	orders     []shop.Order
}

func (f *fakeOrderPlacer) Place(_ context.Context, userID string, items []shop.OrderItemInput, _ string) (shop.Order, error) {
	if f.placeErr != nil {
		return shop.Order{}, f.placeErr
	}
	f.lastUserID = userID
	f.lastItems = items
	return shop.Order{
		ID:         "order-1",
		UserID:     userID,
		Status:     shop.StatusPending,
		TotalPrice: decimal.RequireFromString("30.00"),
		Lines:      []shop.OrderLine{{ProductID: testProductID, Qty: 3}},
	}, nil
}

func (f *fakeOrderPlacer) ListForUser(_ context.Context, userID string) ([]shop.Order, error) {
	return f.orders, nil
}

func (f *fakeOrderPlacer) Status(_ context.Context, userID, orderID string) (shop.Status, error) {
	if orderID != "order-1" {
		return "", shop.ErrOrderNotFound
	}
	return shop.StatusPending, nil
}

func newOrdersRouter(placer *fakeOrderPlacer, tokens *auth.Tokens) http.Handler {
	r := NewRouter()
	(&OrdersHandler{Orders: placer, Tokens: tokens}).Register(r)
	return r
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()
	tokens := testTokens()
	authz := bearerFor(t, tokens, "user-1", "alice", shop.RoleUser)

	post := func(router http.Handler, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("requires authentication", func(t *testing.T) {
		router := newOrdersRouter(&fakeOrderPlacer{}, tokens)
		rec := post(router, `[{"productId":"`+testProductID+`","quantity":1}]`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("places the order for the token's user", func(t *testing.T) {
		placer := &fakeOrderPlacer{}
		router := newOrdersRouter(placer, tokens)
		rec := post(router, `[{"productId":"`+testProductID+`","quantity":3}]`, authz)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, "Order placed successfully", resp.Message)
		assert.Equal(t, "user-1", placer.lastUserID)
		require.Len(t, placer.lastItems, 1)
		assert.Equal(t, shop.OrderItemInput{ProductID: testProductID, Qty: 3}, placer.lastItems[0])
	})

	t.Run("rejects malformed items before the service", func(t *testing.T) {
		placer := &fakeOrderPlacer{placeErr: assert.AnError}
		router := newOrdersRouter(placer, tokens)

		rec := post(router, `[]`, authz)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Errors, "Order must contain at least one item")

		rec = post(router, `[{"productId":"nope","quantity":0}]`, authz)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Contains(t, resp.Errors, "Invalid product ID")
		assert.Contains(t, resp.Errors, "Quantity must be at least 1")
	})

	t.Run("insufficient stock surfaces as 400 with the product name", func(t *testing.T) {
		placer := &fakeOrderPlacer{placeErr: &shop.InsufficientStockError{
			ProductID: testProductID, Name: "Keyboard", Requested: 9, Available: 2,
		}}
		router := newOrdersRouter(placer, tokens)
		rec := post(router, `[{"productId":"`+testProductID+`","quantity":9}]`, authz)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "insufficient stock for product: Keyboard", resp.Message)
	})

	t.Run("unknown product surfaces as 400", func(t *testing.T) {
		placer := &fakeOrderPlacer{placeErr: &shop.ProductNotFoundError{ProductID: testProductID}}
		router := newOrdersRouter(placer, tokens)
		rec := post(router, `[{"productId":"`+testProductID+`","quantity":1}]`, authz)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Message, "not found")
	})

	t.Run("storage failure is an opaque 500", func(t *testing.T) {
		placer := &fakeOrderPlacer{placeErr: assert.AnError}
		router := newOrdersRouter(placer, tokens)
		rec := post(router, `[{"productId":"`+testProductID+`","quantity":1}]`, authz)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Server error", decodeEnvelope(t, rec).Message)
	})
}

func TestListAndStatus(t *testing.T) {
	t.Parallel()
	tokens := testTokens()
	authz := bearerFor(t, tokens, "user-1", "alice", shop.RoleUser)

	get := func(router http.Handler, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", authz)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("lists orders", func(t *testing.T) {
		placer := &fakeOrderPlacer{orders: []shop.Order{{ID: "order-1", UserID: "user-1"}}}
		router := newOrdersRouter(placer, tokens)
		rec := get(router, "/api/v1/orders")

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "Orders fetched successfully", resp.Message)
	})

	t.Run("status of an own order", func(t *testing.T) {
		router := newOrdersRouter(&fakeOrderPlacer{}, tokens)
		rec := get(router, "/api/v1/orders/order-1/status")

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeEnvelope(t, rec)
		obj, ok := resp.Object.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "PENDING", obj["status"])
	})

	t.Run("status of someone else's order is 404", func(t *testing.T) {
		router := newOrdersRouter(&fakeOrderPlacer{}, tokens)
		rec := get(router, "/api/v1/orders/other-order/status")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
