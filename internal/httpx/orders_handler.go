package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tokohq/go-shop-api/internal/auth"
	"github.com/tokohq/go-shop-api/internal/shop"
)

// OrderPlacer is the slice of the order service the handler needs.
type OrderPlacer interface {
	Place(ctx context.Context, userID string, items []shop.OrderItemInput, traceID string) (shop.Order, error)
	ListForUser(ctx context.Context, userID string) ([]shop.Order, error)
	Status(ctx context.Context, userID, orderID string) (shop.Status, error)
}

type OrdersHandler struct {
	Orders OrderPlacer
	Tokens *auth.Tokens
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(g chi.Router) {
		g.Use(Authenticate(h.Tokens))
		g.Post("/api/v1/orders", h.create)
		g.Get("/api/v1/orders", h.listMine)
		g.Get("/api/v1/orders/{id}/status", h.status)
	})
}

// The request body is a bare array of items, matching the public API
// contract: [{"productId": "...", "quantity": 2}, ...]
type orderItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func validateItems(items []orderItemReq) []string {
	var errs []string
	if len(items) == 0 {
		errs = append(errs, "Order must contain at least one item")
	}
	for _, it := range items {
		if _, err := uuid.Parse(it.ProductID); err != nil {
			errs = append(errs, "Invalid product ID")
		}
		if it.Quantity < 1 {
			errs = append(errs, "Quantity must be at least 1")
		}
	}
	return errs
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var items []orderItemReq
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validateItems(items); len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, "Validation failed", errs...)
		return
	}

	in := make([]shop.OrderItemInput, 0, len(items))
	for _, it := range items {
		in = append(in, shop.OrderItemInput{ProductID: it.ProductID, Qty: it.Quantity})
	}

	claims := auth.ClaimsFrom(r.Context())
	order, err := h.Orders.Place(r.Context(), claims.UserID, in, middleware.GetReqID(r.Context()))
	if err != nil {
		var notFound *shop.ProductNotFoundError
		var noStock *shop.InsufficientStockError
		switch {
		case errors.As(err, &notFound), errors.As(err, &noStock), errors.Is(err, shop.ErrEmptyOrder):
			writeFailure(w, http.StatusBadRequest, err.Error())
		default:
			writeFailure(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, "Order placed successfully", order)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	orders, err := h.Orders.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "Orders fetched successfully", orders)
}

func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	status, err := h.Orders.Status(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shop.ErrOrderNotFound) {
			writeFailure(w, http.StatusNotFound, "Order not found")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "Order status fetched", map[string]shop.Status{"status": status})
}
