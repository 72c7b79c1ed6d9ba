package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tokohq/go-shop-api/internal/auth"
	"github.com/tokohq/go-shop-api/internal/shop"
	"github.com/tokohq/go-shop-api/internal/store"
)

// ProductCatalog is the slice of the product store the handler needs.
type ProductCatalog interface {
	Create(ctx context.Context, p *shop.Product) error
	Update(ctx context.Context, id string, change store.ProductChangeSet) (shop.Product, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (shop.Product, error)
	List(ctx context.Context, params store.ListParams) ([]shop.Product, int, error)
}

type ProductsHandler struct {
	Products ProductCatalog
	Tokens   *auth.Tokens
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/api/v1/products", h.list)
	r.Get("/api/v1/products/{id}", h.get)
	r.Group(func(g chi.Router) {
		g.Use(Authenticate(h.Tokens), RequireAdmin)
		g.Post("/api/v1/products", h.create)
		g.Put("/api/v1/products/{id}", h.update)
		g.Delete("/api/v1/products/{id}", h.delete)
	})
}

type createProductReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock"`
	Category    string          `json:"category"`
}

func (req createProductReq) validate() []string {
	var errs []string
	if len(req.Name) < 3 {
		errs = append(errs, "Name must be at least 3 characters")
	}
	if len(req.Description) < 10 {
		errs = append(errs, "Description must be at least 10 characters")
	}
	if !req.Price.IsPositive() {
		errs = append(errs, "Price must be greater than 0")
	}
	if req.Stock == nil || *req.Stock < 0 {
		errs = append(errs, "Stock must be a non-negative integer")
	}
	if len(req.Category) < 3 {
		errs = append(errs, "Category is required")
	}
	return errs
}

type updateProductReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
}

func (req updateProductReq) validate() []string {
	var errs []string
	if req.Name != nil && len(*req.Name) < 3 {
		errs = append(errs, "Name must be at least 3 characters")
	}
	if req.Description != nil && len(*req.Description) < 10 {
		errs = append(errs, "Description must be at least 10 characters")
	}
	if req.Price != nil && !req.Price.IsPositive() {
		errs = append(errs, "Price must be greater than 0")
	}
	if req.Stock != nil && *req.Stock < 0 {
		errs = append(errs, "Stock must be a non-negative integer")
	}
	if req.Category != nil && len(*req.Category) < 3 {
		errs = append(errs, "Category is required")
	}
	return errs
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, "Validation failed", errs...)
		return
	}

	claims := auth.ClaimsFrom(r.Context())
	product := shop.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       *req.Stock,
		Category:    req.Category,
		UserID:      claims.UserID,
	}
	if err := h.Products.Create(r.Context(), &product); err != nil {
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, "Validation failed", errs...)
		return
	}

	updated, err := h.Products.Update(r.Context(), chi.URLParam(r, "id"), store.ProductChangeSet{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, shop.ErrProductNotFound) {
			writeFailure(w, http.StatusNotFound, "Product not found")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, shop.ErrProductNotFound) {
			writeFailure(w, http.StatusNotFound, "Product not found")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	products, total, err := h.Products.List(r.Context(), store.ListParams{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writePaged(w, "Products fetched successfully", products, page, limit, total)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, shop.ErrProductNotFound) {
			writeFailure(w, http.StatusNotFound, "Product not found")
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeSuccess(w, http.StatusOK, "Product fetched successfully", product)
}
