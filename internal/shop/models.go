package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	UserID      string          `json:"userId,omitempty"` // admin who created it
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Status      Status          `json:"status"` // see status.go
	CreatedAt   time.Time       `json:"createdAt"`
	Lines       []OrderLine     `json:"lines,omitempty"`
}

type OrderLine struct {
	ProductID string          `json:"productId"`
	Qty       int             `json:"quantity"`
	Product   *ProductSummary `json:"product,omitempty"`
}

// ProductSummary is the read-side slice of a product attached to an
// order line.
type ProductSummary struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// OrderItemInput is one requested line of a new order. Never persisted.
type OrderItemInput struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"quantity"`
}

// ProductSnapshot is the transaction-scoped view of a product the
// order placement path works against.
type ProductSnapshot struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}
