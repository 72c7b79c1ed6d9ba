package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokohq/go-shop-api/internal/shop"
)

type OrderStore struct{ DB *pgxpool.Pool }

// PlaceOrder runs the whole placement as one transaction: every stock
// row is locked, checked and decremented, then the order and its lines
// are written. Any failure rolls the lot back, so no stock moves
// without a matching order.
func (s *OrderStore) PlaceOrder(ctx context.Context, userID string, items []shop.OrderItemInput) (shop.Order, error) {
	if len(items) == 0 {
		return shop.Order{}, shop.ErrEmptyOrder
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return shop.Order{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	agg, err := shop.BuildAggregate(ctx, &txLedger{tx: tx}, items)
	if err != nil {
		return shop.Order{}, err
	}

	order := shop.Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: fmt.Sprintf("Order for %d items", len(agg.Lines)),
		TotalPrice:  agg.Total,
		Status:      shop.StatusPending,
		CreatedAt:   time.Now().UTC(),
		Lines:       agg.Lines,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, description, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.UserID, order.Description, order.TotalPrice, order.Status, order.CreatedAt)
	if err != nil {
		return shop.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range order.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, product_id, qty)
			VALUES ($1, $2, $3)`,
			order.ID, l.ProductID, l.Qty,
		); err != nil {
			return shop.Order{}, fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return shop.Order{}, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

// txLedger is the transaction-scoped inventory accessor. FOR UPDATE
// keeps the check-then-decrement atomic against concurrent orders for
// the same product.
type txLedger struct{ tx pgx.Tx }

func (l *txLedger) ProductForUpdate(ctx context.Context, productID string) (shop.ProductSnapshot, error) {
	var p shop.ProductSnapshot
	err := l.tx.QueryRow(ctx, `
		SELECT id, name, price, stock FROM products WHERE id=$1 FOR UPDATE`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return shop.ProductSnapshot{}, &shop.ProductNotFoundError{ProductID: productID}
		}
		return shop.ProductSnapshot{}, fmt.Errorf("lock product: %w", err)
	}
	return p, nil
}

func (l *txLedger) DecrementStock(ctx context.Context, productID string, qty int) error {
	// The stock >= qty guard is redundant with the locked read but keeps
	// the CHECK constraint from ever firing.
	ct, err := l.tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id=$1 AND stock >= $2`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("decrement stock: product %s changed underneath the lock", productID)
	}
	return nil
}

// OrdersForUser returns the user's orders newest-first, each with its
// lines and product summaries.
func (s *OrderStore) OrdersForUser(ctx context.Context, userID string) ([]shop.Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, user_id, description, total_price, status, created_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []shop.Order
	byID := map[string]int{}
	ids := make([]string, 0)
	for rows.Next() {
		var o shop.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Description, &o.TotalPrice, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		byID[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lineRows, err := s.DB.Query(ctx, `
		SELECT ol.order_id, ol.product_id, ol.qty, p.name, p.price, p.category
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID string
		var line shop.OrderLine
		var ps shop.ProductSummary
		if err := lineRows.Scan(&orderID, &line.ProductID, &line.Qty, &ps.Name, &ps.Price, &ps.Category); err != nil {
			return nil, err
		}
		line.Product = &ps
		i := byID[orderID]
		out[i].Lines = append(out[i].Lines, line)
	}
	return out, lineRows.Err()
}

// OrderStatus reads one order's status, scoped to its owner.
func (s *OrderStore) OrderStatus(ctx context.Context, userID, orderID string) (shop.Status, error) {
	var status string
	err := s.DB.QueryRow(ctx,
		`SELECT status FROM orders WHERE id=$1 AND user_id=$2`,
		orderID, userID,
	).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return "", shop.ErrOrderNotFound
		}
		return "", fmt.Errorf("order status: %w", err)
	}
	return shop.Status(status), nil
}
