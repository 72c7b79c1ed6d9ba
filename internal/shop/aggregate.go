package shop

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockView is a transaction-scoped window onto product stock. The
// read and the decrement for one product must be isolated from
// concurrently committing orders; the postgres implementation locks
// the row on read.
type StockView interface {
	ProductForUpdate(ctx context.Context, productID string) (ProductSnapshot, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
}

// OrderAggregate is the priced set of lines plus total computed for a
// request, prior to persistence.
type OrderAggregate struct {
	Lines []OrderLine
	Total decimal.Decimal
}

// BuildAggregate walks the requested items in order, validating each
// against the stock view and decrementing as it goes. The first
// failure aborts the whole request; the caller's transaction rollback
// undoes any decrements already applied. Repeated product IDs are
// merged into one line, so a request can never produce two lines for
// the same product.
func BuildAggregate(ctx context.Context, view StockView, items []OrderItemInput) (OrderAggregate, error) {
	agg := OrderAggregate{Total: decimal.Zero}
	for _, it := range mergeItems(items) {
		p, err := view.ProductForUpdate(ctx, it.ProductID)
		if err != nil {
			return OrderAggregate{}, err
		}
		if it.Qty > p.Stock {
			return OrderAggregate{}, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Qty,
				Available: p.Stock,
			}
		}
		if err := view.DecrementStock(ctx, it.ProductID, it.Qty); err != nil {
			return OrderAggregate{}, err
		}
		agg.Total = agg.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
		agg.Lines = append(agg.Lines, OrderLine{ProductID: it.ProductID, Qty: it.Qty})
	}
	return agg, nil
}

// mergeItems sums quantities per product, keeping first-occurrence
// order.
func mergeItems(items []OrderItemInput) []OrderItemInput {
	merged := make([]OrderItemInput, 0, len(items))
	at := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := at[it.ProductID]; ok {
			merged[i].Qty += it.Qty
			continue
		}
		at[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}
