package shop

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/tokohq/go-shop-api/internal/kafka"
	"github.com/tokohq/go-shop-api/internal/redisx"
)

// OrderStore is the persistence surface the service needs. The
// postgres implementation runs PlaceOrder as one transaction.
type OrderStore interface {
	PlaceOrder(ctx context.Context, userID string, items []OrderItemInput) (Order, error)
	OrdersForUser(ctx context.Context, userID string) ([]Order, error)
	OrderStatus(ctx context.Context, userID, orderID string) (Status, error)
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// OrderService fronts the order placement engine and the read path.
// Kafka and Redis are best-effort side channels; the database is the
// source of truth.
type OrderService struct {
	Store    OrderStore
	Producer EventPublisher
	Redis    *redis.Client
	Service  string
}

func (s *OrderService) Place(ctx context.Context, userID string, items []OrderItemInput, traceID string) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}

	order, err := s.Store.PlaceOrder(ctx, userID, items)
	if err != nil {
		return Order{}, err
	}

	s.cacheStatus(ctx, order)
	s.publishPlaced(order, traceID)
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.Store.OrdersForUser(ctx, userID)
}

// Status serves the order status from the Redis cache when fresh,
// falling back to the store and refilling the cache on a miss.
func (s *OrderService) Status(ctx context.Context, userID, orderID string) (Status, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, userID, orderID)
	if s.Redis != nil {
		if v, err := s.Redis.Get(ctx, key).Result(); err == nil && v != "" {
			return Status(v), nil
		}
	}

	status, err := s.Store.OrderStatus(ctx, userID, orderID)
	if err != nil {
		return "", err
	}
	if s.Redis != nil {
		_ = s.Redis.Set(ctx, key, string(status), redisx.TTLStatusCache).Err()
	}
	return status, nil
}

func (s *OrderService) cacheStatus(ctx context.Context, order Order) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, order.UserID, order.ID)
	if err := s.Redis.Set(ctx, key, string(order.Status), redisx.TTLStatusCache).Err(); err != nil {
		log.Printf("cache order status: %v", err)
	}
}

func (s *OrderService) publishPlaced(order Order, traceID string) {
	if s.Producer == nil {
		return
	}
	items := make([]LineQty, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, LineQty{ProductID: l.ProductID, Qty: l.Qty})
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		TraceID:       traceID,
		CorrelationID: order.ID,
		Payload: kafkax.MustMarshal(OrderPlacedPayload{
			OrderID:    order.ID,
			UserID:     order.UserID,
			Status:     order.Status,
			Items:      items,
			TotalPrice: order.TotalPrice,
		}),
	}
	s.Producer.Publish(PartitionKey(order.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
