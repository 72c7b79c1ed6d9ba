package statusfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/tokohq/go-shop-api/internal/kafka"
	"github.com/tokohq/go-shop-api/internal/redisx"
	"github.com/tokohq/go-shop-api/internal/shop"
)

// Service keeps the Redis order-status cache warm from the order event
// stream, so status reads stay cheap while the database remains the
// source of truth.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderPlaced is wired as the consumer handler.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != shop.EventOrderPlaced {
		return nil // ignore
	}

	// dedup on event_id so redeliveries are no-ops
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[shop.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, p.UserID, p.OrderID)
	if err := s.Redis.Set(ctx, key, string(p.Status), redisx.TTLStatusCache).Err(); err != nil {
		return err
	}

	log.Printf("order status cached: order=%s user=%s status=%s", p.OrderID, p.UserID, p.Status)
	return nil
}
