package redisx

import "time"

const (
	// Cache status per order, scoped to the owner:
	// order_status:{user_id}:{order_id} -> "PENDING"
	KeyOrderStatus = "order_status:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
