package redisx

import "time"

const (
	// Idempotent order creation: idem:order:create:{business_id}:{key} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s:%s"

	// Storefront cache: storefront:{business_id} -> JSON storefront
	KeyStorefront = "storefront:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Low stock products of a business: set lowstock:{business_id} of product ids
	KeyLowStock = "lowstock:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStorefront  = 60 * time.Second
	TTLDedup       = 48 * time.Hour
)
