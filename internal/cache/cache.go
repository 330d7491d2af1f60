package cache

import (
	"context"
	"time"
)

// Cache is a small JSON-over-key/value facade used for short-lived
// lookups such as rate card entries. A nil Cache is a valid no-op.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
}
