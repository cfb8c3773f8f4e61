package health

import (
	"context"

	"github.com/corvusec/newsdex/internal/cache"
)

// CacheInspector exposes cache state without forcing a refresh.
type CacheInspector interface {
	Stats() cache.Stats
}

// Pinger checks connectivity of an optional backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}
