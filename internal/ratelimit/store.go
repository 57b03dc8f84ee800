package ratelimit

import (
	"context"
	"time"
)

// Store keeps sliding-window request counters.
type Store interface {
	// Record adds a request for key at the current time and returns how many
	// requests key made within the last window, this one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
