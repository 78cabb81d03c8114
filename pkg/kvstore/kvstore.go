package kvstore

import (
	"context"
)

// Store is a durable key/value store for client preference state.
// Implementations must treat a missing key as (value "", found false)
// rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
