// Package metadata is the local key/value store backing persisted client
// state: UI preferences and remember-me fields.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns common.ErrorNotFound
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
