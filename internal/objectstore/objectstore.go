// Package objectstore defines the bucket-scoped key/value blob store that
// the cache and the rate limiter share.
package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Store reads and writes opaque blobs in one bucket.
//
// Implementations must be safe for concurrent use. Writes are
// last-write-wins; no transactional guarantees are assumed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
