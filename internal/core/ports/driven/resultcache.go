package driven

import (
	"context"
	"time"
)

// ResultCacheStats summarizes the disk-backed result cache.
type ResultCacheStats struct {
	TotalEntries   int   `json:"total_entries"`
	ValidEntries   int   `json:"valid_entries"`
	ExpiredEntries int   `json:"expired_entries"`
	SizeBytes      int64 `json:"size_bytes"`
}

// ResultCache persists serialized query results across processes, keyed by a
// stable hash of the call parameters. Expired entries are never returned.
type ResultCache interface {
	// Get returns the cached payload for key, or ok=false on a miss or
	// expired entry.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)

	// Set stores payload under key with the given TTL, replacing any
	// previous entry.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Delete removes one entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Purge removes entries: all of them, or only expired ones. Returns
	// the number removed.
	Purge(ctx context.Context, expiredOnly bool) (int, error)

	Stats(ctx context.Context) (ResultCacheStats, error)

	Close() error
}
