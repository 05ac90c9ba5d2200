// Package cache defines the processed-event cache used by the webhook
// reconciler to short-circuit duplicate deliveries. The cache is an
// optimization only: correctness rests on the row-locked status guard in
// the ledger, so a cache miss on a duplicate is always safe.
package cache

import (
	"context"
	"time"
)

// EventCache remembers recently processed gateway event IDs.
type EventCache interface {
	// Seen reports whether the event ID was marked within its TTL.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Mark records the event ID for ttl.
	Mark(ctx context.Context, eventID string, ttl time.Duration) error
}
