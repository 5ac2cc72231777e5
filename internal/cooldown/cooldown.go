// Package cooldown throttles notifications: once a message of a given kind
// is sent, the same kind is held back for a fixed period.
package cooldown

import (
	"context"
	"time"
)

// DefaultPeriod is the hold-back after a notification
const DefaultPeriod = 4 * time.Hour

// Store remembers when a notification key was last sent
type Store interface {
	// Allow reports whether key may be sent at now, that is whether the last
	// send is older than the cooldown period
	Allow(ctx context.Context, key string, now time.Time) (bool, error)

	// MarkSent records a send of key at now
	MarkSent(ctx context.Context, key string, now time.Time) error
}

func elapsed(last, now time.Time, period time.Duration) bool {
	return now.Sub(last) > period
}
