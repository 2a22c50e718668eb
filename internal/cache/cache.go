// Package cache stores finished result bundles keyed by filter signature.
// The cache is a pure optimization: every failure mode (missing file,
// corrupt JSON, expired entry, unwritable directory) degrades to a miss or
// a logged warning, never an error for the caller.
package cache

import (
	"time"

	"github.com/cedarstats/regstats/internal/regstats"
)

const (
	// DefaultTTL is how long a cached bundle stays fresh.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxEntries is how many cache files the retention sweep keeps.
	DefaultMaxEntries = 20
)

// Entry is one cached bundle with its storage timestamp.
type Entry struct {
	Key      string          `json:"key"`
	StoredAt time.Time       `json:"stored_at"`
	Bundle   regstats.Bundle `json:"bundle"`
}
