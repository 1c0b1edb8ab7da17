// Package common provides shared utilities for Verdict
package common

import "time"

// Freshness TTLs for cached pipeline artifacts
const (
	FreshnessRecord     = 24 * time.Hour      // fused records refresh daily
	FreshnessReport     = 24 * time.Hour      // analysis reports track the record
	FreshnessBenchmarks = 7 * 24 * time.Hour  // synthetic curves follow industry stats
	FreshnessFXRate     = 24 * time.Hour      // daily FX fixes
	FreshnessProfile    = 30 * 24 * time.Hour // sector and listing data moves slowly
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
