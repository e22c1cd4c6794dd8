package aggregation

import (
	"time"

	domrepo "TickPull/internal/domain/repository"
)

// BucketStart maps a timestamp to the start of the bucket it belongs to:
// floor(ms / interval_ms) * interval_ms, reinterpreted as an instant.
// Buckets are aligned to epoch zero, not to calendar days in any local
// timezone.
func BucketStart(ts time.Time, tf domrepo.Timeframe) time.Time {
	interval := tf.Minutes() * 60_000
	if interval <= 0 {
		return ts
	}
	ms := ts.UnixMilli()
	return time.UnixMilli(floorDiv(ms, interval) * interval).UTC()
}

// floorDiv divides rounding toward negative infinity, so pre-epoch
// timestamps still bucket to the boundary at or before them.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
