package api

import (
	"fmt"
	"time"
)

// staleWhileRevalidate lets shared caches serve a stale chart for a day
// while they refetch.
const staleWhileRevalidate = 24 * time.Hour

// Default Cache-Control lifetimes.
const (
	DefaultChartMaxAge = 4 * time.Hour
	DefaultDataMaxAge  = time.Hour
)

// CacheNoStore is used for responses that must never be cached.
const CacheNoStore = "no-store"

// publicCache builds a Cache-Control value for a shared, revalidating cache.
func publicCache(maxAge time.Duration) string {
	secs := int(maxAge.Seconds())
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		secs, secs, int(staleWhileRevalidate.Seconds()))
}
