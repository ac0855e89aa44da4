// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Shelf lifecycle metrics. shelf is "read" or "wish".
	IncEntryCreated(shelf string)
	IncEntryUpdated(shelf string)
	IncEntryDeleted(shelf string)
	IncEntryShifted()

	// Catalog search metrics
	IncSearchCacheHit()
	IncSearchCacheMiss()
	ObserveSearchDuration(duration time.Duration)
}
