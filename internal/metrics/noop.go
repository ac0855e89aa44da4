package metrics

import "time"

// Noop is a Recorder that discards all events.
type Noop struct{}

// NewNoop creates a no-op Recorder.
func NewNoop() *Noop { return &Noop{} }

// IncEntryCreated is a no-op.
func (n *Noop) IncEntryCreated(shelf string) {}

// IncEntryUpdated is a no-op.
func (n *Noop) IncEntryUpdated(shelf string) {}

// IncEntryDeleted is a no-op.
func (n *Noop) IncEntryDeleted(shelf string) {}

// IncEntryShifted is a no-op.
func (n *Noop) IncEntryShifted() {}

// IncSearchCacheHit is a no-op.
func (n *Noop) IncSearchCacheHit() {}

// IncSearchCacheMiss is a no-op.
func (n *Noop) IncSearchCacheMiss() {}

// ObserveSearchDuration is a no-op.
func (n *Noop) ObserveSearchDuration(duration time.Duration) {}
