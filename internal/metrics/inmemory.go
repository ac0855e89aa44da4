package metrics

import (
	"sync"
	"time"
)

// InMemory is a Recorder backed by counters in process memory.
// Suitable for tests and the /metrics debug endpoint.
type InMemory struct {
	mu sync.Mutex

	entriesCreated map[string]int64
	entriesUpdated map[string]int64
	entriesDeleted map[string]int64
	entriesShifted int64

	searchCacheHits   int64
	searchCacheMisses int64
	searchCount       int64
	searchTotalTime   time.Duration
}

// Snapshot is a point-in-time copy of the collected counters.
type Snapshot struct {
	EntriesCreated    map[string]int64 `json:"entries_created"`
	EntriesUpdated    map[string]int64 `json:"entries_updated"`
	EntriesDeleted    map[string]int64 `json:"entries_deleted"`
	EntriesShifted    int64            `json:"entries_shifted"`
	SearchCacheHits   int64            `json:"search_cache_hits"`
	SearchCacheMisses int64            `json:"search_cache_misses"`
	SearchCount       int64            `json:"search_count"`
	SearchAvgMillis   float64          `json:"search_avg_ms"`
}

// NewInMemory creates an in-memory Recorder.
func NewInMemory() *InMemory {
	return &InMemory{
		entriesCreated: make(map[string]int64),
		entriesUpdated: make(map[string]int64),
		entriesDeleted: make(map[string]int64),
	}
}

func (m *InMemory) IncEntryCreated(shelf string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entriesCreated[shelf]++
}

func (m *InMemory) IncEntryUpdated(shelf string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entriesUpdated[shelf]++
}

func (m *InMemory) IncEntryDeleted(shelf string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entriesDeleted[shelf]++
}

func (m *InMemory) IncEntryShifted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entriesShifted++
}

func (m *InMemory) IncSearchCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCacheHits++
}

func (m *InMemory) IncSearchCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCacheMisses++
}

func (m *InMemory) ObserveSearchDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCount++
	m.searchTotalTime += duration
}

// Snapshot returns a copy of the current counters.
func (m *InMemory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		EntriesCreated:    copyCounts(m.entriesCreated),
		EntriesUpdated:    copyCounts(m.entriesUpdated),
		EntriesDeleted:    copyCounts(m.entriesDeleted),
		EntriesShifted:    m.entriesShifted,
		SearchCacheHits:   m.searchCacheHits,
		SearchCacheMisses: m.searchCacheMisses,
		SearchCount:       m.searchCount,
	}
	if m.searchCount > 0 {
		snap.SearchAvgMillis = float64(m.searchTotalTime.Microseconds()) / float64(m.searchCount) / 1000
	}
	return snap
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
