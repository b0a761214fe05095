package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/race-photo-sync/internal/metrics"
)

// Sync sources used as metric labels
const (
	SourceStorage = "storage"
	SourceQueue   = "queue"
	SourceFile    = "file"
	SourceCapture = "capture"
)

// SyncMetrics tracks statistics about one sync pass
type SyncMetrics struct {
	mu        sync.RWMutex
	Source    string
	StartTime time.Time
	Duration  time.Duration
	Total     int
	Created   int
	Updated   int
	Discarded int
	Pushed    int
	Errors    int
}

// NewSyncMetrics creates a new metrics tracker
func NewSyncMetrics(source string) *SyncMetrics {
	return &SyncMetrics{
		Source:    source,
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *SyncMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.Total = 0
	m.Created = 0
	m.Updated = 0
	m.Discarded = 0
	m.Pushed = 0
	m.Errors = 0
}

// RecordCreated increments created photo count
func (m *SyncMetrics) RecordCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created++
}

// RecordUpdated increments updated photo count
func (m *SyncMetrics) RecordUpdated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updated++
}

// RecordDiscarded increments discarded detection count
func (m *SyncMetrics) RecordDiscarded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Discarded++
}

// RecordPushed increments pushed photo pair count
func (m *SyncMetrics) RecordPushed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pushed++
}

// RecordError increments error count
func (m *SyncMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// SetTotal records the number of items seen in the pass
func (m *SyncMetrics) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Total = total
}

// Finish stamps the pass duration and publishes the counters to Prometheus
func (m *SyncMetrics) Finish() {
	m.mu.Lock()
	m.Duration = time.Since(m.StartTime)
	source, created, updated, discarded, errs, duration := m.Source, m.Created, m.Updated, m.Discarded, m.Errors, m.Duration
	m.mu.Unlock()

	metrics.RecordSyncPass(source, created, updated, discarded, errs, duration.Seconds())
}

// String returns a formatted string representation of metrics
func (m *SyncMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"SyncMetrics{Source=%s, Total=%d, Created=%d, Updated=%d, Discarded=%d, Pushed=%d, Errors=%d, Duration=%v}",
		m.Source,
		m.Total,
		m.Created,
		m.Updated,
		m.Discarded,
		m.Pushed,
		m.Errors,
		m.Duration,
	)
}
