// Package metrics keeps in-process counters about uploads.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// window is how many processing times are kept per encoding.
const window = 100

// UploadMetrics tracks upload outcomes and processing times per encoding.
type UploadMetrics struct {
	mu          sync.RWMutex
	times       map[string][]time.Duration
	accepted    map[string]int64
	rejected    map[string]int64
	byCode      map[string]int64
	lastUpdated time.Time
}

// EncodingStats summarises the uploads of one encoding.
type EncodingStats struct {
	Encoding    string        `json:"encoding"`
	Accepted    int64         `json:"accepted"`
	Rejected    int64         `json:"rejected"`
	SuccessRate float64       `json:"successRate"`
	AverageTime time.Duration `json:"averageTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	P95Time     time.Duration `json:"p95Time"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Accepted    int64                    `json:"accepted"`
	Rejected    int64                    `json:"rejected"`
	ByErrorCode map[string]int64         `json:"byErrorCode"`
	ByEncoding  map[string]EncodingStats `json:"byEncoding"`
	LastUpdated time.Time                `json:"lastUpdated"`
}

// NewUploadMetrics creates an empty collector.
func NewUploadMetrics() *UploadMetrics {
	return &UploadMetrics{
		times:       make(map[string][]time.Duration),
		accepted:    make(map[string]int64),
		rejected:    make(map[string]int64),
		byCode:      make(map[string]int64),
		lastUpdated: time.Now(),
	}
}

// Record adds one upload. errorCode is empty for accepted uploads.
func (m *UploadMetrics) Record(encoding string, duration time.Duration, errorCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.times[encoding] = append(m.times[encoding], duration)
	if len(m.times[encoding]) > window {
		m.times[encoding] = m.times[encoding][1:]
	}

	if errorCode == "" {
		m.accepted[encoding]++
	} else {
		m.rejected[encoding]++
		m.byCode[errorCode]++
	}
	m.lastUpdated = time.Now()
}

// Snapshot returns a copy of the current counters.
func (m *UploadMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{
		ByErrorCode: make(map[string]int64, len(m.byCode)),
		ByEncoding:  make(map[string]EncodingStats, len(m.times)),
		LastUpdated: m.lastUpdated,
	}
	for code, n := range m.byCode {
		s.ByErrorCode[code] = n
	}
	for encoding, times := range m.times {
		stats := EncodingStats{
			Encoding: encoding,
			Accepted: m.accepted[encoding],
			Rejected: m.rejected[encoding],
		}
		if total := stats.Accepted + stats.Rejected; total > 0 {
			stats.SuccessRate = float64(stats.Accepted) / float64(total)
		}
		if len(times) > 0 {
			sorted := make([]time.Duration, len(times))
			copy(sorted, times)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

			var sum time.Duration
			for _, t := range sorted {
				sum += t
			}
			stats.AverageTime = sum / time.Duration(len(sorted))
			stats.MinTime = sorted[0]
			stats.MaxTime = sorted[len(sorted)-1]
			stats.P95Time = percentile(sorted, 0.95)
		}
		s.ByEncoding[encoding] = stats
		s.Accepted += stats.Accepted
		s.Rejected += stats.Rejected
	}
	return s
}

// percentile picks the nearest-rank value from an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(float64(len(sorted))*p+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
