package metrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/kdeps/audiodepot/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadMetricsSnapshot(t *testing.T) {
	t.Parallel()

	m := metrics.NewUploadMetrics()
	m.Record("raw", 10*time.Millisecond, "")
	m.Record("raw", 30*time.Millisecond, "")
	m.Record("raw", 20*time.Millisecond, "INVALID_AUDIO")
	m.Record("multipart", 5*time.Millisecond, "INVALID_AUDIO")

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Accepted)
	assert.Equal(t, int64(2), s.Rejected)
	assert.Equal(t, map[string]int64{"INVALID_AUDIO": 2}, s.ByErrorCode)

	raw, ok := s.ByEncoding["raw"]
	require.True(t, ok)
	assert.Equal(t, int64(2), raw.Accepted)
	assert.Equal(t, int64(1), raw.Rejected)
	assert.InDelta(t, 2.0/3.0, raw.SuccessRate, 1e-9)
	assert.Equal(t, 20*time.Millisecond, raw.AverageTime)
	assert.Equal(t, 10*time.Millisecond, raw.MinTime)
	assert.Equal(t, 30*time.Millisecond, raw.MaxTime)
	assert.Equal(t, 30*time.Millisecond, raw.P95Time)

	multi := s.ByEncoding["multipart"]
	assert.Zero(t, multi.SuccessRate)
}

func TestUploadMetricsWindow(t *testing.T) {
	t.Parallel()

	m := metrics.NewUploadMetrics()
	m.Record("raw", time.Hour, "")
	for i := 0; i < 100; i++ {
		m.Record("raw", time.Millisecond, "")
	}

	s := m.Snapshot()
	assert.Equal(t, int64(101), s.Accepted)
	assert.Equal(t, time.Millisecond, s.ByEncoding["raw"].MaxTime)
}

func TestUploadMetricsConcurrent(t *testing.T) {
	t.Parallel()

	m := metrics.NewUploadMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record("multipart", time.Millisecond, "")
			_ = m.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(20), m.Snapshot().Accepted)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	m := metrics.NewUploadMetrics()
	m.Record("raw", time.Millisecond, "NOT_FOUND")
	s := m.Snapshot()
	s.ByErrorCode["NOT_FOUND"] = 99
	assert.Equal(t, int64(1), m.Snapshot().ByErrorCode["NOT_FOUND"])
}
