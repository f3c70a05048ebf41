package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowexec/node/clock"
)

func TestBandwidthHistogram_AtMostOnceSamplePerSecond(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h := NewBandwidthHistogram(c)

	require.True(t, h.MaybeSample(10))
	require.False(t, h.MaybeSample(20))
	require.False(t, h.MaybeSample(30))
	require.Equal(t, []int64{10}, h.Buckets())

	c.Advance(time.Second)
	require.True(t, h.MaybeSample(40))
	require.Equal(t, []int64{10, 40}, h.Buckets())
}

func TestBandwidthHistogram_ConcurrentSamplesWithinSameSecondAreSingular(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h := NewBandwidthHistogram(c)

	const workers = 32
	var wg sync.WaitGroup
	var took int32
	var mu sync.Mutex
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(v int64) {
			defer wg.Done()
			if h.MaybeSample(v) {
				mu.Lock()
				took++
				mu.Unlock()
			}
		}(int64(i))
	}
	wg.Wait()

	require.EqualValues(t, 1, took)
	require.Len(t, h.Buckets(), 1)
}

func TestBandwidthHistogram_EvictsBeyondMaxBuckets(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h := NewBandwidthHistogram(c)

	for i := 0; i < maxBuckets+10; i++ {
		require.True(t, h.MaybeSample(int64(i)))
		c.Advance(time.Second)
	}

	buckets := h.Buckets()
	require.Len(t, buckets, maxBuckets)
	require.Equal(t, int64(10), buckets[0])
	require.Equal(t, int64(maxBuckets+9), buckets[len(buckets)-1])
}

func TestCheckpointMetrics_RecordCheckpoint(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	sink := &recordingSink{}
	m := NewCheckpointMetrics(c, sink)

	m.RecordCheckpoint(100)
	m.RecordCheckpoint(50)

	require.EqualValues(t, 150, m.Reservoir.Sum())
	require.Contains(t, sink.names(), NameCheckpointingRate)
	require.Contains(t, sink.names(), NameCheckpointVolumeGauge)
	require.Contains(t, sink.names(), NameCheckpointVolumeHist)
}

type recordingSink struct {
	mu  sync.Mutex
	obs []string
}

func (s *recordingSink) Observe(name string, _ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = append(s.obs, name)
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.obs...)
}
