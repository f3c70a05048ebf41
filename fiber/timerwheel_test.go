package fiber

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowexec/node/clock"
)

func TestTimerWheel_FiresAtDeadline(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w := NewTimerWheel(c)
	defer w.Stop()

	var mu sync.Mutex
	fired := false
	w.Schedule(c.Now().Add(time.Second), func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})

	c.Advance(time.Second)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired
	}, time.Second, time.Millisecond)
}

func TestTimerWheel_CancelPreventsFiring(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w := NewTimerWheel(c)
	defer w.Stop()

	var mu sync.Mutex
	fired := false
	cancel := w.Schedule(c.Now().Add(time.Second), func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})
	cancel()

	c.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.False(t, fired)
}

func TestTimerWheel_OrdersMultipleEntries(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w := NewTimerWheel(c)
	defer w.Stop()

	var mu sync.Mutex
	var order []int

	w.Schedule(c.Now().Add(3*time.Second), func() {
		mu.Lock()
		order = append(order, 3)
		mu.Unlock()
	})
	w.Schedule(c.Now().Add(1*time.Second), func() {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
	})
	w.Schedule(c.Now().Add(2*time.Second), func() {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
	})

	c.Advance(3 * time.Second)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3}, order)
}
