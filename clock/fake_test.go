package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFake_AdvanceFiresDueTimers(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	ch, stop := c.NewTimer(5 * time.Second)
	defer stop()

	c.Advance(4 * time.Second)
	select {
	case <-ch:
		t.Fatal("timer fired before its deadline elapsed")
	default:
	}

	c.Advance(1 * time.Second)
	select {
	case fired := <-ch:
		require.Equal(t, start.Add(5*time.Second), fired)
	default:
		t.Fatal("timer did not fire once its deadline elapsed")
	}
}

func TestFake_StopPreventsFiring(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	ch, stop := c.NewTimer(time.Second)
	require.True(t, stop())

	c.Advance(2 * time.Second)
	select {
	case <-ch:
		t.Fatal("stopped timer must not fire")
	default:
	}
}

func TestFake_NowAdvances(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)
	require.Equal(t, start, c.Now())
	c.Advance(time.Minute)
	require.Equal(t, start.Add(time.Minute), c.Now())
}
