package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowexec/node/clock"
	"github.com/flowexec/node/flow"
)

func TestManager_RegisterIsIdempotent(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(c, 4)
	id := flow.NewFlowID()

	f1 := m.Register(id)
	f2 := m.Register(id)
	require.Same(t, f1, f2)

	got, ok := m.Fiber(id)
	require.True(t, ok)
	require.Same(t, f1, got)
}

func TestManager_SessionBindingSurjection(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(c, 4)
	flowID := flow.NewFlowID()
	s1, s2 := flow.NewSessionID(), flow.NewSessionID()

	m.AddSessionBinding(flowID, s1)
	m.AddSessionBinding(flowID, s2)

	got1, ok := m.FlowForSession(s1)
	require.True(t, ok)
	require.Equal(t, flowID, got1)

	m.RemoveSessionBindings([]flow.SessionID{s1, s2})

	_, ok = m.FlowForSession(s1)
	require.False(t, ok)
	_, ok = m.FlowForSession(s2)
	require.False(t, ok)
}

func TestManager_FlowTimeoutFires(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(c, 4)
	defer m.Wheel().Stop()
	flowID := flow.NewFlowID()
	f := m.Register(flowID)

	m.ScheduleFlowTimeout(flowID, c.Now().Add(time.Second))
	c.Advance(time.Second)

	done := make(chan struct{})
	var ev flow.Event
	var ok bool
	require.Eventually(t, func() bool {
		select {
		case <-done:
			return false
		default:
		}
		nextDone := make(chan struct{})
		close(nextDone) // non-blocking probe: Next must not block if mailbox is empty
		ev, ok = f.Next(nextDone)
		return ok
	}, time.Second, time.Millisecond)
	require.True(t, ok)
	timeout, isTimeout := ev.(flow.Timeout)
	require.True(t, isTimeout, "%T", ev)
	require.Equal(t, flowID, timeout.FlowID)
}

func TestManager_CancelFlowTimeoutPreventsFiring(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(c, 4)
	defer m.Wheel().Stop()
	flowID := flow.NewFlowID()
	m.Register(flowID)

	m.ScheduleFlowTimeout(flowID, c.Now().Add(time.Second))
	m.CancelFlowTimeout(flowID)
	c.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)

	f, _ := m.Fiber(flowID)
	done := make(chan struct{})
	close(done)
	_, ok := f.Next(done)
	require.False(t, ok, "a cancelled timeout must never schedule flow.Timeout")
}

func TestManager_RemoveFlowTerminatesFiberAndClearsState(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(c, 4)
	defer m.Wheel().Stop()
	flowID := flow.NewFlowID()
	f := m.Register(flowID)
	m.SignalFlowHasStarted(flowID)
	m.ScheduleFlowTimeout(flowID, c.Now().Add(time.Minute))

	m.RemoveFlow(flowID, flow.RemovalNormal, nil)

	_, ok := m.Fiber(flowID)
	require.False(t, ok)
	require.False(t, m.HasStarted(flowID))
	require.Equal(t, f.State().String(), "Terminated")
}

func TestManager_WorkerPoolBoundsConcurrency(t *testing.T) {
	c := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(c, 1)

	require.NoError(t, m.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Acquire(ctx)
	require.Error(t, err, "acquiring a second slot beyond the pool size must block until released")

	m.Release()
	require.NoError(t, m.Acquire(context.Background()))
}
