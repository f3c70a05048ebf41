package fiber

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowexec/node/flow"
)

func TestFiber_MailboxIsFIFO(t *testing.T) {
	f := New(flow.NewFlowID())
	f.Schedule(flow.Wakeup{})
	f.Schedule(flow.Error{Err: nil})

	done := make(chan struct{})
	e1, ok := f.Next(done)
	require.True(t, ok)
	require.IsType(t, flow.Wakeup{}, e1)

	e2, ok := f.Next(done)
	require.True(t, ok)
	require.IsType(t, flow.Error{}, e2)
}

func TestFiber_NextUnblocksOnDone(t *testing.T) {
	f := New(flow.NewFlowID())
	done := make(chan struct{})
	close(done)

	_, ok := f.Next(done)
	require.False(t, ok)
}

func TestFiber_BindTransactionRejectsDoubleOpen(t *testing.T) {
	f := New(flow.NewFlowID())
	require.NoError(t, f.BindTransaction("tx-1"))

	err := f.BindTransaction("tx-2")
	require.Error(t, err)
	require.IsType(t, &flow.ProgrammerError{}, err)

	require.Equal(t, "tx-1", f.Transaction())
}

func TestFiber_UnbindTransactionClearsBinding(t *testing.T) {
	f := New(flow.NewFlowID())
	require.NoError(t, f.BindTransaction("tx-1"))
	f.UnbindTransaction()
	require.Nil(t, f.Transaction())
	require.NoError(t, f.BindTransaction("tx-2"))
}

func TestFiber_SleepLifecycle(t *testing.T) {
	f := New(flow.NewFlowID())
	cancelled := false
	f.BeginSleep(func() { cancelled = true })
	require.Equal(t, Sleeping, f.State())

	f.CancelSleep()
	require.True(t, cancelled)

	f.EndSleep()
	require.Equal(t, Running, f.State())
}

func TestFiber_TerminateCancelsPendingSleep(t *testing.T) {
	f := New(flow.NewFlowID())
	cancelled := false
	f.BeginSleep(func() { cancelled = true })

	f.Terminate()
	require.True(t, cancelled)
	require.Equal(t, Terminated, f.State())
}
