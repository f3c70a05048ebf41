package fiber

import (
	"sync"

	"github.com/flowexec/node/flow"
)

// Tx is an opaque fiber-bound transaction handle. The fiber package never
// calls methods on it — only binds, returns, and unbinds it — so it is kept
// as an empty interface rather than importing the dbtx package's concrete
// Commit/Rollback surface, matching the teacher's narrow-interface habit
// (sql/log/core.go's Logger is the same shape of narrowing) taken to its
// logical extreme: the fiber doesn't need to know what a transaction is.
type Tx interface{}

// Fiber is one flow's cooperative execution context: a FIFO, single-consumer
// mailbox of flow.Event values, a lock-free lifecycle State, and at most one
// bound database transaction at a time, per spec.md §3's invariant.
type Fiber struct {
	FlowID flow.FlowID

	state *fastState

	mu      sync.Mutex
	mailbox []flow.Event
	notify  chan struct{}

	tx          Tx
	sleepCancel Cancel
}

// New constructs a Fiber for flowID, Awake and with no bound transaction.
func New(flowID flow.FlowID) *Fiber {
	return &Fiber{
		FlowID: flowID,
		state:  newFastState(Awake),
		notify: make(chan struct{}, 1),
	}
}

// State returns the fiber's current lifecycle state.
func (f *Fiber) State() State { return f.state.Load() }

// Schedule enqueues event on the mailbox, FIFO, and wakes the consuming
// goroutine if it is blocked waiting for work.
func (f *Fiber) Schedule(event flow.Event) {
	f.mu.Lock()
	f.mailbox = append(f.mailbox, event)
	f.mu.Unlock()
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available or done is closed, and returns
// it. Only one goroutine may call Next on a given Fiber at a time — the
// "single consumer" half of the mailbox contract. Next does not enforce
// this, and neither does the scheduler's worker pool, which only bounds how
// many fibers run at once.
func (f *Fiber) Next(done <-chan struct{}) (flow.Event, bool) {
	for {
		f.mu.Lock()
		if len(f.mailbox) > 0 {
			event := f.mailbox[0]
			f.mailbox = f.mailbox[1:]
			f.mu.Unlock()
			return event, true
		}
		f.mu.Unlock()

		select {
		case <-f.notify:
		case <-done:
			return nil, false
		}
	}
}

// BindTransaction binds tx to the fiber. Returns flow.NewProgrammerError if
// a transaction is already bound, per spec.md §3's invariant that at most
// one database transaction may be bound to a fiber at a time.
func (f *Fiber) BindTransaction(tx Tx) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tx != nil {
		return flow.NewProgrammerError("BindTransaction", "transaction already bound to fiber")
	}
	f.tx = tx
	return nil
}

// Transaction returns the currently bound transaction, or nil if none is
// bound.
func (f *Fiber) Transaction() Tx {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tx
}

// UnbindTransaction clears the fiber's bound transaction without closing
// it. Callers (the CommitTransaction/RollbackTransaction handlers) are
// responsible for committing or rolling back the handle themselves so that
// suppressed-exception chaining (spec.md §9) is preserved at the call
// site, not buried inside the fiber.
func (f *Fiber) UnbindTransaction() {
	f.mu.Lock()
	f.tx = nil
	f.mu.Unlock()
}

// BeginSleep transitions the fiber to Sleeping and registers cancel, which
// the executor invokes if the flow is torn down before the sleep elapses.
func (f *Fiber) BeginSleep(cancel Cancel) {
	f.mu.Lock()
	f.sleepCancel = cancel
	f.mu.Unlock()
	f.state.Store(Sleeping)
}

// EndSleep transitions the fiber back to Running and clears the registered
// cancel. The SleepUntil handler's timer callback calls it just before it
// schedules the Wakeup event.
func (f *Fiber) EndSleep() {
	f.mu.Lock()
	f.sleepCancel = nil
	f.mu.Unlock()
	f.state.Store(Running)
}

// CancelSleep cancels a pending SleepUntil suspension, if one is
// registered, and is a no-op otherwise.
func (f *Fiber) CancelSleep() {
	f.mu.Lock()
	cancel := f.sleepCancel
	f.sleepCancel = nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Terminate transitions the fiber to Terminated, releasing any pending
// sleep. After this, Schedule may still be called (e.g. a late async
// completion) but the scheduler must not hand the fiber further work.
func (f *Fiber) Terminate() {
	f.CancelSleep()
	f.state.Store(Terminated)
}
