// Package scheduler implements spec.md §6's StateMachineManagerInternal
// collaborator and the fiber registry/worker pool spec.md §5 describes:
// session bindings as a SessionID -> FlowID surjection, flow timeouts armed
// on a shared fiber.TimerWheel, and a bounded worker pool so advancing
// thousands of fibers never costs one OS thread each. The worker-pool
// bound is grounded on golang.org/x/sync/semaphore, the concurrency
// primitive the rest of the pack (not the teacher itself) reaches for when
// it needs to cap parallelism without a fixed-size goroutine farm.
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/flowexec/node/clock"
	"github.com/flowexec/node/fiber"
	"github.com/flowexec/node/flow"
)

// Manager owns every live Fiber, the SessionId->FlowId binding surjection,
// and the shared TimerWheel used for both SleepUntil wakeups and flow
// timeouts.
type Manager struct {
	wheel *fiber.TimerWheel
	sem   *semaphore.Weighted

	mu       sync.Mutex
	fibers   map[flow.FlowID]*fiber.Fiber
	bindings map[flow.SessionID]flow.FlowID
	timeouts map[flow.FlowID]fiber.Cancel
	started  map[flow.FlowID]bool
}

// NewManager constructs a Manager whose worker pool allows at most
// maxConcurrent fibers to be actively running at once, driven by c.
func NewManager(c clock.Clock, maxConcurrent int64) *Manager {
	return &Manager{
		wheel:    fiber.NewTimerWheel(c),
		sem:      semaphore.NewWeighted(maxConcurrent),
		fibers:   make(map[flow.FlowID]*fiber.Fiber),
		bindings: make(map[flow.SessionID]flow.FlowID),
		timeouts: make(map[flow.FlowID]fiber.Cancel),
		started:  make(map[flow.FlowID]bool),
	}
}

// Wheel returns the shared TimerWheel, for the executor's SleepUntil
// handler to register wakeups on.
func (m *Manager) Wheel() *fiber.TimerWheel { return m.wheel }

// Register creates and tracks a new Fiber for flowID, or returns the
// existing one if already registered.
func (m *Manager) Register(flowID flow.FlowID) *fiber.Fiber {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.fibers[flowID]; ok {
		return f
	}
	f := fiber.New(flowID)
	m.fibers[flowID] = f
	return f
}

// Fiber returns the Fiber registered for flowID, if any.
func (m *Manager) Fiber(flowID flow.FlowID) (*fiber.Fiber, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fibers[flowID]
	return f, ok
}

// AddSessionBinding records that sessionID belongs to flowID, per spec.md
// §3's SessionId->FlowId surjection invariant.
func (m *Manager) AddSessionBinding(flowID flow.FlowID, sessionID flow.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[sessionID] = flowID
}

// RemoveSessionBindings atomically removes every binding for the given
// session ids as a single set operation, matching spec.md §3's
// "unbinding removes entries atomically in a set".
func (m *Manager) RemoveSessionBindings(sessionIDs []flow.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range sessionIDs {
		delete(m.bindings, id)
	}
}

// FlowForSession resolves the bound FlowID for sessionID, if any.
func (m *Manager) FlowForSession(sessionID flow.SessionID) (flow.FlowID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.bindings[sessionID]
	return id, ok
}

// SignalFlowHasStarted marks flowID as having begun executing.
func (m *Manager) SignalFlowHasStarted(flowID flow.FlowID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started[flowID] = true
}

// HasStarted reports whether SignalFlowHasStarted has been called for
// flowID.
func (m *Manager) HasStarted(flowID flow.FlowID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started[flowID]
}

// RemoveFlow retires flowID: cancels any armed timeout, terminates its
// Fiber, and drops it from the running set.
func (m *Manager) RemoveFlow(flowID flow.FlowID, reason flow.RemovalReason, lastState []byte) {
	m.mu.Lock()
	if cancel, ok := m.timeouts[flowID]; ok {
		cancel()
		delete(m.timeouts, flowID)
	}
	f := m.fibers[flowID]
	delete(m.fibers, flowID)
	delete(m.started, flowID)
	m.mu.Unlock()

	if f != nil {
		f.Terminate()
	}
	_ = reason
	_ = lastState
}

// ScheduleFlowTimeout arms a timeout for flowID; firing schedules
// flow.Timeout{FlowID: flowID} on the flow's Fiber. Re-arming replaces any
// previously armed timeout.
func (m *Manager) ScheduleFlowTimeout(flowID flow.FlowID, at time.Time) {
	m.mu.Lock()
	if cancel, ok := m.timeouts[flowID]; ok {
		cancel()
	}
	f := m.fibers[flowID]
	m.mu.Unlock()
	if f == nil {
		return
	}

	cancel := m.wheel.Schedule(at, func() {
		f.Schedule(flow.Timeout{FlowID: flowID})
	})

	m.mu.Lock()
	m.timeouts[flowID] = cancel
	m.mu.Unlock()
}

// CancelFlowTimeout cancels a previously armed timeout for flowID, a no-op
// if none is armed.
func (m *Manager) CancelFlowTimeout(flowID flow.FlowID) {
	m.mu.Lock()
	cancel, ok := m.timeouts[flowID]
	delete(m.timeouts, flowID)
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

// Acquire blocks until a worker slot is available for running one fiber's
// action, bounding total concurrency to the pool size passed to
// NewManager.
func (m *Manager) Acquire(ctx context.Context) error {
	return m.sem.Acquire(ctx, 1)
}

// Release returns a worker slot acquired via Acquire.
func (m *Manager) Release() {
	m.sem.Release(1)
}
