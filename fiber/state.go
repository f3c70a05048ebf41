// Package fiber implements the cooperative, per-fiber scheduling model
// spec.md §5 calls for: one logical execution per flow, advancing on a
// dedicated goroutine drawn from a bounded pool, with at most one action
// active per fiber at a time. The lifecycle state machine is a lock-free
// CAS state grounded on go-utilpkg/eventloop's FastState
// (eventloop/state.go), and the central timer wheel that backs SleepUntil's
// cancellable suspension is grounded on eventloop/loop.go's timerHeap.
package fiber

import "sync/atomic"

// State is the lifecycle state of a Fiber. Unlike eventloop's LoopState,
// there is no Sleeping-via-poll state; Sleeping here means a SleepUntil
// action has suspended the fiber pending a Wakeup event from the
// TimerWheel, which is the Go rendition of spec.md §9's sleep redesign.
type State uint32

const (
	// Awake means the fiber has been created but has not yet started
	// draining its mailbox.
	Awake State = iota
	// Running means the fiber's worker goroutine is actively executing an
	// action.
	Running
	// Sleeping means the fiber is suspended on a SleepUntil action,
	// registered with the TimerWheel, pending a Wakeup event.
	Sleeping
	// Terminated means the fiber has been permanently retired (RemoveFlow)
	// and is handed no further work. Schedule still appends to its mailbox.
	Terminated
)

func (s State) String() string {
	switch s {
	case Awake:
		return "Awake"
	case Running:
		return "Running"
	case Sleeping:
		return "Sleeping"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free CAS state holder, grounded on
// eventloop/state.go's FastState: pure atomic CAS, no lock, no validation
// of transition legality beyond the CAS's own from/to check.
type fastState struct {
	v atomic.Uint32
}

func newFastState(initial State) *fastState {
	s := &fastState{}
	s.v.Store(uint32(initial))
	return s
}

func (s *fastState) Load() State { return State(s.v.Load()) }

func (s *fastState) Store(state State) { s.v.Store(uint32(state)) }

func (s *fastState) TryTransition(from, to State) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
