package fiber

import (
	"container/heap"
	"sync"
	"time"

	"github.com/flowexec/node/clock"
)

// timerEntry is one scheduled wakeup. cancelled is checked after popping
// off the heap rather than removed in place, since container/heap has no
// O(log n) removal-by-identity without also tracking each entry's heap
// index — the teacher's timerHeap doesn't need cancellation at all (loop
// timers run to completion), so this module adds the cancelled flag to
// support spec.md §9's cancellable-sleep redesign without inventing an
// indexed heap from scratch.
type timerEntry struct {
	when      time.Time
	fire      func()
	cancelled bool
}

// timerHeap is a min-heap of timerEntry ordered by when, structurally
// identical to eventloop/loop.go's timerHeap.
type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)         { *h = append(*h, x.(*timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// TimerWheel is a single central min-heap of pending wakeups shared across
// every fiber, grounded on eventloop/loop.go's per-loop timerHeap but
// hoisted out to one instance per scheduler so suspended fibers don't each
// need their own wake-driving goroutine.
type TimerWheel struct {
	clock clock.Clock

	mu      sync.Mutex
	heap    timerHeap
	wake    chan struct{}
	stop    chan struct{}
	stopped bool
}

// NewTimerWheel constructs a TimerWheel driven by c and starts its driving
// goroutine. Call Stop to release it.
func NewTimerWheel(c clock.Clock) *TimerWheel {
	w := &TimerWheel{
		clock: c,
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Cancel is returned by Schedule; calling it more than once is safe.
type Cancel func()

// Schedule arranges for fire to be called once at, or as soon as possible
// after, when. The returned Cancel prevents fire from running if called
// before the deadline elapses — the mechanism that makes SleepUntil
// cancellable, resolving spec.md §9's open question.
func (w *TimerWheel) Schedule(when time.Time, fire func()) Cancel {
	e := &timerEntry{when: when, fire: fire}

	w.mu.Lock()
	heap.Push(&w.heap, e)
	w.mu.Unlock()
	w.nudge()

	return func() {
		w.mu.Lock()
		e.cancelled = true
		w.mu.Unlock()
	}
}

func (w *TimerWheel) nudge() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *TimerWheel) run() {
	for {
		w.mu.Lock()
		var timerC <-chan time.Time
		var stopTimer func() bool
		if w.heap.Len() > 0 {
			next := w.heap[0].when
			d := next.Sub(w.clock.Now())
			if d < 0 {
				d = 0
			}
			timerC, stopTimer = w.clock.NewTimer(d)
		}
		w.mu.Unlock()

		if timerC == nil {
			select {
			case <-w.wake:
				continue
			case <-w.stop:
				return
			}
		}

		select {
		case <-timerC:
			w.fireDue()
		case <-w.wake:
			if stopTimer != nil {
				stopTimer()
			}
		case <-w.stop:
			if stopTimer != nil {
				stopTimer()
			}
			return
		}
	}
}

func (w *TimerWheel) fireDue() {
	now := w.clock.Now()
	var due []*timerEntry
	w.mu.Lock()
	for w.heap.Len() > 0 && !w.heap[0].when.After(now) {
		e := heap.Pop(&w.heap).(*timerEntry)
		if !e.cancelled {
			due = append(due, e)
		}
	}
	w.mu.Unlock()

	for _, e := range due {
		e.fire()
	}
}

// Stop halts the wheel's driving goroutine. Pending, un-fired entries are
// simply dropped.
func (w *TimerWheel) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()
	close(w.stop)
}
