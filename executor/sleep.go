package executor

import (
	"github.com/flowexec/node/action"
	"github.com/flowexec/node/fiber"
	"github.com/flowexec/node/flow"
)

// sleepUntil suspends f until a.Time, clamped to max(0, a.Time-now) so a
// deadline already in the past resumes promptly instead of erroring, per
// spec.md §4.1. The suspension is registered on the scheduler's shared
// TimerWheel rather than blocking f's carrier goroutine, which is what
// lets a later flow teardown cancel the pending sleep with a single call
// (spec.md §9's sleep-interruptibility open question).
func (e *Executor) sleepUntil(f *fiber.Fiber, a action.SleepUntil) error {
	when := a.Time
	if now := e.Clock.Now(); when.Before(now) {
		when = now
	}

	cancel := e.Scheduler.Wheel().Schedule(when, func() {
		f.EndSleep()
		f.Schedule(flow.Wakeup{})
	})
	f.BeginSleep(cancel)
	return nil
}
