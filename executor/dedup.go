package executor

import (
	"context"

	"github.com/flowexec/node/action"
	"github.com/flowexec/node/fiber"
)

// persistDeduplicationFacts runs InsideDatabaseTransaction for every
// handler inside the fiber's bound transaction. Any handler error aborts
// the transition; none of it is swallowed, per spec.md §4.1.
func (e *Executor) persistDeduplicationFacts(ctx context.Context, f *fiber.Fiber, a action.PersistDeduplicationFacts) error {
	if _, ok := fiberTx(f); !ok {
		return newProgrammerError("PersistDeduplicationFacts", "no transaction bound to fiber")
	}
	for _, h := range a.Handlers {
		if err := h.InsideDatabaseTransaction(ctx); err != nil {
			return err
		}
	}
	return nil
}

// acknowledgeMessages runs AfterDatabaseTransaction for every handler,
// swallowing and logging each individual failure at info level rather than
// failing the transition — per spec.md §4.1, a broker-ack failure after a
// successful commit only risks redelivery, which the dedup table already
// tolerates.
func (e *Executor) acknowledgeMessages(ctx context.Context, _ *fiber.Fiber, a action.AcknowledgeMessages) error {
	for _, h := range a.Handlers {
		if err := h.AfterDatabaseTransaction(ctx); err != nil {
			e.Log.WithError(err).Info("acknowledge message handler failed, redelivery may occur")
		}
	}
	return nil
}
