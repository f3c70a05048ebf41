package executor

import (
	"context"

	"github.com/flowexec/node/action"
	"github.com/flowexec/node/fiber"
)

// persistCheckpoint stores or updates a.Bytes at a.FlowID within the
// fiber's bound transaction, per spec.md §4.1, recording the checkpointing
// rate meter, byte reservoir, and (at most once per second) bandwidth
// histogram sample.
func (e *Executor) persistCheckpoint(ctx context.Context, f *fiber.Fiber, a action.PersistCheckpoint) error {
	tx, ok := fiberTx(f)
	if !ok || tx == nil {
		return newProgrammerError("PersistCheckpoint", "no transaction bound to fiber")
	}

	var err error
	if a.IsUpdate {
		err = e.Storage.UpdateCheckpoint(ctx, tx, a.FlowID, a.Bytes)
	} else {
		err = e.Storage.AddCheckpoint(ctx, tx, a.FlowID, a.Bytes)
	}
	if err != nil {
		return err
	}

	if e.Metrics != nil {
		e.Metrics.RecordCheckpoint(int64(len(a.Bytes)))
	}
	return nil
}

// removeCheckpoint deletes the checkpoint at a.FlowID within the fiber's
// bound transaction.
func (e *Executor) removeCheckpoint(ctx context.Context, f *fiber.Fiber, a action.RemoveCheckpoint) error {
	tx, ok := fiberTx(f)
	if !ok || tx == nil {
		return newProgrammerError("RemoveCheckpoint", "no transaction bound to fiber")
	}
	return e.Storage.RemoveCheckpoint(ctx, tx, a.FlowID)
}
