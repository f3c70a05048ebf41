package executor

import (
	"context"

	"github.com/flowexec/node/dbtx"
	"github.com/flowexec/node/fiber"
)

// createTransaction opens a new database transaction and binds it to f.
// Fails with ProgrammerError if a transaction is already bound, per
// spec.md §3's "at most one database transaction bound to a fiber at a
// time" invariant.
func (e *Executor) createTransaction(ctx context.Context, f *fiber.Fiber) error {
	if f.Transaction() != nil {
		return newProgrammerError("CreateTransaction", "transaction already bound to fiber")
	}
	tx, err := dbtx.Begin(ctx, e.DB)
	if err != nil {
		return err
	}
	return f.BindTransaction(tx)
}

// rollbackTransaction closes f's bound transaction, rolling it back.
// Idempotent against no transaction being bound.
func (e *Executor) rollbackTransaction(f *fiber.Fiber) error {
	tx, ok := fiberTx(f)
	if !ok || tx == nil {
		return nil
	}
	f.UnbindTransaction()
	return tx.Rollback()
}

// commitTransaction commits f's bound transaction. On every exit path the
// transaction is unbound; if the commit fails, dbtx.Context.Commit chains
// any subsequent close failure as a suppressed error onto the commit
// failure rather than letting it mask the original cause (spec.md §9).
func (e *Executor) commitTransaction(f *fiber.Fiber) error {
	tx, ok := fiberTx(f)
	if !ok || tx == nil {
		return newProgrammerError("CommitTransaction", "no transaction bound to fiber")
	}
	f.UnbindTransaction()
	return tx.Commit()
}
