// Package dbtx wraps a single *sql.Tx as the ambient database transaction
// bound to a fiber, per spec.md §3/§4.1/§9: passed explicitly by reference
// rather than stashed in goroutine-local or global state, with exactly one
// bound per fiber at a time, and a Commit whose close-after-commit failure
// is chained as a suppressed error rather than allowed to mask the original
// commit result — resolving spec.md §9's open question on close ordering.
package dbtx

import (
	"context"
	"database/sql"
	"errors"
)

// Context is the fiber-bound transaction handle the executor package binds
// via fiber.Fiber.BindTransaction and the storage package's CheckpointStorage
// implementations use to scope their statements to the fiber's transaction.
type Context struct {
	tx *sql.Tx

	// closers are ancillary cleanup callbacks registered by components
	// that attach state to this transaction (e.g. a prepared statement
	// cache); they run, best-effort, after the transaction itself is
	// closed, with their errors chained the same way a close-after-commit
	// failure is.
	closers []func() error
}

// Begin opens a new transaction against db.
func Begin(ctx context.Context, db *sql.DB) (*Context, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Context{tx: tx}, nil
}

// Tx returns the underlying *sql.Tx for use by storage implementations.
func (c *Context) Tx() *sql.Tx { return c.tx }

// AddCloser registers fn to run when the Context is closed, after the
// underlying transaction itself has been committed or rolled back. Errors
// from multiple closers, and from the transaction close itself, are all
// joined rather than the first one silently discarding the rest.
func (c *Context) AddCloser(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Commit commits the underlying transaction. On every exit path — success
// or failure — the transaction (and its registered closers) are closed.
// If commit fails and closing also fails, the close failure is joined to
// the commit failure via errors.Join rather than overwriting it, so the
// original cause is never silently lost (spec.md §9).
func (c *Context) Commit() error {
	commitErr := c.tx.Commit()
	closeErr := c.runClosers()
	return errors.Join(commitErr, closeErr)
}

// Rollback rolls back the underlying transaction. Idempotent against a
// transaction that has already been committed or rolled back — sql.ErrTxDone
// is swallowed, matching spec.md §4.1's "idempotent against absence" for
// RollbackTransaction.
func (c *Context) Rollback() error {
	err := c.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		err = nil
	}
	closeErr := c.runClosers()
	return errors.Join(err, closeErr)
}

func (c *Context) runClosers() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
