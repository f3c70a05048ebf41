package executor

import (
	"context"
	"fmt"

	"github.com/flowexec/node/action"
	"github.com/flowexec/node/fiber"
	"github.com/flowexec/node/flow"
)

// trackTransaction subscribes to commit notifications for a.Hash via the
// Ledger collaborator. Neither path suspends the fiber: success schedules
// flow.TransactionCommitted, failure schedules flow.Error, and
// trackTransaction itself returns immediately, per spec.md §4.1's "does
// not suspend; arms a callback and returns".
func (e *Executor) trackTransaction(ctx context.Context, f *fiber.Fiber, a action.TrackTransaction) error {
	if e.Ledger == nil {
		return newProgrammerError("TrackTransaction", "no ledger collaborator configured")
	}
	e.Ledger.Subscribe(ctx, a.Hash,
		func(handle flow.TransactionHandle) { f.Schedule(flow.TransactionCommitted{Transaction: handle}) },
		func(err error) { f.Schedule(flow.Error{Err: err}) },
	)
	return nil
}

// executeAsyncOperation calls a.Operation.Execute, which must return
// promptly with a deferred-result channel. A synchronous error (or panic)
// from Execute itself is wrapped as AsyncOperationTransitionError and
// returned directly — it is not recovered locally, matching spec.md §7's
// "synchronous exceptions from execute are wrapped and raised". Once the
// deferred result arrives, it is delivered onto f's mailbox as either
// flow.AsyncOperationCompletion or flow.AsyncOperationThrows, grounded on
// go-utilpkg/eventloop's promisify.go goroutine-bridge pattern for
// shipping an off-loop result back onto the owning execution context.
func (e *Executor) executeAsyncOperation(ctx context.Context, f *fiber.Fiber, a action.ExecuteAsyncOperation) error {
	if a.Operation == nil {
		return newProgrammerError("ExecuteAsyncOperation", "nil operation")
	}

	resultCh, err := e.callExecute(ctx, a.Operation)
	if err != nil {
		return &AsyncOperationTransitionError{cause: err}
	}

	go func() {
		result := <-resultCh
		if result.Err != nil {
			f.Schedule(flow.AsyncOperationThrows{Err: result.Err})
			return
		}
		f.Schedule(flow.AsyncOperationCompletion{Result: result.Value})
	}()

	return nil
}

// callExecute invokes op.Execute, recovering a panic and reporting it the
// same way a synchronous error return is reported — both are, from the
// fiber's perspective, the operation failing to even start.
func (e *Executor) callExecute(ctx context.Context, op action.AsyncOperation) (resultCh <-chan action.AsyncResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			resultCh, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return op.Execute(ctx)
}
