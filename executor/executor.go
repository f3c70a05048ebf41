// Package executor implements the Action Executor (spec.md §4.1): given
// (fiber, action), it performs the action's side effects against storage,
// messaging, the scheduler, and the database, producing either an external
// effect, a scheduled Event on the fiber, or an escalated failure.
//
// Dispatch is rendered as a Go type switch over the closed action.Action
// union with a default branch that panics a ProgrammerError — the closest
// a language without sum-type exhaustiveness checking gets to "adding a
// variant must be a compile-time failure everywhere it is dispatched"
// (spec.md §9). TestExecutor_DispatchIsExhaustive in executor_test.go asserts
// every variant constructed in the action package is recognized by dispatch, so an added-but-unwired
// variant fails a test immediately rather than silently falling through.
package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flowexec/node/action"
	"github.com/flowexec/node/clock"
	"github.com/flowexec/node/dbtx"
	"github.com/flowexec/node/fiber"
	"github.com/flowexec/node/flow"
	"github.com/flowexec/node/log"
	"github.com/flowexec/node/messaging"
	"github.com/flowexec/node/metrics"
	"github.com/flowexec/node/scheduler"
	"github.com/flowexec/node/storage"
)

// ProgrammerError is returned (and, at the dispatch boundary, panicked)
// when an Action violates an invariant that should never be reachable via
// normal operation, per spec.md §7's "Programmer errors ... Fatal; surface
// immediately".
type ProgrammerError struct {
	cause error
}

func (e *ProgrammerError) Error() string { return "executor: programmer error: " + e.cause.Error() }

func (e *ProgrammerError) Unwrap() error { return e.cause }

func newProgrammerError(op, msg string) *ProgrammerError {
	return &ProgrammerError{cause: flow.NewProgrammerError(op, msg)}
}

// AsyncOperationTransitionError wraps a synchronous panic or error raised
// directly out of action.AsyncOperation.Execute, as opposed to a failure
// reported asynchronously via its result (which is delivered as a
// flow.AsyncOperationThrows Event instead).
type AsyncOperationTransitionError struct {
	cause error
}

func (e *AsyncOperationTransitionError) Error() string {
	return "executor: async operation transitioned synchronously: " + e.cause.Error()
}

func (e *AsyncOperationTransitionError) Unwrap() error { return e.cause }

// Ledger subscribes to commit notifications for a tracked transaction hash.
// The ledger/verification model itself is out of scope (spec.md §1); this
// is the narrow seam TrackTransaction dispatches through.
type Ledger interface {
	// Subscribe arms onCommit/onError for hash and returns immediately;
	// exactly one of the two callbacks fires, exactly once.
	Subscribe(ctx context.Context, hash flow.TransactionHash, onCommit func(flow.TransactionHandle), onError func(error))
}

// SoftLocks releases soft locks scoped to an optional owning UUID. The
// soft-locking subsystem itself is out of scope; this is ReleaseSoftLocks's
// seam.
type SoftLocks interface {
	Release(ctx context.Context, uuid *[16]byte) error
}

// RetryHandler re-enters the (out-of-scope) state machine from
// currentState, for RetryFlowFromSafePoint.
type RetryHandler interface {
	RetryFromSafePoint(ctx context.Context, currentState []byte) error
}

// Executor is the Action Executor: it holds every collaborator spec.md §6
// names and dispatches each action.Action to the handler that realizes its
// contract.
type Executor struct {
	DB        *sql.DB
	Storage   storage.CheckpointStorage
	Messaging messaging.Messaging
	Scheduler *scheduler.Manager
	Metrics   *metrics.CheckpointMetrics
	Ledger    Ledger
	SoftLocks SoftLocks
	Retry     RetryHandler
	Clock     clock.Clock
	Log       log.Logger
}

// New constructs an Executor. Log defaults to log.Discard{} if nil.
func New(db *sql.DB, store storage.CheckpointStorage, msg messaging.Messaging, sched *scheduler.Manager, m *metrics.CheckpointMetrics, ledger Ledger, softLocks SoftLocks, retry RetryHandler, c clock.Clock, logger log.Logger) *Executor {
	if logger == nil {
		logger = log.Discard{}
	}
	return &Executor{
		DB: db, Storage: store, Messaging: msg, Scheduler: sched,
		Metrics: m, Ledger: ledger, SoftLocks: softLocks, Retry: retry,
		Clock: c, Log: logger,
	}
}

// Execute performs act against f, the fiber it was emitted for. It is the
// single dispatch point spec.md §4.1 calls "a single total function over
// the Action union; no default fallthrough" — the Go rendition panics
// ProgrammerError instead of compile-failing, since Go has no sealed-union
// exhaustiveness check.
func (e *Executor) Execute(ctx context.Context, f *fiber.Fiber, act action.Action) error {
	switch a := act.(type) {
	case action.TrackTransaction:
		return e.trackTransaction(ctx, f, a)
	case action.PersistCheckpoint:
		return e.persistCheckpoint(ctx, f, a)
	case action.PersistDeduplicationFacts:
		return e.persistDeduplicationFacts(ctx, f, a)
	case action.AcknowledgeMessages:
		return e.acknowledgeMessages(ctx, f, a)
	case action.PropagateErrors:
		return e.propagateErrors(ctx, a)
	case action.ScheduleEvent:
		f.Schedule(a.Event)
		return nil
	case action.SleepUntil:
		return e.sleepUntil(f, a)
	case action.RemoveCheckpoint:
		return e.removeCheckpoint(ctx, f, a)
	case action.SendInitial:
		return e.Messaging.SendInitial(ctx, a.Destination, a.Initialise, a.DeduplicationID)
	case action.SendExisting:
		return e.Messaging.SendExisting(ctx, a.PeerParty, a.Message, a.DeduplicationID)
	case action.AddSessionBinding:
		e.Scheduler.AddSessionBinding(a.FlowID, a.SessionID)
		return nil
	case action.RemoveSessionBindings:
		e.Scheduler.RemoveSessionBindings(a.SessionIDs)
		return nil
	case action.SignalFlowHasStarted:
		e.Scheduler.SignalFlowHasStarted(a.FlowID)
		return nil
	case action.RemoveFlow:
		e.Scheduler.RemoveFlow(a.FlowID, a.RemovalReason, a.LastState)
		return nil
	case action.CreateTransaction:
		return e.createTransaction(ctx, f)
	case action.RollbackTransaction:
		return e.rollbackTransaction(f)
	case action.CommitTransaction:
		return e.commitTransaction(f)
	case action.ExecuteAsyncOperation:
		return e.executeAsyncOperation(ctx, f, a)
	case action.ReleaseSoftLocks:
		if e.SoftLocks == nil {
			return nil
		}
		return e.SoftLocks.Release(ctx, a.UUID)
	case action.RetryFlowFromSafePoint:
		if e.Retry == nil {
			return nil
		}
		return e.Retry.RetryFromSafePoint(ctx, a.CurrentState)
	case action.ScheduleFlowTimeout:
		e.Scheduler.ScheduleFlowTimeout(a.FlowID, a.At)
		return nil
	case action.CancelFlowTimeout:
		e.Scheduler.CancelFlowTimeout(a.FlowID)
		return nil
	default:
		err := newProgrammerError("Execute", fmt.Sprintf("unrecognized action variant %T", act))
		panic(err)
	}
}

// fiberTx narrows *dbtx.Context down to what executor needs to read off a
// Fiber's bound transaction, avoiding a type assertion at every call site.
func fiberTx(f *fiber.Fiber) (*dbtx.Context, bool) {
	tx, ok := f.Transaction().(*dbtx.Context)
	return tx, ok
}
