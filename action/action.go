// Package action defines the closed Action union the Executor dispatches:
// one Go struct per variant named in the flow state machine's transition
// output, plus the AsyncOperation bridge type ExecuteAsyncOperation carries.
//
// Go has no compiler-enforced exhaustiveness check over a closed union the
// way a sealed class plus a `when` expression does. The rendition used here
// is the one the rest of this module follows throughout: an unexported
// marker method on the Action interface, so only this package can produce
// new variants, paired with a single dispatch type switch (in the executor
// package) whose default branch panics. Adding a variant without adding its
// case is then a runtime failure on the first exercised code path rather
// than a silent no-op — not as strong as a compiler error, but it is caught
// by the exhaustiveness test in executor, which enumerates every variant
// constructed here and asserts dispatch recognizes it.
package action

import (
	"context"
	"time"

	"github.com/flowexec/node/flow"
)

// Action is the closed union of every side effect the flow state machine
// may request of the Executor.
type Action interface {
	isAction()
}

// TrackTransaction subscribes to commit notifications for hash. On success
// the Executor schedules flow.TransactionCommitted on the fiber; on failure
// it schedules flow.Error. Non-blocking: arms a callback and returns.
type TrackTransaction struct {
	Hash flow.TransactionHash
}

func (TrackTransaction) isAction() {}

// PersistCheckpoint stores or updates bytes at id within the fiber's bound
// transaction. IsUpdate selects update-vs-add semantics; the add path
// enforces the store's add-once invariant.
type PersistCheckpoint struct {
	FlowID   flow.FlowID
	Bytes    []byte
	IsUpdate bool
}

func (PersistCheckpoint) isAction() {}

// PersistDeduplicationFacts runs InsideDatabaseTransaction for every handler
// inside the fiber's bound transaction. Any handler error aborts the
// transition; none of it is swallowed.
type PersistDeduplicationFacts struct {
	Handlers []flow.DeduplicationHandler
}

func (PersistDeduplicationFacts) isAction() {}

// AcknowledgeMessages runs AfterDatabaseTransaction for every handler after
// a successful commit. Every handler's error is logged at info level and
// otherwise swallowed — a broker-ack failure only risks redelivery, which
// the dedup table already tolerates, so it must never fail the transition.
type AcknowledgeMessages struct {
	Handlers []flow.DeduplicationHandler
}

func (AcknowledgeMessages) isAction() {}

// PropagateErrors sends errorMessages to sessions, skipping any session
// that is not Live. DeduplicationId for each send is derived deterministically
// from (ErrorID, session) via flow.DeduplicationIDFromError so that a crash
// mid-send followed by a replay produces byte-identical dedup ids.
type PropagateErrors struct {
	ErrorMessages []flow.ErrorMessage
	Sessions      []flow.SessionState
	SenderUUID    []byte
}

func (PropagateErrors) isAction() {}

// ScheduleEvent places event directly onto the fiber's own mailbox, FIFO,
// without touching any external system.
type ScheduleEvent struct {
	Event flow.Event
}

func (ScheduleEvent) isAction() {}

// SleepUntil suspends the fiber until Time, clamped to max(0, Time-now) by
// the Executor so a Time already in the past resumes promptly rather than
// erroring. See the fiber package's timer wheel for the cancellable
// rendition of this suspension that resolves spec.md's open question about
// interruptibility.
type SleepUntil struct {
	Time time.Time
}

func (SleepUntil) isAction() {}

// RemoveCheckpoint deletes the checkpoint at id within the fiber's bound
// transaction.
type RemoveCheckpoint struct {
	FlowID flow.FlowID
}

func (RemoveCheckpoint) isAction() {}

// SendInitial opens a new session toward destination, carrying the
// caller-supplied initialise payload, deduplicated by DeduplicationID.
type SendInitial struct {
	Destination     string
	Initialise      []byte
	DeduplicationID flow.DeduplicationID
}

func (SendInitial) isAction() {}

// SendExisting sends message on an already-Live session identified by
// peerParty, deduplicated by DeduplicationID.
type SendExisting struct {
	PeerParty       string
	Message         []byte
	DeduplicationID flow.DeduplicationID
}

func (SendExisting) isAction() {}

// AddSessionBinding delegates to the State Machine Manager: records that
// sessionID belongs to flowID. Not transactional.
type AddSessionBinding struct {
	FlowID    flow.FlowID
	SessionID flow.SessionID
}

func (AddSessionBinding) isAction() {}

// RemoveSessionBindings delegates to the State Machine Manager: drops every
// binding for the given session ids. Not transactional.
type RemoveSessionBindings struct {
	SessionIDs []flow.SessionID
}

func (RemoveSessionBindings) isAction() {}

// SignalFlowHasStarted delegates to the State Machine Manager: marks flowID
// as having begun executing, for observers waiting on flow startup.
type SignalFlowHasStarted struct {
	FlowID flow.FlowID
}

func (SignalFlowHasStarted) isAction() {}

// RemoveFlow delegates to the State Machine Manager: retires flowID from
// the running set for reason, carrying lastState for diagnostics.
type RemoveFlow struct {
	FlowID        flow.FlowID
	RemovalReason flow.RemovalReason
	LastState     []byte
}

func (RemoveFlow) isAction() {}

// CreateTransaction opens a new database transaction and binds it to the
// fiber. Fails with a programmer error if one is already bound.
type CreateTransaction struct{}

func (CreateTransaction) isAction() {}

// RollbackTransaction closes the fiber's bound transaction, rolling it
// back. Idempotent against no transaction being bound.
type RollbackTransaction struct{}

func (RollbackTransaction) isAction() {}

// CommitTransaction commits the fiber's bound transaction. The transaction
// is unbound on every exit path, success or throw; if closing after a
// failed commit also fails, the close failure is chained as a suppressed
// error rather than allowed to mask the original commit failure (spec.md
// §9's open question on close-after-commit ordering).
type CommitTransaction struct{}

func (CommitTransaction) isAction() {}

// AsyncResult is the outcome an AsyncOperation reports back through the
// channel Execute returns: exactly one of Value or Err is meaningful.
type AsyncResult struct {
	Value any
	Err   error
}

// AsyncOperation is a unit of work whose completion the fiber observes
// asynchronously. Execute itself must return promptly, handing back a
// deferred result channel that will receive exactly one AsyncResult once
// the operation finishes (success or asynchronous failure); that result
// becomes the scheduled flow.AsyncOperationCompletion or
// flow.AsyncOperationThrows Event. An error (or panic) raised by Execute
// itself — as opposed to by the deferred result it returns — is a
// synchronous throw: the executor surfaces it directly as an
// AsyncOperationTransitionError instead of delivering it as an Event,
// matching spec.md §4.1's "op.execute(...) which returns a deferred
// result" framing.
type AsyncOperation interface {
	Execute(ctx context.Context) (<-chan AsyncResult, error)
}

// ExecuteAsyncOperation runs Operation on a worker goroutine. The Executor
// returns immediately; the state machine observes completion only when the
// resulting Event is processed off the fiber's mailbox. The operation
// itself does not suspend the fiber.
type ExecuteAsyncOperation struct {
	Operation       AsyncOperation
	DeduplicationID flow.DeduplicationID
}

func (ExecuteAsyncOperation) isAction() {}

// ReleaseSoftLocks delegates to the (out-of-scope) soft-locking subsystem,
// scoped to UUID when non-nil or globally when nil.
type ReleaseSoftLocks struct {
	UUID *[16]byte
}

func (ReleaseSoftLocks) isAction() {}

// RetryFlowFromSafePoint rewinds a flow to currentState and re-enters the
// state machine from there, used after a retryable failure.
type RetryFlowFromSafePoint struct {
	CurrentState []byte
}

func (RetryFlowFromSafePoint) isAction() {}

// ScheduleFlowTimeout arms a flow-level timeout for flowID, delegated to
// the scheduler's timer wheel; firing schedules flow.Timeout on the fiber.
type ScheduleFlowTimeout struct {
	FlowID flow.FlowID
	At     time.Time
}

func (ScheduleFlowTimeout) isAction() {}

// CancelFlowTimeout cancels a previously armed flow timeout for flowID.
// A no-op if none is armed.
type CancelFlowTimeout struct {
	FlowID flow.FlowID
}

func (CancelFlowTimeout) isAction() {}
