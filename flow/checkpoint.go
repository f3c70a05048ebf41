package flow

// Checkpoint is an opaque durable snapshot of a suspended flow's state. The
// Executor never interprets its contents — serialization is handled by an
// external framework (out of scope, per the spec) — it only ever stores,
// updates, or removes the bytes keyed by FlowID.
type Checkpoint struct {
	FlowID FlowID
	Bytes  []byte
}

// RemovalReason enumerates why a flow was removed from the running set.
// The exact taxonomy belongs to the (out-of-scope) state machine; this is
// the minimal closed set the Executor's RemoveFlow action needs to thread
// through to the scheduler.
type RemovalReason int

const (
	// RemovalNormal means the flow completed its work successfully.
	RemovalNormal RemovalReason = iota
	// RemovalSoftFailure means the flow failed in a way the state machine
	// judged recoverable, but elected not to retry (e.g. exhausted retries).
	RemovalSoftFailure
	// RemovalHardFailure means the flow failed fatally and was hospitalized.
	RemovalHardFailure
	// RemovalKilled means an operator or node shutdown force-removed the flow.
	RemovalKilled
)

func (r RemovalReason) String() string {
	switch r {
	case RemovalNormal:
		return "Normal"
	case RemovalSoftFailure:
		return "SoftFailure"
	case RemovalHardFailure:
		return "HardFailure"
	case RemovalKilled:
		return "Killed"
	default:
		return "Unknown"
	}
}

// TransactionHash opaquely identifies a ledger transaction being tracked for
// commit notification. The ledger/verification model itself is out of
// scope; the Executor only needs a comparable, loggable handle.
type TransactionHash string

// TransactionHandle is delivered back to the fiber on commit; its contents
// are produced by the (out-of-scope) ledger layer.
type TransactionHandle struct {
	Hash TransactionHash
}

// ErrorMessage is one error to propagate to a peer session, identified by
// ErrorID so that the deterministic DeduplicationId derivation in
// DeduplicationIDFromError can be applied.
type ErrorMessage struct {
	ErrorID string
	Payload []byte
}
