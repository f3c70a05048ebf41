// Package flow defines the data model shared by the flow scheduler and the
// Action Executor: flow and session identifiers, checkpoints, the closed
// Event union fed back into a fiber, and the deduplication primitives used to
// make peer-visible sends safe to replay after a crash.
package flow

import (
	"fmt"

	"github.com/google/uuid"
)

// FlowID opaquely identifies one flow instance, globally unique across the
// network of nodes.
type FlowID struct{ id uuid.UUID }

// NewFlowID allocates a fresh, random FlowID.
func NewFlowID() FlowID { return FlowID{id: uuid.New()} }

// FlowIDFromUUID wraps an existing UUID as a FlowID, e.g. when rehydrating
// one from a checkpoint.
func FlowIDFromUUID(id uuid.UUID) FlowID { return FlowID{id: id} }

// String implements fmt.Stringer.
func (f FlowID) String() string { return f.id.String() }

// IsZero reports whether f is the zero value (never assigned).
func (f FlowID) IsZero() bool { return f.id == uuid.Nil }

// SessionID identifies one end of a bidirectional session between two flows
// hosted on two nodes.
type SessionID struct{ id uuid.UUID }

// NewSessionID allocates a fresh, random SessionID.
func NewSessionID() SessionID { return SessionID{id: uuid.New()} }

// SessionIDFromUUID wraps an existing UUID as a SessionID.
func SessionIDFromUUID(id uuid.UUID) SessionID { return SessionID{id: id} }

// String implements fmt.Stringer.
func (s SessionID) String() string { return s.id.String() }

// ProgrammerError represents a condition the spec classifies as a
// programmer error: a violated invariant that the caller should never be
// able to trigger via normal operation (e.g. double-opening a transaction
// on a fiber). Unlike storage/messaging errors, these are never expected to
// be retried by the state machine layer; they are surfaced immediately.
type ProgrammerError struct {
	Op  string
	Msg string
}

func (e *ProgrammerError) Error() string {
	return fmt.Sprintf("flow: programmer error in %s: %s", e.Op, e.Msg)
}

// NewProgrammerError constructs a ProgrammerError for operation op.
func NewProgrammerError(op, msg string) *ProgrammerError {
	return &ProgrammerError{Op: op, Msg: msg}
}
