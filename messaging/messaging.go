// Package messaging implements spec.md §6's FlowMessaging external
// interface: sending an initial session-opening message and sending on an
// already-Live session, each carrying a deduplication id. Inbound delivery
// and its acknowledgement are not handled here.
// The real wire transport is explicitly out of scope (spec.md §1's
// Non-goals: "the on-wire session protocol beyond what the Executor must
// preserve"); this package defines the seam a real transport plugs into and
// ships an in-process default.
package messaging

import (
	"context"

	"github.com/flowexec/node/flow"
)

// Messaging is the seam SendInitial/SendExisting dispatch through. A
// production implementation would hand off to whatever reliable transport
// the node is configured with; that transport is an external collaborator
// per spec.md §1.
type Messaging interface {
	// SendInitial opens a new session toward destination carrying the
	// initialise payload, deduplicated by dedupID.
	SendInitial(ctx context.Context, destination string, initialise []byte, dedupID flow.DeduplicationID) error
	// SendExisting sends message on the already-Live session identified by
	// peerParty, deduplicated by dedupID.
	SendExisting(ctx context.Context, peerParty string, message []byte, dedupID flow.DeduplicationID) error
}

// Sink receives messages handed off by a Messaging implementation. This is
// the extension point a real transport implements; LoopbackMessaging
// forwards each distinct send to its Sink, if one is set.
type Sink interface {
	Deliver(ctx context.Context, destination string, payload []byte, dedupID flow.DeduplicationID) error
}
