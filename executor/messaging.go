package executor

import (
	"context"

	"github.com/flowexec/node/action"
	"github.com/flowexec/node/flow"
)

// propagateErrors sends a.ErrorMessages to every session in a.Sessions
// that is currently Live, skipping any that is not, per spec.md §4.1/§7's
// "attempts to propagate errors to non-live sessions are silently
// skipped". Each message's DeduplicationId is derived deterministically
// from (ErrorID, peer sink session) so a crash-and-replay resends
// byte-identical dedup ids.
func (e *Executor) propagateErrors(ctx context.Context, a action.PropagateErrors) error {
	for _, session := range a.Sessions {
		if !session.Initiated.IsLive() {
			continue
		}
		sink := session.Initiated.PeerSinkSessionID
		for _, msg := range a.ErrorMessages {
			dedupID := flow.DeduplicationIDFromError(msg.ErrorID, sink)
			if err := e.Messaging.SendExisting(ctx, session.PeerParty, msg.Payload, dedupID); err != nil {
				return err
			}
		}
	}
	return nil
}
