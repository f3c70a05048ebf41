package flow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// DeduplicationID uniquely identifies a send attempt. Two sends that carry
// the same DeduplicationID are the same logical send as far as the peer's
// broker is concerned, which is what makes crash-and-replay safe: the same
// inputs must always derive the same bytes.
type DeduplicationID struct {
	raw [32]byte
}

// NewDeduplicationID derives a DeduplicationID from caller-supplied bytes
// (e.g. a value threaded through from the checkpoint) by hashing them with
// SHA-256; Bytes returns that digest, not the input.
func NewDeduplicationID(raw []byte) DeduplicationID {
	return DeduplicationID{raw: sha256.Sum256(raw)}
}

// DeduplicationIDFromError deterministically derives a DeduplicationID from
// an error identifier and the sink session it is being sent to. The same
// pair always yields identical bytes, which is what lets the peer's broker
// dedupe an error re-sent after this node restarts and replays its
// transition from the last checkpoint.
func DeduplicationIDFromError(errorID string, sinkSessionID SessionID) DeduplicationID {
	h := sha256.New()
	h.Write([]byte("error:"))
	h.Write([]byte(errorID))
	h.Write([]byte("|sink:"))
	h.Write([]byte(sinkSessionID.String()))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return DeduplicationID{raw: out}
}

// Bytes returns the raw dedup bytes.
func (d DeduplicationID) Bytes() []byte { return d.raw[:] }

// String returns the hex encoding of the dedup id, suitable for logging.
func (d DeduplicationID) String() string { return hex.EncodeToString(d.raw[:]) }

// SenderDeduplicationID pairs a DeduplicationID with an optional sender
// instance identifier, so that the receiver can additionally tolerate the
// sending node itself restarting mid-send (a new senderUUID after restart,
// combined with the same DeduplicationID, still dedupes correctly).
type SenderDeduplicationID struct {
	ID         DeduplicationID
	SenderUUID uuid.NullUUID
}

// DeduplicationHandler is attached to one inbound message. InsideDatabaseTransaction
// must run atomically with the business transition it accompanies (so the
// dedup fact and the effect commit or roll back together); AfterDatabaseTransaction
// acknowledges receipt to the broker once that transaction has durably
// committed, and its failure is never allowed to fail the transition (the
// dedup fact already makes redelivery safe).
type DeduplicationHandler interface {
	// InsideDatabaseTransaction idempotently records the fact that this
	// message was received, as part of the caller's database transaction.
	InsideDatabaseTransaction(ctx context.Context) error
	// AfterDatabaseTransaction acknowledges the message to the broker. It
	// is only ever called after the accompanying transaction has committed.
	AfterDatabaseTransaction(ctx context.Context) error
}
