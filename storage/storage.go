// Package storage implements CheckpointStorage (spec.md §6): durable
// add/update/remove of checkpoint bytes keyed by flow.FlowID, participating
// in the ambient database transaction bound to the executing fiber.
package storage

import (
	"context"
	"errors"

	"github.com/flowexec/node/dbtx"
	"github.com/flowexec/node/flow"
)

// ErrCheckpointExists is returned by AddCheckpoint when a checkpoint for
// the given flow.FlowID already exists, enforcing the add-once half of
// spec.md §3's "add-then-update-only checkpoint lifecycle" invariant.
var ErrCheckpointExists = errors.New("storage: checkpoint already exists")

// ErrCheckpointNotFound is returned by UpdateCheckpoint when no checkpoint
// exists for the given flow.FlowID. RemoveCheckpoint of an absent id is not
// an error.
var ErrCheckpointNotFound = errors.New("storage: checkpoint not found")

// CheckpointStorage is the durable key/value mapping from flow.FlowID to
// serialized checkpoint bytes, spec.md §2's Checkpoint Store, transactionally
// co-located with the application database. Every method participates in
// whatever ambient transaction the caller is already inside; none of them
// open their own.
//
// tx is the fiber's bound ambient transaction, passed explicitly by
// reference per spec.md §9's "ambient transaction context" design note,
// rather than recovered from ctx or goroutine-local state.
type CheckpointStorage interface {
	// AddCheckpoint stores bytes for id for the first time. Returns
	// ErrCheckpointExists if a checkpoint for id is already present.
	AddCheckpoint(ctx context.Context, tx *dbtx.Context, id flow.FlowID, bytes []byte) error
	// UpdateCheckpoint replaces the bytes stored for an existing id.
	// Returns ErrCheckpointNotFound if no checkpoint for id exists.
	UpdateCheckpoint(ctx context.Context, tx *dbtx.Context, id flow.FlowID, bytes []byte) error
	// RemoveCheckpoint deletes the checkpoint stored for id, if any.
	RemoveCheckpoint(ctx context.Context, tx *dbtx.Context, id flow.FlowID) error
}
