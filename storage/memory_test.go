package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowexec/node/flow"
)

func TestMemoryCheckpointStore_AddThenUpdateThenRemove(t *testing.T) {
	s := NewMemoryCheckpointStore()
	id := flow.NewFlowID()

	require.NoError(t, s.AddCheckpoint(context.Background(), nil, id, []byte("v1")))
	b, ok := s.Get(id)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), b)

	require.ErrorIs(t, s.AddCheckpoint(context.Background(), nil, id, []byte("v2")), ErrCheckpointExists)

	require.NoError(t, s.UpdateCheckpoint(context.Background(), nil, id, []byte("v2")))
	b, ok = s.Get(id)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), b)

	require.NoError(t, s.RemoveCheckpoint(context.Background(), nil, id))
	_, ok = s.Get(id)
	require.False(t, ok)
}

func TestMemoryCheckpointStore_UpdateMissingIsNotFound(t *testing.T) {
	s := NewMemoryCheckpointStore()
	require.ErrorIs(t, s.UpdateCheckpoint(context.Background(), nil, flow.NewFlowID(), []byte("x")), ErrCheckpointNotFound)
}

func TestMemoryCheckpointStore_RemoveMissingIsNoop(t *testing.T) {
	s := NewMemoryCheckpointStore()
	require.NoError(t, s.RemoveCheckpoint(context.Background(), nil, flow.NewFlowID()))
}
