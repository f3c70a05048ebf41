package storage

import (
	"context"
	"sync"

	"github.com/flowexec/node/dbtx"
	"github.com/flowexec/node/flow"
)

// MemoryCheckpointStore is an in-memory CheckpointStorage for unit tests
// that don't need a live database. It ignores tx entirely (there is no
// real transactional isolation to participate in) but keeps the parameter
// for interface conformance, so tests exercise the exact call shape
// production code uses.
type MemoryCheckpointStore struct {
	mu    sync.Mutex
	store map[flow.FlowID][]byte
}

// NewMemoryCheckpointStore constructs an empty MemoryCheckpointStore.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{store: make(map[flow.FlowID][]byte)}
}

// AddCheckpoint stores bytes for id, or returns ErrCheckpointExists if
// already present.
func (m *MemoryCheckpointStore) AddCheckpoint(_ context.Context, _ *dbtx.Context, id flow.FlowID, bytes []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; ok {
		return ErrCheckpointExists
	}
	m.store[id] = append([]byte(nil), bytes...)
	return nil
}

// UpdateCheckpoint replaces the bytes stored for id, or returns
// ErrCheckpointNotFound if absent.
func (m *MemoryCheckpointStore) UpdateCheckpoint(_ context.Context, _ *dbtx.Context, id flow.FlowID, bytes []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrCheckpointNotFound
	}
	m.store[id] = append([]byte(nil), bytes...)
	return nil
}

// RemoveCheckpoint deletes the stored bytes for id, if present.
func (m *MemoryCheckpointStore) RemoveCheckpoint(_ context.Context, _ *dbtx.Context, id flow.FlowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// Get returns the currently stored bytes for id and whether they exist,
// for test assertions.
func (m *MemoryCheckpointStore) Get(id flow.FlowID) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	return b, ok
}
