package messaging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowexec/node/flow"
)

type recordingSink struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (s *recordingSink) Deliver(_ context.Context, destination string, payload []byte, dedupID flow.DeduplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, delivery{Destination: destination, Payload: payload, DedupID: dedupID})
	return nil
}

func TestLoopbackMessaging_ForwardsToSink(t *testing.T) {
	sink := &recordingSink{}
	m := NewLoopbackMessaging(sink)
	dedup := flow.NewDeduplicationID([]byte("1"))

	require.NoError(t, m.SendInitial(context.Background(), "peer-a", []byte("hello"), dedup))

	require.Len(t, sink.deliveries, 1)
	require.Equal(t, "peer-a", sink.deliveries[0].Destination)
	require.Len(t, m.Deliveries(), 1)
}

func TestLoopbackMessaging_DedupesRepeatSend(t *testing.T) {
	sink := &recordingSink{}
	m := NewLoopbackMessaging(sink)
	dedup := flow.NewDeduplicationID([]byte("1"))

	require.NoError(t, m.SendExisting(context.Background(), "peer-a", []byte("hello"), dedup))
	require.NoError(t, m.SendExisting(context.Background(), "peer-a", []byte("hello-again"), dedup))

	require.Len(t, sink.deliveries, 1, "a repeat dedup id must only be delivered once")
	require.Len(t, m.Deliveries(), 1)
}

func TestLoopbackMessaging_NilSinkStillRecords(t *testing.T) {
	m := NewLoopbackMessaging(nil)
	dedup := flow.NewDeduplicationID([]byte("1"))
	require.NoError(t, m.SendInitial(context.Background(), "peer-a", []byte("hello"), dedup))
	require.Len(t, m.Deliveries(), 1)
}
