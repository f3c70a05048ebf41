package messaging

import (
	"context"
	"sync"

	"github.com/flowexec/node/flow"
)

// delivery records one SendInitial/SendExisting call for test assertions.
type delivery struct {
	Destination string
	Payload     []byte
	DedupID     flow.DeduplicationID
}

// LoopbackMessaging is an in-process Messaging implementation suitable as
// the default for single-process testing and for cmd/flownoded when no
// peer transport is configured. Every send is forwarded to an optional
// Sink and additionally recorded locally so tests can assert on delivery
// order without wiring a Sink at all.
type LoopbackMessaging struct {
	Sink Sink

	mu         sync.Mutex
	deliveries []delivery
	seen       map[flow.DeduplicationID]bool
}

// NewLoopbackMessaging constructs a LoopbackMessaging forwarding to sink,
// which may be nil.
func NewLoopbackMessaging(sink Sink) *LoopbackMessaging {
	return &LoopbackMessaging{Sink: sink, seen: make(map[flow.DeduplicationID]bool)}
}

// SendInitial records and forwards an initial session payload, deduplicated
// on dedupID: a repeat send with the same dedupID is treated as the same
// logical send and recorded only once, matching the peer-broker dedup
// contract spec.md §3 assumes.
func (m *LoopbackMessaging) SendInitial(ctx context.Context, destination string, initialise []byte, dedupID flow.DeduplicationID) error {
	return m.send(ctx, destination, initialise, dedupID)
}

// SendExisting records and forwards a message on an existing session,
// deduplicated the same way as SendInitial.
func (m *LoopbackMessaging) SendExisting(ctx context.Context, peerParty string, message []byte, dedupID flow.DeduplicationID) error {
	return m.send(ctx, peerParty, message, dedupID)
}

func (m *LoopbackMessaging) send(ctx context.Context, destination string, payload []byte, dedupID flow.DeduplicationID) error {
	m.mu.Lock()
	if m.seen[dedupID] {
		m.mu.Unlock()
		return nil
	}
	m.seen[dedupID] = true
	m.deliveries = append(m.deliveries, delivery{Destination: destination, Payload: payload, DedupID: dedupID})
	m.mu.Unlock()

	if m.Sink == nil {
		return nil
	}
	return m.Sink.Deliver(ctx, destination, payload, dedupID)
}

// Deliveries returns a copy of every distinct send recorded so far, for
// test assertions.
func (m *LoopbackMessaging) Deliveries() []delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]delivery, len(m.deliveries))
	copy(out, m.deliveries)
	return out
}
