package flow

// InitiatedKind enumerates the three states a SessionState's initiation can
// be in. It is a closed set: Uninitiated (never heard from the peer),
// Live (an active, usable session with a known peer sink id), and Ended
// (the peer has confirmed session termination).
type InitiatedKind int

const (
	// Uninitiated means the session has been created locally but the peer
	// has not yet confirmed it (no peer sink session id is known).
	Uninitiated InitiatedKind = iota
	// Live means the session is usable: the peer has confirmed it and
	// supplied a sink session id that sends should target.
	Live
	// Ended means the peer has confirmed the session is closed. Errors and
	// messages must never be sent to an Ended session.
	Ended
)

func (k InitiatedKind) String() string {
	switch k {
	case Uninitiated:
		return "Uninitiated"
	case Live:
		return "Live"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// InitiatedState is the closed 3-variant union from the spec's data model.
// PeerSinkSessionID is only meaningful when Kind == Live.
type InitiatedState struct {
	Kind              InitiatedKind
	PeerSinkSessionID SessionID
}

// UninitiatedState constructs an Uninitiated InitiatedState.
func UninitiatedState() InitiatedState { return InitiatedState{Kind: Uninitiated} }

// LiveState constructs a Live InitiatedState targeting peerSinkSessionID.
func LiveState(peerSinkSessionID SessionID) InitiatedState {
	return InitiatedState{Kind: Live, PeerSinkSessionID: peerSinkSessionID}
}

// EndedState constructs an Ended InitiatedState.
func EndedState() InitiatedState { return InitiatedState{Kind: Ended} }

// IsLive reports whether the state is Live, i.e. eligible to receive sends.
func (s InitiatedState) IsLive() bool { return s.Kind == Live }

// SessionState carries everything the Executor needs to know about one side
// of a session in order to route sends and error propagation correctly.
type SessionState struct {
	// PeerParty identifies the remote party this session talks to. The
	// party identity model itself (certificates, X.500 names, etc.) is
	// outside the Executor's concern; it is treated as an opaque string.
	PeerParty string
	// Initiated carries the session's current InitiatedState.
	Initiated InitiatedState
	// LocalSequence is a monotonic sequence counter for locally-sent
	// messages on this session, used by the (out-of-scope) wire protocol
	// for ordering; the Executor only needs to thread it through.
	LocalSequence uint64
}
