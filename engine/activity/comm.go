package activity

// Comm is the payload for a communication activity: size bytes moving from
// a sender host to a receiver host over a routed link path. Direction and
// pairing state are set by the mailbox (engine/mailbox) when sender and
// receiver halves match.
type Comm struct {
	SrcHost string
	DstHost string
	Size    float64 // bytes

	Route   []string // link names traversed, set once paired
	Latency float64  // accumulated route latency, consumed before bandwidth sharing starts

	SrcBuff  unsafePtr // opaque sender buffer address
	DstBuff  unsafePtr // opaque receiver buffer address
	Payload  any       // move-only user payload

	Rate     float64 // optional personal rate cap; 0 means unbounded
	HasRate  bool

	Mailbox  string
	Paired   bool // true once sender/receiver are fused into one started Comm

	// Peer is the matched other-direction Comm once the mailbox has
	// fused this pair (spec.md §4.5). Primary reports which of the two
	// actually owns the resource-model registration (Route, solver
	// Variable); the non-primary side's lifecycle is driven in lockstep
	// by the engine, not independently started against the network
	// model (engine/mailbox.fuse).
	Peer    Handle
	HasPeer bool
	Primary bool

	// OnCleanup is invoked if the Comm is cancelled before delivery,
	// returning ownership of Payload to the sender (spec.md §4.5,
	// "payload ownership").
	OnCleanup func(payload any)

	latencyConsumed bool
}

// unsafePtr stands in for the source's raw pointer fields; user code treats
// it as an opaque token, never dereferenced by the core.
type unsafePtr = uintptr

// NewComm allocates a Comm activity in the starting state, not yet paired.
func NewComm(ar *Arena, srcHost, dstHost string, size float64, payload any) Handle {
	h := ar.New(KindComm, &Comm{SrcHost: srcHost, DstHost: dstHost, Size: size, Payload: payload})
	a := ar.MustGet(h)
	a.Remaining = size
	_ = a.transition(StateStarting)
	return h
}

// SetRoute records the path and latency computed by the platform graph once
// the Comm is paired and ready to start (spec.md §4.1, §4.3).
func (c *Comm) SetRoute(links []string, latency float64) {
	c.Route = links
	c.Latency = latency
}

// ConsumeLatency reports whether the Comm's leading latency period has
// elapsed; the network model calls this once per round before admitting the
// Comm's byte count to bandwidth sharing (spec.md §4.3: "a Comm incurs a
// leading latency seconds during which it consumes no bandwidth").
func (c *Comm) ConsumeLatency(dt float64) (consumed float64, stillPending bool) {
	if c.latencyConsumed || c.Latency <= 0 {
		c.latencyConsumed = true
		return dt, false
	}
	if dt < c.Latency {
		c.Latency -= dt
		return 0, true
	}
	consumed = dt - c.Latency
	c.Latency = 0
	c.latencyConsumed = true
	return consumed, false
}
