package engine

import "github.com/simgrid/simgrid-go/engine/activity"

// Put enqueues size bytes of payload for mailboxName, from srcHost
// (spec.md §4.5.1). If a receiver is already queued, the pair fuses
// immediately and Route resolution + network-model registration happen
// right away, inline in this call.
func (e *Engine) Put(mailboxName, srcHost string, size float64, payload any) (activity.Handle, error) {
	h := e.Network.CreateComm(e.Arena, srcHost, "", size, payload)
	if err := e.Mailbox(mailboxName).PutAsync(e.Arena, h); err != nil {
		return activity.Handle{}, err
	}
	if err := e.startIfPaired(h); err != nil {
		return activity.Handle{}, err
	}
	return h, nil
}

// Get enqueues an async receive on mailboxName, landing in dstHost
// (spec.md §4.5.2). Symmetric to Put.
func (e *Engine) Get(mailboxName, dstHost string) (activity.Handle, error) {
	h := e.Network.CreateComm(e.Arena, "", dstHost, 0, nil)
	if err := e.Mailbox(mailboxName).GetAsync(e.Arena, h); err != nil {
		return activity.Handle{}, err
	}
	if err := e.startIfPaired(h); err != nil {
		return activity.Handle{}, err
	}
	return h, nil
}

// startIfPaired resolves the fused pair's Route and registers the
// receive-side ("primary") Comm with the network model, then brings the
// send-side ("peer") Comm to the same started state so the engine can
// drive both lifecycles in lockstep (engine/mailbox.fuse leaves both
// halves unstarted on purpose — only the engine can resolve Route, via
// the platform graph). A no-op if h is not yet paired.
func (e *Engine) startIfPaired(h activity.Handle) error {
	a := e.Arena.MustGet(h)
	comm := a.Payload.(*activity.Comm)
	if !comm.Paired {
		return nil
	}

	primaryHandle, peerHandle := h, comm.Peer
	if !comm.Primary {
		primaryHandle, peerHandle = comm.Peer, h
	}
	primary := e.Arena.MustGet(primaryHandle)
	peer := e.Arena.MustGet(peerHandle)
	primaryComm := primary.Payload.(*activity.Comm)

	route, err := e.Platform.Route(primaryComm.SrcHost, primaryComm.DstHost)
	if err != nil {
		return err
	}
	primaryComm.SetRoute(route.Links, route.Latency)

	if err := e.Network.Start(e.Clock, primary); err != nil {
		return err
	}
	return peer.Start(e.Clock, primary.Variable)
}
