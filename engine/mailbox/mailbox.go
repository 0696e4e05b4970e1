// Package mailbox implements the rendez-vous point that matches a sender
// Comm with a receiver Comm and fuses them into one started Comm (spec.md
// §4.5). It holds no resources of its own: pairing just arranges which
// activity becomes the one the network model (engine/resource) actually
// starts.
package mailbox

import (
	"fmt"

	"github.com/simgrid/simgrid-go/engine/activity"
)

// ActorID names the actor a permanent receiver claim belongs to. Defined
// here rather than imported from engine/actor to avoid a cycle; the actor
// package's own actor identifiers convert to this type at the call site.
type ActorID string

// Mailbox is a named rendez-vous point. Both queues are strictly FIFO
// (spec.md §4.5.5); invariant I-mbox (at most one of the two queues is
// non-empty after any matching or cancel) holds because PutAsync only
// enqueues onto sendQueue when recvQueue is already empty, and GetAsync
// only enqueues onto recvQueue when sendQueue and the staged slot are
// already empty.
type Mailbox struct {
	Name string

	sendQueue []activity.Handle
	recvQueue []activity.Handle

	permanentReceiver ActorID
	hasPermanent      bool
	staged            []activity.Handle // eager-receive slot, permanent-receiver mode only
}

// New returns an empty Mailbox named name.
func New(name string) *Mailbox {
	return &Mailbox{Name: name}
}

// SetPermanentReceiver claims the mailbox as actor's permanent receiver
// (spec.md §4.5.4): subsequent PutAsync calls stage their payload in the
// side queue instead of waiting in sendQueue for a matching GetAsync.
func (m *Mailbox) SetPermanentReceiver(actor ActorID) {
	m.permanentReceiver = actor
	m.hasPermanent = true
}

// ClearPermanentReceiver releases permanent-receiver mode. Anything
// already staged remains staged; it still gets picked up by the next Get.
func (m *Mailbox) ClearPermanentReceiver() {
	m.hasPermanent = false
	m.permanentReceiver = ""
}

// PermanentReceiver reports the actor currently claiming this mailbox, if
// any.
func (m *Mailbox) PermanentReceiver() (ActorID, bool) {
	return m.permanentReceiver, m.hasPermanent
}

// commOf type-asserts a's payload as a Comm, the only payload kind a
// mailbox ever handles.
func commOf(a *activity.Activity) (*activity.Comm, error) {
	c, ok := a.Payload.(*activity.Comm)
	if !ok {
		return nil, fmt.Errorf("mailbox: handle %v is not a Comm", a.Handle)
	}
	return c, nil
}

// PutAsync is the async send half (spec.md §4.5.1). h must already be a
// Comm activity in state starting, created via activity.NewComm, with
// Mailbox not yet set. If a receiver is already queued, the two are fused
// immediately and both transition toward started; otherwise h is staged
// under permanent-receiver mode, or appended to sendQueue.
func (m *Mailbox) PutAsync(ar *activity.Arena, h activity.Handle) error {
	a, err := ar.Get(h)
	if err != nil {
		return err
	}
	c, err := commOf(a)
	if err != nil {
		return err
	}
	c.Mailbox = m.Name

	if len(m.recvQueue) > 0 {
		rh := m.recvQueue[0]
		m.recvQueue = m.recvQueue[1:]
		return m.fuse(ar, h, rh)
	}
	if m.hasPermanent {
		m.stage(h)
		return nil
	}
	m.sendQueue = append(m.sendQueue, h)
	return nil
}

// GetAsync is the async receive half (spec.md §4.5.2), symmetric to
// PutAsync. A staged payload (permanent-receiver mode) is consulted before
// sendQueue, since it represents a put that already arrived and was
// eagerly accepted.
func (m *Mailbox) GetAsync(ar *activity.Arena, h activity.Handle) error {
	a, err := ar.Get(h)
	if err != nil {
		return err
	}
	c, err := commOf(a)
	if err != nil {
		return err
	}
	c.Mailbox = m.Name

	if len(m.staged) > 0 {
		sh := m.staged[0]
		m.staged = m.staged[1:]
		return m.fuse(ar, sh, h)
	}
	if len(m.sendQueue) > 0 {
		sh := m.sendQueue[0]
		m.sendQueue = m.sendQueue[1:]
		return m.fuse(ar, sh, h)
	}
	m.recvQueue = append(m.recvQueue, h)
	return nil
}

// fuse copies sender metadata into the receiver's Comm, making the
// receive side the fused, "primary" Comm that actually gets registered
// against the network model; the send side becomes a non-primary peer
// whose lifecycle the engine drives in lockstep with the primary's
// (spec.md §4.5.1: "copy sender metadata into the fused Comm"). Pairing
// only marks both sides ready; the actual starting -> started transition
// happens once the engine resolves a route for the primary and hands it
// to resource.NetworkModel.Start, which both allocates the solver
// Variable and validates Route is set.
func (m *Mailbox) fuse(ar *activity.Arena, sendHandle, recvHandle activity.Handle) error {
	sendAct, err := ar.Get(sendHandle)
	if err != nil {
		return err
	}
	recvAct, err := ar.Get(recvHandle)
	if err != nil {
		return err
	}
	sendComm, err := commOf(sendAct)
	if err != nil {
		return err
	}
	recvComm, err := commOf(recvAct)
	if err != nil {
		return err
	}

	recvComm.SrcHost = sendComm.SrcHost
	recvComm.Size = sendComm.Size
	recvComm.SrcBuff = sendComm.SrcBuff
	recvComm.Payload = sendComm.Payload
	recvComm.OnCleanup = sendComm.OnCleanup
	recvAct.Remaining = sendComm.Size

	sendComm.Paired = true
	recvComm.Paired = true
	sendComm.HasPeer, sendComm.Peer, sendComm.Primary = true, recvHandle, false
	recvComm.HasPeer, recvComm.Peer, recvComm.Primary = true, sendHandle, true
	return nil
}

// stage appends h to the permanent receiver's eager-receive slot instead
// of sendQueue (spec.md §4.5.4).
func (m *Mailbox) stage(h activity.Handle) {
	m.staged = append(m.staged, h)
}

// Cancel cancels h, which must belong to this mailbox. If h is still
// unmatched, it is simply removed from whichever queue holds it,
// preserving I-mbox. If h has already been fused with a peer that is not
// yet terminal (started or not), the peer is cancelled too and both halves
// observe the cancellation (spec.md §4.5.6); the payload is handed back to
// the sender via the Comm's OnCleanup callback, if it has one.
func (m *Mailbox) Cancel(ar *activity.Arena, now int64, h activity.Handle) error {
	m.removeFromQueues(h)

	a, err := ar.Get(h)
	if err != nil {
		return err
	}
	c, err := commOf(a)
	if err != nil {
		return err
	}

	if c.HasPeer {
		peerAct, err := ar.Get(c.Peer)
		if err == nil && !peerAct.State.IsTerminal() {
			m.removeFromQueues(c.Peer)
			if _, cerr := peerAct.Cancel(now); cerr != nil {
				return cerr
			}
			peerAct.FireObservers(activity.CompletionStatus{State: activity.StateCanceled, Failure: activity.FailureCancelled})
		}
	}

	if !a.State.IsTerminal() {
		if _, err := a.Cancel(now); err != nil {
			return err
		}
	}
	if c.OnCleanup != nil {
		c.OnCleanup(c.Payload)
	}
	a.FireObservers(activity.CompletionStatus{State: activity.StateCanceled, Failure: activity.FailureCancelled})
	return nil
}

func (m *Mailbox) removeFromQueues(h activity.Handle) {
	m.sendQueue = removeHandle(m.sendQueue, h)
	m.recvQueue = removeHandle(m.recvQueue, h)
	m.staged = removeHandle(m.staged, h)
}

func removeHandle(q []activity.Handle, h activity.Handle) []activity.Handle {
	for i, qh := range q {
		if qh == h {
			return append(q[:i], q[i+1:]...)
		}
	}
	return q
}

// Pending reports the number of unmatched sends and receives, for
// diagnostics and deadlock reporting (spec.md §4.6, "Termination rule").
func (m *Mailbox) Pending() (sends, recvs int) {
	return len(m.sendQueue) + len(m.staged), len(m.recvQueue)
}
