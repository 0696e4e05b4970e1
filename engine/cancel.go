package engine

import "github.com/simgrid/simgrid-go/engine/activity"

// CancelActivity cancels h (spec.md §5: "cancel(activity) on a
// non-terminal activity transitions it to canceled and wakes all actors
// waiting on it with a cancellation error"). A Comm still registered with
// a mailbox is forwarded there, since only the mailbox knows about an
// unmatched peer still sitting in a queue.
func (e *Engine) CancelActivity(h activity.Handle) error {
	a, err := e.Arena.Get(h)
	if err != nil {
		return err
	}
	if comm, ok := a.Payload.(*activity.Comm); ok && comm.Mailbox != "" {
		e.Network.Finalize(a)
		if comm.HasPeer {
			if peer, perr := e.Arena.Get(comm.Peer); perr == nil {
				e.Network.Finalize(peer)
			}
		}
		if err := e.Mailbox(comm.Mailbox).Cancel(e.Arena, e.Clock, h); err != nil {
			return err
		}
		e.Runtime.WakeActivity(h)
		if comm.HasPeer {
			e.Runtime.WakeActivity(comm.Peer)
		}
		return nil
	}

	switch a.Payload.(type) {
	case *activity.Exec:
		e.CPU.Finalize(a)
	case *activity.Comm:
		e.Network.Finalize(a)
	case *activity.Io:
		e.Disk.Finalize(a)
	}
	status, err := a.Cancel(e.Clock)
	if err != nil {
		return err
	}
	a.FireObservers(status)
	e.Hooks.FireActivityCompletion(a, status)
	e.Runtime.WakeActivity(h)
	return nil
}
