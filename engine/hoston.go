package engine

import "github.com/simgrid/simgrid-go/engine/activity"

// SetHostOn turns a host on or off (spec.md §5, "Host on/off"). Turning a
// host off fails every started activity whose route touches it and kills
// every actor currently bound to it; turning it back on is benign except
// that actors previously killed with auto_restart set are redeployed.
func (e *Engine) SetHostOn(hostID string, on bool) error {
	h, err := e.Platform.Host(hostID)
	if err != nil {
		return err
	}
	wasOn := h.On()
	h.SetOn(on)
	e.Hooks.FireHostStateChange(hostID, on)

	if wasOn && !on {
		e.failActivitiesTouchingHost(hostID)
		e.killActorsOnHost(hostID)
	}
	if !wasOn && on {
		e.restartActorsOnHost(hostID)
	}
	return nil
}

// SetLinkOn turns a link on or off, failing every started Comm whose
// route traverses it (spec.md §5's host-off rule extended to links, the
// platform graph's other failable resource).
func (e *Engine) SetLinkOn(linkID string, on bool) error {
	l, err := e.Platform.Link(linkID)
	if err != nil {
		return err
	}
	wasOn := l.On()
	l.SetOn(on)
	e.Hooks.FireBandwidthChange(linkID, l.Bandwidth)
	if wasOn && !on {
		for _, a := range e.Arena.Started() {
			if comm, ok := a.Payload.(*activity.Comm); ok && containsLink(comm.Route, linkID) {
				e.failActivity(a, activity.FailureNetwork)
			}
		}
	}
	return nil
}

func containsLink(route []string, linkID string) bool {
	for _, l := range route {
		if l == linkID {
			return true
		}
	}
	return false
}

func (e *Engine) failActivitiesTouchingHost(hostID string) {
	for _, a := range e.Arena.Started() {
		if activityTouchesHost(a, hostID) {
			e.failActivity(a, activity.FailureHost)
		}
	}
}

func activityTouchesHost(a *activity.Activity, hostID string) bool {
	switch p := a.Payload.(type) {
	case *activity.Exec:
		for _, host := range p.Hosts {
			if host == hostID {
				return true
			}
		}
	case *activity.Comm:
		return p.SrcHost == hostID || p.DstHost == hostID
	}
	return false
}

func (e *Engine) failActivity(a *activity.Activity, reason activity.FailureKind) {
	switch a.Payload.(type) {
	case *activity.Exec:
		e.CPU.Finalize(a)
	case *activity.Comm:
		e.Network.Finalize(a)
	case *activity.Io:
		e.Disk.Finalize(a)
	}
	status, err := a.Fail(e.Clock, reason)
	if err != nil {
		return
	}
	a.FireObservers(status)
	e.Hooks.FireActivityCompletion(a, status)
	e.Runtime.WakeActivity(a.Handle)
}

func (e *Engine) killActorsOnHost(hostID string) {
	for _, a := range e.Runtime.ActorsOnHost(hostID) {
		id := a.ID
		restart, wantsRestart := e.restartSpec[id]
		e.Runtime.Kill(id)
		if wantsRestart {
			e.pendingRestarts[hostID] = append(e.pendingRestarts[hostID], restart)
			delete(e.restartSpec, id)
		}
	}
}

func (e *Engine) restartActorsOnHost(hostID string) {
	entries := e.pendingRestarts[hostID]
	delete(e.pendingRestarts, hostID)
	for _, entry := range entries {
		e.startDeployment(entry)
	}
}
