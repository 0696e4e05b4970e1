// Package energy is the energy plugin's hook subscription surface
// (spec.md §1: "Optional plugins (energy, load, live-migration,
// file-system); the core exposes hooks but not their policy"). It
// observes the signals a power model would need — host on/off and
// activity completion — without implementing any model of its own.
package energy

import (
	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/hooks"
)

// Plugin tallies the host-state and activity-completion signals it has
// observed since Init. A real energy model would integrate these against
// a per-pstate power curve; that curve is explicitly out of scope here.
type Plugin struct {
	HostOnCount  int
	HostOffCount int
	Completions  int
}

// New returns a Plugin not yet subscribed to any hooks.Registry.
func New() *Plugin {
	return &Plugin{}
}

// Init subscribes p to reg, the "plugin: energy" init hook named in
// spec.md §6's `--cfg=plugin:<name>` surface.
func (p *Plugin) Init(reg *hooks.Registry) {
	reg.OnHostStateChange(func(hostID string, on bool) {
		if on {
			p.HostOnCount++
		} else {
			p.HostOffCount++
		}
	})
	reg.OnActivityCompletion(func(a *activity.Activity, status activity.CompletionStatus) {
		p.Completions++
	})
}
