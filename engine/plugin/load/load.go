// Package load is the load-tracking plugin's hook subscription surface
// (spec.md §1: "Optional plugins (energy, load, live-migration,
// file-system); the core exposes hooks but not their policy"). It
// observes actor creation and bandwidth-change signals — the inputs a
// load-balancing policy would react to — without implementing any
// balancing decision itself.
package load

import "github.com/simgrid/simgrid-go/engine/hooks"

// Plugin tallies actors created per host and the bandwidth-change
// signals it has observed since Init. A real load plugin would consume
// these counts to drive migration or admission decisions, which stays
// outside this package.
type Plugin struct {
	ActorsPerHost    map[string]int
	BandwidthChanges int
}

// New returns a Plugin not yet subscribed to any hooks.Registry.
func New() *Plugin {
	return &Plugin{ActorsPerHost: make(map[string]int)}
}

// Init subscribes p to reg, the "plugin: load" init hook named in
// spec.md §6's `--cfg=plugin:<name>` surface.
func (p *Plugin) Init(reg *hooks.Registry) {
	reg.OnActorCreation(func(actorID, host string) {
		p.ActorsPerHost[host]++
	})
	reg.OnBandwidthChange(func(resourceID string, newBandwidth float64) {
		p.BandwidthChanges++
	})
}
