package platform

import "github.com/simgrid/simgrid-go/engine/solver"

// SharingPolicy mirrors solver.Policy at the platform layer, so platform
// files needn't import engine/solver for every Link/Disk declaration site.
type SharingPolicy = solver.Policy

const (
	SharingShared  = solver.PolicyShared
	SharingFatpipe = solver.PolicyFatpipe
	SharingWifi    = solver.PolicyWifi
)

// Link is a named network element (spec.md §3).
type Link struct {
	ID        string
	Bandwidth float64
	Latency   float64
	Policy    SharingPolicy
	Wifi      solver.WifiWeightFunc

	on bool

	trace *Trace
}

// NewLink builds an on Link with the given peak bandwidth and latency.
func NewLink(id string, bandwidth, latency float64, policy SharingPolicy) *Link {
	return &Link{ID: id, Bandwidth: bandwidth, Latency: latency, Policy: policy, on: true}
}

// On reports whether the link is currently up.
func (l *Link) On() bool { return l.on }

// SetOn turns the link on or off (spec.md §5: "turning a host off fails
// all activities whose route touches it"; links follow the same rule).
func (l *Link) SetOn(on bool) { l.on = on }

// SetTrace attaches a piecewise-constant bandwidth/on-off trace.
func (l *Link) SetTrace(t *Trace) { l.trace = t }

// Trace returns the link's trace, or nil.
func (l *Link) Trace() *Trace { return l.trace }
