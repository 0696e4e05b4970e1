// Package hooks implements the four plugin signals spec.md §4.8 names:
// bandwidth-change, actor-creation, activity-completion, and
// host-state-change. Firing them is part of the owning component's
// contract; this package only holds the subscriber lists and the narrow
// callback types, mirroring engine/activity's Observer in shape.
package hooks

import "github.com/simgrid/simgrid-go/engine/activity"

// BandwidthChangeFunc is called by Engine.SetLinkOn when a link is turned
// on or off, with the link's nominal bandwidth. Pstate switches, traces
// and SetBound calls do not fire it.
type BandwidthChangeFunc func(resourceID string, newBandwidth float64)

// ActorCreationFunc is called whenever a new actor is created, by
// deployment or programmatically.
type ActorCreationFunc func(actorID, host string)

// ActivityCompletionFunc is called once an activity reaches a terminal
// state, after the transition has committed (spec.md §5: "Observer
// callbacks fire after the activity's state transition has been
// committed").
type ActivityCompletionFunc func(a *activity.Activity, status activity.CompletionStatus)

// HostStateChangeFunc is called whenever a host turns on or off.
type HostStateChangeFunc func(hostID string, on bool)

// Registry holds every plugin's subscriptions for one Engine instance.
type Registry struct {
	bandwidthChange   []BandwidthChangeFunc
	actorCreation     []ActorCreationFunc
	activityCompleted []ActivityCompletionFunc
	hostStateChange   []HostStateChangeFunc
}

// NewRegistry returns an empty hook Registry.
func NewRegistry() *Registry { return &Registry{} }

// OnBandwidthChange subscribes fn to every future bandwidth change.
func (r *Registry) OnBandwidthChange(fn BandwidthChangeFunc) { r.bandwidthChange = append(r.bandwidthChange, fn) }

// OnActorCreation subscribes fn to every future actor creation.
func (r *Registry) OnActorCreation(fn ActorCreationFunc) { r.actorCreation = append(r.actorCreation, fn) }

// OnActivityCompletion subscribes fn to every future activity completion.
func (r *Registry) OnActivityCompletion(fn ActivityCompletionFunc) {
	r.activityCompleted = append(r.activityCompleted, fn)
}

// OnHostStateChange subscribes fn to every future host on/off transition.
func (r *Registry) OnHostStateChange(fn HostStateChangeFunc) { r.hostStateChange = append(r.hostStateChange, fn) }

// FireBandwidthChange notifies every bandwidth-change subscriber.
func (r *Registry) FireBandwidthChange(resourceID string, newBandwidth float64) {
	for _, fn := range r.bandwidthChange {
		fn(resourceID, newBandwidth)
	}
}

// FireActorCreation notifies every actor-creation subscriber.
func (r *Registry) FireActorCreation(actorID, host string) {
	for _, fn := range r.actorCreation {
		fn(actorID, host)
	}
}

// FireActivityCompletion notifies every activity-completion subscriber.
func (r *Registry) FireActivityCompletion(a *activity.Activity, status activity.CompletionStatus) {
	for _, fn := range r.activityCompleted {
		fn(a, status)
	}
}

// FireHostStateChange notifies every host-state-change subscriber.
func (r *Registry) FireHostStateChange(hostID string, on bool) {
	for _, fn := range r.hostStateChange {
		fn(hostID, on)
	}
}
