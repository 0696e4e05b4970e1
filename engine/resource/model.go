// Package resource implements the three resource-model families of
// spec.md §4.3: CPU, network, and disk. Each family owns one or more
// solver.Constraints per platform instance and knows how to expand an
// activity.Activity into solver variables, start/finalize it, and advance
// its remaining work once the solver has assigned rates.
package resource

import (
	"fmt"

	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/solver"
)

// Model is the small interface every resource family implements
// (spec.md §4.3: "create_activity / start / finalize / update"), mirrored
// on `sim/policy/admission.go`'s AdmissionPolicy interface-plus-factory
// shape.
type Model interface {
	// Start allocates the activity's solver variable(s) and registers them
	// with the owning constraint(s), transitioning the activity to started.
	Start(now int64, a *activity.Activity) error
	// Finalize releases the activity's solver variable(s), removing them
	// from every constraint they were registered on.
	Finalize(a *activity.Activity)
	// Update subtracts this round's progress from every started activity's
	// Remaining and returns those that reached completion (Remaining <= eps).
	Update(dt float64, eps float64) []*activity.Activity
}

// ErrUnassigned is returned when an activity names a host/link/disk the
// model has no constraint for (spec.md §7: "Unassigned").
type ErrUnassigned struct {
	Resource string
	Name     string
}

func (e ErrUnassigned) Error() string {
	return fmt.Sprintf("%s %q: no resource registered", e.Resource, e.Name)
}

// nextID is a process-wide monotonic counter; solver.Variable and
// solver.Constraint IDs only need to be stable and unique within one Solve
// call, so a package counter shared by every model is simplest.
var nextID uint64

func newID() uint64 {
	nextID++
	return nextID
}

func newVariable(priority float64, bound float64, hasBound bool) *solver.Variable {
	return &solver.Variable{ID: newID(), Priority: priority, Bound: bound, HasBound: hasBound}
}

// multiVariable presents several per-constraint solver.Variables (one per
// host a Parallel Exec touches; a Comm uses one variable on all its links)
// as the single
// activity.SolverVariable an Activity owns (I3). SetPriority fans out to
// every underlying variable; Rate reports the slowest of them, since a
// Parallel Exec's joint completion (spec.md §4.4) is gated on every
// per-host FLOP vector entry reaching zero together.
type multiVariable struct {
	vars []*solver.Variable
}

func (m *multiVariable) SetPriority(p float64) {
	for _, v := range m.vars {
		v.Priority = p
	}
}

func (m *multiVariable) Rate() float64 {
	if len(m.vars) == 0 {
		return 0
	}
	r := m.vars[0].Rate()
	for _, v := range m.vars[1:] {
		if v.Rate() < r {
			r = v.Rate()
		}
	}
	return r
}
