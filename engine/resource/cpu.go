package resource

import (
	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/solver"
)

// execState is the CPU model's bookkeeping for one started Exec: the hosts
// it touches and the per-host solver variable registered on each host's
// constraint.
type execState struct {
	hosts []string
	vars  []*solver.Variable
}

// CPUModel is the resource model for compute (spec.md §4.3, "CPU model"):
// one constraint per Host's core-group. An Exec variable expands into the
// CPU constraint of every host it runs on, weighted by the FLOP amount on
// that host.
type CPUModel struct {
	constraints map[string]*solver.Constraint
	states      map[*activity.Activity]*execState
}

// NewCPUModel returns an empty CPU model; hosts must be registered with
// RegisterHost before any Exec naming them can start.
func NewCPUModel() *CPUModel {
	return &CPUModel{
		constraints: make(map[string]*solver.Constraint),
		states:      make(map[*activity.Activity]*execState),
	}
}

// RegisterHost creates the CPU constraint for a host with the given peak
// speed (FLOP/s, already scaled by its current pstate — spec.md §4.3:
// "bound of speed · pstate_scale"). Re-registering an existing host resets
// its bound. The engine registers each host once, at construction; a later
// Host.SetPstate or host trace does not re-register it or change its bound.
func (m *CPUModel) RegisterHost(hostID string, speedFlops float64) *solver.Constraint {
	if c, ok := m.constraints[hostID]; ok {
		c.Bound = speedFlops
		return c
	}
	c := &solver.Constraint{ID: newID(), Bound: speedFlops, Policy: solver.PolicyShared}
	m.constraints[hostID] = c
	return c
}

// SetBound updates a registered host's peak speed in place, e.g. in
// response to a pstate change or an availability-trace `set_bound` event
// (spec.md §4.3).
func (m *CPUModel) SetBound(hostID string, speedFlops float64) error {
	c, ok := m.constraints[hostID]
	if !ok {
		return ErrUnassigned{Resource: "host", Name: hostID}
	}
	c.Bound = speedFlops
	return nil
}

// CreateExec allocates a single-host Exec against a registered host.
func (m *CPUModel) CreateExec(ar *activity.Arena, hostID string, cost float64) (activity.Handle, error) {
	if _, ok := m.constraints[hostID]; !ok {
		return activity.Handle{}, ErrUnassigned{Resource: "host", Name: hostID}
	}
	return activity.NewExec(ar, hostID, cost), nil
}

// CreateParallelExec allocates a multi-host Exec spanning every named host.
func (m *CPUModel) CreateParallelExec(ar *activity.Arena, hosts []string, flops []float64, bytes [][]float64) (activity.Handle, error) {
	for _, h := range hosts {
		if _, ok := m.constraints[h]; !ok {
			return activity.Handle{}, ErrUnassigned{Resource: "host", Name: h}
		}
	}
	return activity.NewParallelExec(ar, hosts, flops, bytes), nil
}

// Start implements Model: it allocates one solver variable per host the
// Exec touches, registers it on that host's constraint with weight equal
// to the host's FLOP share, and starts the activity.
func (m *CPUModel) Start(now int64, a *activity.Activity) error {
	exec, ok := a.Payload.(*activity.Exec)
	if !ok {
		return ErrUnassigned{Resource: "host", Name: "<non-exec activity>"}
	}
	vars := make([]*solver.Variable, len(exec.Hosts))
	for i, host := range exec.Hosts {
		c, ok := m.constraints[host]
		if !ok {
			return ErrUnassigned{Resource: "host", Name: host}
		}
		v := newVariable(a.Priority, exec.Bound, exec.HasBound)
		c.AddMember(v, exec.Flops[i])
		vars[i] = v
	}
	if err := a.Start(now, &multiVariable{vars: vars}); err != nil {
		return err
	}
	m.states[a] = &execState{hosts: exec.Hosts, vars: vars}
	return nil
}

// Finalize implements Model: it removes every per-host variable this Exec
// registered from its constraint.
func (m *CPUModel) Finalize(a *activity.Activity) {
	st, ok := m.states[a]
	if !ok {
		return
	}
	for i, host := range st.hosts {
		if c, ok := m.constraints[host]; ok {
			c.RemoveMember(st.vars[i])
		}
	}
	delete(m.states, a)
}

// Update implements Model: it subtracts each host's solved rate from the
// Exec's per-host FLOP vector, and reports Execs whose vector has jointly
// reached zero (spec.md §4.4, "Parallel Exec ... completion is joint").
func (m *CPUModel) Update(dt float64, eps float64) []*activity.Activity {
	var completed []*activity.Activity
	for a, st := range m.states {
		if a.State != activity.StateStarted {
			continue
		}
		exec := a.Payload.(*activity.Exec)
		for i, v := range st.vars {
			exec.Flops[i] -= v.Rate() * dt
			if exec.Flops[i] < 0 {
				exec.Flops[i] = 0
			}
		}
		a.Remaining = exec.Flops[0]
		if exec.Joint(eps) {
			completed = append(completed, a)
		}
	}
	return completed
}

// Constraints returns every registered host's CPU constraint, for the
// engine to assemble into one Solve call alongside the network and disk
// models' constraints.
func (m *CPUModel) Constraints() []*solver.Constraint {
	out := make([]*solver.Constraint, 0, len(m.constraints))
	for _, c := range m.constraints {
		out = append(out, c)
	}
	return out
}
