package resource

import (
	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/solver"
)

// diskConstraints holds the three constraints spec.md §3 assigns to one
// Disk: independent read and write budgets, plus a joint budget limiting
// their sum.
type diskConstraints struct {
	read      *solver.Constraint
	write     *solver.Constraint
	aggregate *solver.Constraint
}

// ioState is the disk model's bookkeeping for one started Io.
type ioState struct {
	vars []*solver.Variable // one variable, registered on both the direction and aggregate constraints
}

// DiskModel is the resource model for storage (spec.md §4.3, "Disk
// model"): two constraints per Disk (read, write) plus an aggregate
// constraint. An Io variable expands into one of read/write and into the
// aggregate.
type DiskModel struct {
	disks  map[string]*diskConstraints
	states map[*activity.Activity]*ioState
}

// NewDiskModel returns an empty disk model; disks must be registered with
// RegisterDisk before any Io naming them can start.
func NewDiskModel() *DiskModel {
	return &DiskModel{
		disks:  make(map[string]*diskConstraints),
		states: make(map[*activity.Activity]*ioState),
	}
}

// RegisterDisk creates the read/write/aggregate constraints for a disk
// with the given peak read and write bandwidths; the aggregate defaults to
// their sum.
func (m *DiskModel) RegisterDisk(diskID string, readBW, writeBW float64) {
	m.RegisterDiskWithAggregate(diskID, readBW, writeBW, readBW+writeBW)
}

// RegisterDiskWithAggregate is RegisterDisk with an explicit aggregate
// bound, for disks whose combined read+write throughput is capped below
// the sum of their individual peaks.
func (m *DiskModel) RegisterDiskWithAggregate(diskID string, readBW, writeBW, aggregateBW float64) {
	m.disks[diskID] = &diskConstraints{
		read:      &solver.Constraint{ID: newID(), Bound: readBW, Policy: solver.PolicyShared},
		write:     &solver.Constraint{ID: newID(), Bound: writeBW, Policy: solver.PolicyShared},
		aggregate: &solver.Constraint{ID: newID(), Bound: aggregateBW, Policy: solver.PolicyShared},
	}
}

// CreateIo allocates an Io activity against a registered disk.
func (m *DiskModel) CreateIo(ar *activity.Arena, diskID string, op activity.IoOp, size float64) (activity.Handle, error) {
	if _, ok := m.disks[diskID]; !ok {
		return activity.Handle{}, ErrUnassigned{Resource: "disk", Name: diskID}
	}
	return activity.NewIo(ar, diskID, op, size), nil
}

// Start implements Model: it registers one variable on the Io's direction
// constraint and another on the disk's aggregate constraint.
func (m *DiskModel) Start(now int64, a *activity.Activity) error {
	io, ok := a.Payload.(*activity.Io)
	if !ok {
		return ErrUnassigned{Resource: "disk", Name: "<non-io activity>"}
	}
	dc, ok := m.disks[io.Disk]
	if !ok {
		return ErrUnassigned{Resource: "disk", Name: io.Disk}
	}
	dir := dc.read
	if io.Op == activity.IoWrite {
		dir = dc.write
	}
	v := newVariable(a.Priority, 0, false)
	dir.AddMember(v, 1)
	dc.aggregate.AddMember(v, 1)
	if err := a.Start(now, v); err != nil {
		return err
	}
	m.states[a] = &ioState{vars: []*solver.Variable{v}}
	return nil
}

// Finalize implements Model: it removes the Io's variable from its
// direction and aggregate constraints.
func (m *DiskModel) Finalize(a *activity.Activity) {
	st, ok := m.states[a]
	if !ok {
		return
	}
	io := a.Payload.(*activity.Io)
	dc, ok := m.disks[io.Disk]
	if ok {
		dir := dc.read
		if io.Op == activity.IoWrite {
			dir = dc.write
		}
		dir.RemoveMember(st.vars[0])
		dc.aggregate.RemoveMember(st.vars[0])
	}
	delete(m.states, a)
}

// Update implements Model.
func (m *DiskModel) Update(dt float64, eps float64) []*activity.Activity {
	var completed []*activity.Activity
	for a, st := range m.states {
		if a.State != activity.StateStarted {
			continue
		}
		a.Remaining -= st.vars[0].Rate() * dt
		if a.Remaining < 0 {
			a.Remaining = 0
		}
		if a.Remaining <= eps {
			completed = append(completed, a)
		}
	}
	return completed
}

// Constraints returns every registered disk's read, write, and aggregate
// constraints.
func (m *DiskModel) Constraints() []*solver.Constraint {
	out := make([]*solver.Constraint, 0, len(m.disks)*3)
	for _, dc := range m.disks {
		out = append(out, dc.read, dc.write, dc.aggregate)
	}
	return out
}
