package engine

import "github.com/simgrid/simgrid-go/engine/activity"

// Io starts a read or write of size bytes against disk (spec.md §4.3,
// "Disk model").
func (e *Engine) Io(disk string, op activity.IoOp, size float64) (activity.Handle, error) {
	h, err := e.Disk.CreateIo(e.Arena, disk, op, size)
	if err != nil {
		return activity.Handle{}, err
	}
	if err := e.Disk.Start(e.Clock, e.Arena.MustGet(h)); err != nil {
		return activity.Handle{}, err
	}
	return h, nil
}
