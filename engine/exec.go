package engine

import "github.com/simgrid/simgrid-go/engine/activity"

// Exec starts a single-host compute activity of cost FLOPs on host
// (spec.md §4.3, "CPU model"). Unlike Comm, an Exec needs no rendez-vous:
// it can be started the instant it is created.
func (e *Engine) Exec(host string, cost float64) (activity.Handle, error) {
	h, err := e.CPU.CreateExec(e.Arena, host, cost)
	if err != nil {
		return activity.Handle{}, err
	}
	if err := e.CPU.Start(e.Clock, e.Arena.MustGet(h)); err != nil {
		return activity.Handle{}, err
	}
	return h, nil
}

// ParallelExec starts a multi-host compute activity spanning hosts, one
// FLOP amount per host and an inter-host byte matrix (spec.md §4.4,
// "Parallel Exec").
func (e *Engine) ParallelExec(hosts []string, flops []float64, bytes [][]float64) (activity.Handle, error) {
	h, err := e.CPU.CreateParallelExec(e.Arena, hosts, flops, bytes)
	if err != nil {
		return activity.Handle{}, err
	}
	if err := e.CPU.Start(e.Clock, e.Arena.MustGet(h)); err != nil {
		return activity.Handle{}, err
	}
	return h, nil
}
