package activity

// Exec is the payload for a compute activity: a FLOP cost to run on one or
// more hosts. A single-host Exec has len(Hosts) == 1; a Parallel Exec spans
// N hosts with a per-host FLOP vector and an N x N inter-host byte matrix
// (spec.md §4.4, "Parallel Exec").
type Exec struct {
	Hosts []string  // host names this exec runs on
	Flops []float64 // per-host FLOP amount, parallel to Hosts
	Bytes [][]float64

	Bound    float64 // optional personal rate cap; 0 means unbounded
	HasBound bool
}

// NewExec allocates a single-host Exec activity with the given FLOP cost.
func NewExec(ar *Arena, host string, cost float64) Handle {
	h := ar.New(KindExec, &Exec{Hosts: []string{host}, Flops: []float64{cost}})
	ar.MustGet(h).Remaining = cost
	return h
}

// NewParallelExec allocates a multi-host Exec with a per-host FLOP vector
// and an NxN inter-host byte matrix.
func NewParallelExec(ar *Arena, hosts []string, flops []float64, bytes [][]float64) Handle {
	h := ar.New(KindExec, &Exec{Hosts: hosts, Flops: flops, Bytes: bytes})
	if len(flops) > 0 {
		ar.MustGet(h).Remaining = flops[0]
	}
	return h
}

// SetBound caps the Exec's instantaneous rate.
func (e *Exec) SetBound(b float64) {
	e.Bound = b
	e.HasBound = true
}

// Joint reports whether every per-host FLOP entry has reached zero (the
// joint-completion rule for Parallel Exec, spec.md §4.4).
func (e *Exec) Joint(eps float64) bool {
	for _, f := range e.Flops {
		if f > eps {
			return false
		}
	}
	return true
}
