// Package solver implements the max-min fair resource-sharing solver
// (spec.md §4.2): given a set of variables (one per active activity) and
// constraints (one per shared resource), it computes an instantaneous rate
// per variable such that every constraint's capacity is respected and the
// assignment is max-min fair with respect to variable priorities.
package solver

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Policy selects how a Constraint's per-share capacity is computed.
type Policy int

const (
	// PolicyShared couples every variable on the constraint into one
	// capacity budget (spec.md §4.2, the default).
	PolicyShared Policy = iota
	// PolicyFatpipe never couples variables: each flow sees the full
	// bandwidth, subject only to its own personal bound.
	PolicyFatpipe
	// PolicyWifi applies a user-settable per-(size,route,zone) weight;
	// it otherwise shares the constraint like PolicyShared.
	PolicyWifi
)

// DefaultEpsilon is the solver's default numerical tolerance
// (spec.md §4.2, "maxmin/precision").
const DefaultEpsilon = 1e-9

// WifiWeightFunc computes a per-station weight for a wifi-policy
// constraint, given the Comm's size and a caller-supplied route/zone
// context opaque to the solver.
type WifiWeightFunc func(size float64, ctx any) float64

// Variable is one activity's solver-visible state: its personal rate bound,
// priority, and a stable ID used to break ties deterministically.
type Variable struct {
	ID       uint64
	Priority float64 // 0 excludes the variable from sharing (suspended)
	Bound    float64 // personal rate cap; meaningful only if HasBound
	HasBound bool

	rate   float64
	frozen bool
}

// Rate returns the variable's solved instantaneous rate. Valid only after
// Solve returns.
func (v *Variable) Rate() float64 { return v.rate }

// SetPriority implements activity.SolverVariable, letting the activity
// kernel suspend/resume a running activity's share without knowing about
// the solver's internal Variable type.
func (v *Variable) SetPriority(p float64) { v.Priority = p }

// constraintMember links a Variable to one of the Constraints it
// contributes to, with a per-constraint weight.
type constraintMember struct {
	v      *Variable
	weight float64
}

// Constraint is one shared resource (a CPU core-group, a Link, a Disk
// read/write/aggregate budget).
type Constraint struct {
	ID     uint64
	Bound  float64 // total capacity
	Policy Policy
	Wifi   WifiWeightFunc

	members   []constraintMember
	remaining float64
}

// AddMember registers v as contributing to c with the given weight
// (spec.md §4.3: "weight = FLOP amount on that host" for CPU, "weight = 1
// by default" for network).
func (c *Constraint) AddMember(v *Variable, weight float64) {
	c.members = append(c.members, constraintMember{v: v, weight: weight})
}

// AddWifiMember registers v with a weight computed by the constraint's
// WifiWeightFunc from the Comm's size and an opaque route/zone context.
func (c *Constraint) AddWifiMember(v *Variable, size float64, ctx any) {
	weight := 1.0
	if c.Wifi != nil {
		weight = c.Wifi(size, ctx)
	}
	c.members = append(c.members, constraintMember{v: v, weight: weight})
}

// RemoveMember drops v from c's member list, used by resource models when
// an activity finalizes so the next Solve round no longer sees it
// (engine/resource calls this from Finalize).
func (c *Constraint) RemoveMember(v *Variable) {
	kept := c.members[:0]
	for _, m := range c.members {
		if m.v != v {
			kept = append(kept, m)
		}
	}
	c.members = kept
}

// Members returns the number of variables currently registered on c.
func (c *Constraint) Members() int { return len(c.members) }

// CollectVariables returns the de-duplicated set of variables registered
// across constraints, in first-seen order. Callers that only track
// constraints (the resource models each own one family's constraints) use
// this to build the `vars` argument Solve requires.
func CollectVariables(constraints []*Constraint) []*Variable {
	seen := make(map[*Variable]bool)
	var out []*Variable
	for _, c := range constraints {
		for _, m := range c.members {
			if !seen[m.v] {
				seen[m.v] = true
				out = append(out, m.v)
			}
		}
	}
	return out
}

// Solve runs the progressive-filling max-min algorithm of spec.md §4.2 over
// the given variables and constraints, writing each variable's solved
// Rate(). eps <= 0 selects DefaultEpsilon.
//
// Fatpipe constraints never compete for the shared fair-share computation
// (spec.md §4.2: "the constraint never couples variables"); instead each of
// their members' effective personal bound is tightened to min(existing
// bound, constraint bound) before the shared/wifi constraints are solved.
func Solve(vars []*Variable, constraints []*Constraint, eps float64) {
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	effectiveBound := make(map[*Variable]float64, len(vars))
	for _, v := range vars {
		v.rate = 0
		v.frozen = v.Priority <= eps
		effectiveBound[v] = personalBound(v)
	}

	var shared []*Constraint
	for _, c := range constraints {
		if c.Policy == PolicyFatpipe {
			for _, m := range c.members {
				if c.Bound < effectiveBound[m.v] {
					effectiveBound[m.v] = c.Bound
				}
			}
			continue
		}
		c.remaining = c.Bound
		shared = append(shared, c)
	}
	// Deterministic iteration order: sort once so tie breaks never depend
	// on caller-supplied slice order (spec.md §9: "break ties by
	// deterministic constraint ID").
	sort.Slice(shared, func(i, j int) bool { return shared[i].ID < shared[j].ID })

	active := make(map[*Variable]bool, len(vars))
	for _, v := range vars {
		if !v.frozen {
			active[v] = true
		}
	}

	for len(active) > 0 {
		fStar, bottleneck := fairShare(shared, active, eps)

		cappedAny := false
		for v := range active {
			bound := effectiveBound[v]
			if bound >= mathInf {
				continue
			}
			candidate := fStar
			if v.Priority > eps {
				candidate = fStar * weightOf(bottleneck, v) / v.Priority
			}
			if candidate >= bound-eps {
				freeze(v, bound, active, shared)
				cappedAny = true
			}
		}
		if cappedAny {
			continue
		}

		if bottleneck == nil {
			// No shared constraint left and nothing personally bounded:
			// every remaining active variable is unconstrained (a
			// malformed model, since every started activity sits on at
			// least one constraint in practice). Freeze at zero rather
			// than loop forever.
			for v := range active {
				freeze(v, 0, active, shared)
			}
			continue
		}

		for _, m := range bottleneck.members {
			if !active[m.v] {
				continue
			}
			rate := fStar
			if m.v.Priority > eps {
				rate = fStar * m.weight / m.v.Priority
			}
			freeze(m.v, rate, active, shared)
		}
	}
}

var mathInf = math.Inf(1)

func personalBound(v *Variable) float64 {
	if v.HasBound {
		return v.Bound
	}
	return mathInf
}

func weightOf(c *Constraint, v *Variable) float64 {
	if c == nil {
		return 1
	}
	for _, m := range c.members {
		if m.v == v {
			return m.weight
		}
	}
	return 1
}

// fairShare computes f* = min_c remaining(c)/sum(weight/priority) across
// constraints with at least one active member, and returns the achieving
// constraint for tie-break and weight lookups.
func fairShare(constraints []*Constraint, active map[*Variable]bool, eps float64) (float64, *Constraint) {
	best := mathInf
	var bestC *Constraint
	for _, c := range constraints {
		var denom float64
		any := false
		for _, m := range c.members {
			if !active[m.v] {
				continue
			}
			any = true
			if m.v.Priority > eps {
				denom += m.weight / m.v.Priority
			}
		}
		if !any || denom <= eps {
			continue
		}
		s := c.remaining / denom
		if s < best-eps {
			best = s
			bestC = c
		}
	}
	return best, bestC
}

// freeze fixes v's rate, removes it from the active set, and subtracts its
// usage from every shared constraint it belongs to.
func freeze(v *Variable, rate float64, active map[*Variable]bool, constraints []*Constraint) {
	v.rate = rate
	v.frozen = true
	delete(active, v)
	usage := usageVector(constraints, v, rate)
	for i, c := range constraints {
		c.remaining -= usage.AtVec(i)
	}
}

// usageVector builds a dense per-constraint usage row for v using gonum so
// the subtraction amortizes across many constraints in one pass, mirroring
// how engine/platform's Floyd-Warshall router treats its table as one
// matrix rather than per-cell scalars.
func usageVector(constraints []*Constraint, v *Variable, rate float64) *mat.VecDense {
	data := make([]float64, len(constraints))
	for i, c := range constraints {
		for _, m := range c.members {
			if m.v == v {
				data[i] = m.weight * rate
				break
			}
		}
	}
	return mat.NewVecDense(len(data), data)
}
