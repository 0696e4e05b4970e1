package resource

import (
	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/solver"
)

// commState is the network model's bookkeeping for one started Comm: the
// link constraints it touches and the solver variable registered on each.
type commState struct {
	links []string
	vars  []*solver.Variable
}

// NetworkModel is the resource model for communication (spec.md §4.3,
// "Network model"): one constraint per Link. A Comm variable expands into
// every constraint on its route with weight 1 by default.
type NetworkModel struct {
	constraints map[string]*solver.Constraint
	wifiWeight  map[string]solver.WifiWeightFunc
	states      map[*activity.Activity]*commState

	// CrossTraffic reproduces TCP ACK interference: when true, each Comm
	// additionally registers a small reverse-direction weight on the link
	// it crosses (spec.md §4.3, "Cross-traffic toggle"). The nominal
	// factor matches ns-3/SimGrid's 0.05 default ACK-to-data ratio.
	CrossTraffic       bool
	CrossTrafficFactor float64
}

// NewNetworkModel returns an empty network model; links must be registered
// with RegisterLink before any Comm naming them can start.
func NewNetworkModel() *NetworkModel {
	return &NetworkModel{
		constraints:        make(map[string]*solver.Constraint),
		wifiWeight:         make(map[string]solver.WifiWeightFunc),
		states:             make(map[*activity.Activity]*commState),
		CrossTrafficFactor: 0.05,
	}
}

// RegisterLink creates the constraint for a link with the given peak
// bandwidth and sharing policy (spec.md §3, Link). A wifi-policy link must
// supply weight, the per-station weighting callback.
func (m *NetworkModel) RegisterLink(linkID string, bandwidth float64, policy solver.Policy, weight solver.WifiWeightFunc) *solver.Constraint {
	c := &solver.Constraint{ID: newID(), Bound: bandwidth, Policy: policy, Wifi: weight}
	m.constraints[linkID] = c
	if policy == solver.PolicyWifi {
		m.wifiWeight[linkID] = weight
	}
	return c
}

// SetBound updates a registered link's peak bandwidth in place, e.g. when a
// trace event or an explicit on/off toggle changes its capacity.
func (m *NetworkModel) SetBound(linkID string, bandwidth float64) error {
	c, ok := m.constraints[linkID]
	if !ok {
		return ErrUnassigned{Resource: "link", Name: linkID}
	}
	c.Bound = bandwidth
	return nil
}

// CreateComm allocates a Comm activity; its route must be set (typically
// by the platform graph's routing query) before Start is called.
func (m *NetworkModel) CreateComm(ar *activity.Arena, srcHost, dstHost string, size float64, payload any) activity.Handle {
	return activity.NewComm(ar, srcHost, dstHost, size, payload)
}

// Start implements Model: it registers the Comm's variable on every link
// along its route (spec.md §4.3). The Comm must already have a route set
// via (*activity.Comm).SetRoute.
func (m *NetworkModel) Start(now int64, a *activity.Activity) error {
	comm, ok := a.Payload.(*activity.Comm)
	if !ok {
		return ErrUnassigned{Resource: "link", Name: "<non-comm activity>"}
	}
	if len(comm.Route) == 0 {
		return ErrUnassigned{Resource: "link", Name: "<comm with no route>"}
	}
	v := newVariable(a.Priority, comm.Rate, comm.HasRate)
	links := make([]string, 0, len(comm.Route))
	for _, link := range comm.Route {
		c, ok := m.constraints[link]
		if !ok {
			return ErrUnassigned{Resource: "link", Name: link}
		}
		if c.Policy == solver.PolicyWifi {
			c.AddWifiMember(v, comm.Size, nil)
		} else {
			c.AddMember(v, 1)
		}
		links = append(links, link)
		if m.CrossTraffic {
			// Reverse-direction ACK traffic on the same link, a reduced
			// weight so it competes for but does not dominate the
			// constraint (spec.md §4.3).
			c.AddMember(v, m.CrossTrafficFactor)
		}
	}
	if err := a.Start(now, v); err != nil {
		return err
	}
	m.states[a] = &commState{links: links, vars: []*solver.Variable{v}}
	return nil
}

// Finalize implements Model: it removes the Comm's variable from every
// link constraint it was registered on.
func (m *NetworkModel) Finalize(a *activity.Activity) {
	st, ok := m.states[a]
	if !ok {
		return
	}
	for _, link := range st.links {
		if c, ok := m.constraints[link]; ok {
			for _, v := range st.vars {
				c.RemoveMember(v)
			}
		}
	}
	delete(m.states, a)
}

// Update implements Model. A Comm spends its leading latency before
// consuming any bandwidth (spec.md §4.3); once that latency has drained,
// the remaining byte count decreases at the solved rate.
func (m *NetworkModel) Update(dt float64, eps float64) []*activity.Activity {
	var completed []*activity.Activity
	for a, st := range m.states {
		if a.State != activity.StateStarted {
			continue
		}
		comm := a.Payload.(*activity.Comm)
		effectiveDt, pending := comm.ConsumeLatency(dt)
		if pending {
			continue
		}
		rate := st.vars[0].Rate()
		a.Remaining -= rate * effectiveDt
		if a.Remaining < 0 {
			a.Remaining = 0
		}
		if a.Remaining <= eps {
			completed = append(completed, a)
		}
	}
	return completed
}

// Constraints returns every registered link's constraint.
func (m *NetworkModel) Constraints() []*solver.Constraint {
	out := make([]*solver.Constraint, 0, len(m.constraints))
	for _, c := range m.constraints {
		out = append(out, c)
	}
	return out
}
