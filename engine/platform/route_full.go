package platform

// FullRouter answers routing queries from a dense, explicitly populated
// table: every (src, dst) pair's route is supplied up front by the
// platform builder (spec.md §4.1, "full: O(1) lookup in a dense N×N
// table").
type FullRouter struct {
	table map[[2]string]Route
}

// NewFullRouter returns an empty FullRouter; routes are registered with Add.
func NewFullRouter() *FullRouter {
	return &FullRouter{table: make(map[[2]string]Route)}
}

// Add registers the route from src to dst. If symmetric is true, the
// reverse direction is registered with the same links in reverse order.
func (r *FullRouter) Add(src, dst string, links []string, latency float64, symmetric bool) {
	r.table[[2]string{src, dst}] = Route{Links: append([]string(nil), links...), Latency: latency}
	if symmetric {
		rev := make([]string, len(links))
		for i, l := range links {
			rev[len(links)-1-i] = l
		}
		r.table[[2]string{dst, src}] = Route{Links: rev, Latency: latency}
	}
}

// Route implements Router.
func (r *FullRouter) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	route, ok := r.table[[2]string{src, dst}]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	return route, nil
}

// Seal is a no-op: FullRouter has nothing left to precompute.
func (r *FullRouter) Seal() error { return nil }
