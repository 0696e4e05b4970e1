package platform

import "math"

// VivaldiRouter has no links: the latency between two endpoints is the
// Euclidean distance between their stored coordinates plus each
// endpoint's height term (spec.md §4.1, "vivaldi: no links; the latency
// is the Euclidean distance in a stored coordinate plus a per-node height
// term").
type VivaldiRouter struct {
	coords map[string][3]float64 // x, y, height
}

// NewVivaldiRouter returns an empty VivaldiRouter; coordinates are
// registered with AddHost.
func NewVivaldiRouter() *VivaldiRouter {
	return &VivaldiRouter{coords: make(map[string][3]float64)}
}

// AddHost registers host's Vivaldi coordinate and height term.
func (r *VivaldiRouter) AddHost(host string, x, y, height float64) {
	r.coords[host] = [3]float64{x, y, height}
}

// Route implements Router. A Vivaldi zone traverses no Links; the route
// is empty and the latency is computed directly.
func (r *VivaldiRouter) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	a, ok := r.coords[src]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	b, ok := r.coords[dst]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	dx, dy := a[0]-b[0], a[1]-b[1]
	euclidean := math.Sqrt(dx*dx + dy*dy)
	return Route{Latency: euclidean + a[2] + b[2]}, nil
}

// Seal is a no-op: VivaldiRouter has nothing to precompute.
func (r *VivaldiRouter) Seal() error { return nil }
