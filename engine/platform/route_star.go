package platform

// StarRouter models a hub-and-spoke zone: each endpoint contributes an
// up-path to the hub and a down-path from the hub; routing between two
// endpoints concatenates up(src) and down(dst), removing any link that
// would otherwise appear twice (spec.md §4.1, "star").
type StarRouter struct {
	up      map[string][]string
	upLat   map[string]float64
	down    map[string][]string
	downLat map[string]float64
}

// NewStarRouter returns an empty StarRouter; endpoints are registered
// with AddHost.
func NewStarRouter() *StarRouter {
	return &StarRouter{
		up:      make(map[string][]string),
		upLat:   make(map[string]float64),
		down:    make(map[string][]string),
		downLat: make(map[string]float64),
	}
}

// AddHost registers host's up-path (toward the hub) and down-path (from
// the hub), each with its own accumulated latency.
func (r *StarRouter) AddHost(host string, upLinks []string, upLatency float64, downLinks []string, downLatency float64) {
	r.up[host] = upLinks
	r.upLat[host] = upLatency
	r.down[host] = downLinks
	r.downLat[host] = downLatency
}

// Route implements Router.
func (r *StarRouter) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	up, ok := r.up[src]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	down, ok := r.down[dst]
	if !ok {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}

	seen := make(map[string]bool, len(up)+len(down))
	links := make([]string, 0, len(up)+len(down))
	for _, l := range up {
		if !seen[l] {
			seen[l] = true
			links = append(links, l)
		}
	}
	for _, l := range down {
		if !seen[l] {
			seen[l] = true
			links = append(links, l)
		}
	}
	return Route{Links: links, Latency: r.upLat[src] + r.downLat[dst]}, nil
}

// Seal is a no-op: StarRouter has nothing to precompute beyond the
// up/down tables AddHost already builds.
func (r *StarRouter) Seal() error { return nil }
