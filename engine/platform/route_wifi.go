package platform

// WifiRouter models a single access point zone: every station routes
// through the zone's one wifi Link, whose per-station weighting is
// handled by the resource model's wifi policy, not by routing (spec.md
// §4.1/§4.2, "wifi").
type WifiRouter struct {
	AccessPointLink string
	stations        map[string]bool
}

// NewWifiRouter builds a WifiRouter over the named access-point link.
func NewWifiRouter(apLink string) *WifiRouter {
	return &WifiRouter{AccessPointLink: apLink, stations: make(map[string]bool)}
}

// AddStation registers a host as associated with this access point.
func (r *WifiRouter) AddStation(host string) { r.stations[host] = true }

// Route implements Router.
func (r *WifiRouter) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	if !r.stations[src] {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	if !r.stations[dst] {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}
	return Route{Links: []string{r.AccessPointLink}}, nil
}

// Seal is a no-op: WifiRouter has nothing to precompute.
func (r *WifiRouter) Seal() error { return nil }
