package platform

import "fmt"

// Route is the ordered list of Links traversed between two endpoints plus
// the accumulated latency (spec.md GLOSSARY, "Route").
type Route struct {
	Links   []string
	Latency float64
}

// RoutingMethod selects a Zone's routing variant (spec.md §3, Zone).
type RoutingMethod string

const (
	RoutingFull             RoutingMethod = "full"
	RoutingFloyd            RoutingMethod = "floyd"
	RoutingDijkstra         RoutingMethod = "dijkstra"
	RoutingStar             RoutingMethod = "star"
	RoutingClusterFlat      RoutingMethod = "cluster-flat"
	RoutingClusterFatTree   RoutingMethod = "cluster-fat-tree"
	RoutingClusterTorus     RoutingMethod = "cluster-torus"
	RoutingClusterDragonfly RoutingMethod = "cluster-dragonfly"
	RoutingVivaldi          RoutingMethod = "vivaldi"
	RoutingWifi             RoutingMethod = "wifi"
	RoutingEmpty            RoutingMethod = "empty"
)

// Router answers "enumerate the ordered list of Links traversed from
// endpoint A to endpoint B and their sum latency" for one zone (spec.md
// §4.1). Seal precomputes whatever the variant needs once the zone's
// topology is fixed; it is a no-op for variants with nothing to
// precompute.
type Router interface {
	Route(src, dst string) (Route, error)
	Seal() error
}

// ErrNoRoute reports that no path exists between src and dst within a
// zone's routing method.
type ErrNoRoute struct {
	Src, Dst string
}

func (e ErrNoRoute) Error() string {
	return fmt.Sprintf("no route from %s to %s", e.Src, e.Dst)
}

// ErrLinkOff reports that a route traverses a link that is currently off
// (spec.md §5: host/link off cascades to route failures).
type ErrLinkOff struct {
	Link string
}

func (e ErrLinkOff) Error() string {
	return fmt.Sprintf("link %s is off", e.Link)
}
