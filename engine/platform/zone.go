package platform

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Zone is a recursive container of hosts, links, child zones, and a
// routing method (spec.md §3, "Zone"). Each zone answers routing queries
// for the endpoints it directly contains; queries that cross a zone
// boundary climb to the least common ancestor via Platform.Route.
type Zone struct {
	ID       string
	parent   *Zone
	children map[string]*Zone

	hosts map[string]*Host
	links map[string]*Link
	disks map[string]*Disk

	routingMethod RoutingMethod
	router        Router

	// gatewayUp is the endpoint, valid within this zone's own router,
	// that the parent zone uses to reach this zone (empty for the root).
	gatewayUp string
	// gatewayDown maps a child zone's ID to the endpoint, valid within
	// this zone's own router, that the parent side of the boundary uses
	// to reach it (spec.md §4.1: "concatenating sub-paths through
	// gateway endpoints").
	gatewayDown map[string]string

	sealed bool
}

// NewZone builds an unsealed Zone with the given routing method.
func NewZone(id string, method RoutingMethod, router Router) *Zone {
	return &Zone{
		ID:            id,
		children:      make(map[string]*Zone),
		hosts:         make(map[string]*Host),
		links:         make(map[string]*Link),
		disks:         make(map[string]*Disk),
		routingMethod: method,
		router:        router,
		gatewayDown:   make(map[string]string),
	}
}

// ErrSealed is returned by any topology mutation attempted after Seal
// (spec.md §4.1: "Sealing: a zone is sealed after construction; subsequent
// topology mutations fail").
type ErrSealed struct{ Zone string }

func (e ErrSealed) Error() string { return fmt.Sprintf("zone %s: already sealed", e.Zone) }

// AddHost registers a host as directly owned by this zone.
func (z *Zone) AddHost(h *Host) error {
	if z.sealed {
		return ErrSealed{z.ID}
	}
	z.hosts[h.ID] = h
	return nil
}

// AddLink registers a link as directly owned by this zone.
func (z *Zone) AddLink(l *Link) error {
	if z.sealed {
		return ErrSealed{z.ID}
	}
	z.links[l.ID] = l
	return nil
}

// AddDisk registers a disk as directly owned by this zone.
func (z *Zone) AddDisk(d *Disk) error {
	if z.sealed {
		return ErrSealed{z.ID}
	}
	z.disks[d.ID] = d
	return nil
}

// AddChild attaches child as a sub-zone, reachable at gatewayEndpoint (an
// endpoint name resolvable both by child's own router, as its gatewayUp,
// and by z's router, as the entry point representing child).
func (z *Zone) AddChild(child *Zone, gatewayEndpoint string) error {
	if z.sealed {
		return ErrSealed{z.ID}
	}
	z.children[child.ID] = child
	z.gatewayDown[child.ID] = gatewayEndpoint
	child.parent = z
	child.gatewayUp = gatewayEndpoint
	return nil
}

// Host/Link/Disk look up a directly-owned resource by name.
func (z *Zone) Host(id string) (*Host, bool) { h, ok := z.hosts[id]; return h, ok }
func (z *Zone) Link(id string) (*Link, bool) { l, ok := z.links[id]; return l, ok }
func (z *Zone) Disk(id string) (*Disk, bool) { d, ok := z.disks[id]; return d, ok }

// Sealed reports whether the zone has been sealed.
func (z *Zone) Sealed() bool { return z.sealed }

// Seal recursively seals this zone's children and then itself, running
// each child's Seal concurrently via errgroup (spec.md §9's "bounded
// fan-out" is the one legitimate pre-cooperative-phase concurrency point:
// precomputing each zone's routing table is pure and side-effect-free
// until Seal assigns the result, so it is safe to parallelize across
// independent sub-zones before the cooperative engine loop starts).
func (z *Zone) Seal() error {
	return z.sealWithGroup(context.Background())
}

func (z *Zone) sealWithGroup(ctx context.Context) error {
	if z.sealed {
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	for _, child := range z.children {
		child := child
		g.Go(func() error { return child.sealWithGroup(ctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := z.router.Seal(); err != nil {
		return fmt.Errorf("zone %s: %w", z.ID, err)
	}
	z.sealed = true
	return nil
}

// ancestors returns z and every ancestor up to and including the root, in
// that (leaf-to-root) order.
func (z *Zone) ancestors() []*Zone {
	var chain []*Zone
	for cur := z; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}
