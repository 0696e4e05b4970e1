package platform

import "fmt"

// Platform is the full routed topology: a tree of Zones plus flat
// by-name registries over every host, link, disk, VM, and zone in the
// tree (spec.md §3: "lookup by name (host, link, disk, zone, actor)").
// It is the thing a Builder produces and the engine queries at run time.
type Platform struct {
	Root *Zone

	hostZone map[string]*Zone
	hosts    map[string]*Host
	links    map[string]*Link
	disks    map[string]*Disk
	vms      map[string]*VM
	zones    map[string]*Zone
}

// NewPlatform wraps root as the top of a new Platform.
func NewPlatform(root *Zone) *Platform {
	p := &Platform{
		Root:     root,
		hostZone: make(map[string]*Zone),
		hosts:    make(map[string]*Host),
		links:    make(map[string]*Link),
		disks:    make(map[string]*Disk),
		vms:      make(map[string]*VM),
		zones:    make(map[string]*Zone),
	}
	p.zones[root.ID] = root
	return p
}

// ErrNotFound is returned by a by-name lookup that misses.
type ErrNotFound struct{ Kind, Name string }

func (e ErrNotFound) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.Name) }

// RegisterZone adds zone to the flat by-name zone registry. Callers must
// also have attached it to its parent via Zone.AddChild.
func (p *Platform) RegisterZone(zone *Zone) { p.zones[zone.ID] = zone }

// RegisterHost adds h to zone and to the flat by-name registry.
func (p *Platform) RegisterHost(zone *Zone, h *Host) error {
	if err := zone.AddHost(h); err != nil {
		return err
	}
	p.hosts[h.ID] = h
	p.hostZone[h.ID] = zone
	return nil
}

// RegisterLink adds l to zone and to the flat by-name registry.
func (p *Platform) RegisterLink(zone *Zone, l *Link) error {
	if err := zone.AddLink(l); err != nil {
		return err
	}
	p.links[l.ID] = l
	return nil
}

// RegisterDisk adds d to zone and to the flat by-name registry.
func (p *Platform) RegisterDisk(zone *Zone, d *Disk) error {
	if err := zone.AddDisk(d); err != nil {
		return err
	}
	p.disks[d.ID] = d
	return nil
}

// RegisterVM adds a VM to the flat by-name registry, and to hostZone so it
// routes like any other host (a VM is itself an endpoint; spec.md §3).
func (p *Platform) RegisterVM(zone *Zone, vm *VM) error {
	if err := zone.AddHost(vm.Host); err != nil {
		return err
	}
	p.vms[vm.ID] = vm
	p.hostZone[vm.ID] = zone
	return nil
}

func (p *Platform) Host(id string) (*Host, error) {
	h, ok := p.hosts[id]
	if !ok {
		return nil, ErrNotFound{"host", id}
	}
	return h, nil
}

func (p *Platform) Link(id string) (*Link, error) {
	l, ok := p.links[id]
	if !ok {
		return nil, ErrNotFound{"link", id}
	}
	return l, nil
}

func (p *Platform) Disk(id string) (*Disk, error) {
	d, ok := p.disks[id]
	if !ok {
		return nil, ErrNotFound{"disk", id}
	}
	return d, nil
}

func (p *Platform) VM(id string) (*VM, error) {
	vm, ok := p.vms[id]
	if !ok {
		return nil, ErrNotFound{"vm", id}
	}
	return vm, nil
}

// AllHosts returns every registered host, for a caller (the engine) that
// needs to seed a resource model from a sealed platform.
func (p *Platform) AllHosts() map[string]*Host { return p.hosts }

// AllLinks returns every registered link.
func (p *Platform) AllLinks() map[string]*Link { return p.links }

// AllDisks returns every registered disk.
func (p *Platform) AllDisks() map[string]*Disk { return p.disks }

func (p *Platform) Zone(id string) (*Zone, error) {
	z, ok := p.zones[id]
	if !ok {
		return nil, ErrNotFound{"zone", id}
	}
	return z, nil
}

// Seal freezes the whole platform: every zone's routing tables are
// precomputed, bottom-up, and further topology mutation is rejected.
func (p *Platform) Seal() error { return p.Root.Seal() }

// Route resolves the path between any two endpoints in the platform. If
// both live in the same zone, that zone's own router answers directly.
// Otherwise the two zones are climbed to their least common ancestor and
// the sub-paths are concatenated through the gateway endpoints recorded
// at each level (spec.md §4.1).
func (p *Platform) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	szone, ok := p.hostZone[src]
	if !ok {
		return Route{}, ErrNotFound{"host", src}
	}
	dzone, ok := p.hostZone[dst]
	if !ok {
		return Route{}, ErrNotFound{"host", dst}
	}
	if szone == dzone {
		return szone.router.Route(src, dst)
	}

	sChain := szone.ancestors()
	dChain := dzone.ancestors()
	dDepth := make(map[*Zone]int, len(dChain))
	for i, z := range dChain {
		dDepth[z] = i
	}
	var lca *Zone
	for _, z := range sChain {
		if _, ok := dDepth[z]; ok {
			lca = z
			break
		}
	}
	if lca == nil {
		return Route{}, ErrNoRoute{Src: src, Dst: dst}
	}

	srcEndpoint, srcLinks, srcLat, err := climbToGateway(src, szone, lca)
	if err != nil {
		return Route{}, err
	}
	dstEndpoint, dstLinks, dstLat, err := climbToGateway(dst, dzone, lca)
	if err != nil {
		return Route{}, err
	}

	mid, err := lca.router.Route(srcEndpoint, dstEndpoint)
	if err != nil {
		return Route{}, err
	}

	links := make([]string, 0, len(srcLinks)+len(mid.Links)+len(dstLinks))
	links = append(links, srcLinks...)
	links = append(links, mid.Links...)
	for i := len(dstLinks) - 1; i >= 0; i-- {
		links = append(links, dstLinks[i])
	}
	return Route{Links: links, Latency: srcLat + mid.Latency + dstLat}, nil
}

// climbToGateway routes from endpoint, inside zone, up to (but not
// through) target, returning the endpoint name by which target's router
// knows this path's origin, plus the accumulated links and latency.
func climbToGateway(endpoint string, zone, target *Zone) (string, []string, float64, error) {
	var links []string
	var lat float64
	cur := endpoint
	for z := zone; z != target; z = z.parent {
		if z == nil {
			return "", nil, 0, ErrNoRoute{Src: endpoint, Dst: target.ID}
		}
		r, err := z.router.Route(cur, z.gatewayUp)
		if err != nil {
			return "", nil, 0, err
		}
		links = append(links, r.Links...)
		lat += r.Latency
		cur = z.gatewayUp
	}
	return cur, links, lat, nil
}

// LinksLatency sums the stored latency attribute of every named link, the
// explicit query spec.md §4.2 lists alongside route resolution itself.
func (p *Platform) LinksLatency(links []string) (float64, error) {
	var total float64
	for _, id := range links {
		l, ok := p.links[id]
		if !ok {
			return 0, ErrNotFound{"link", id}
		}
		total += l.Latency
	}
	return total, nil
}
