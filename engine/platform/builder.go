package platform

import "fmt"

// Builder assembles a Platform programmatically. It is the equivalent of
// the platform-file XML grammar (spec.md §6: "the core only defines the
// abstract grammar; an equivalent programmatic builder API must exist");
// an XML front end, if one is ever added, would parse a file into a
// sequence of these same calls.
type Builder struct {
	platform *Platform
	zones    map[string]*Zone
	errs     []error
}

// NewBuilder starts a Builder whose root zone uses the given routing
// method and Router implementation.
func NewBuilder(rootID string, method RoutingMethod, router Router) *Builder {
	root := NewZone(rootID, method, router)
	return &Builder{
		platform: NewPlatform(root),
		zones:    map[string]*Zone{rootID: root},
	}
}

func (b *Builder) fail(err error) { b.errs = append(b.errs, err) }

// Zone declares a child zone of parentID, using method/router for
// internal routing, reachable from the parent at gatewayEndpoint.
func (b *Builder) Zone(parentID, id string, method RoutingMethod, router Router, gatewayEndpoint string) *Builder {
	parent, ok := b.zones[parentID]
	if !ok {
		b.fail(ErrNotFound{"zone", parentID})
		return b
	}
	child := NewZone(id, method, router)
	if err := parent.AddChild(child, gatewayEndpoint); err != nil {
		b.fail(err)
		return b
	}
	b.zones[id] = child
	b.platform.RegisterZone(child)
	return b
}

// Host declares a host in zoneID with the given base speed and core count.
func (b *Builder) Host(zoneID, id string, speedFlops float64, cores int) *Builder {
	zone, ok := b.zones[zoneID]
	if !ok {
		b.fail(ErrNotFound{"zone", zoneID})
		return b
	}
	h := NewHost(id, speedFlops, cores)
	if err := b.platform.RegisterHost(zone, h); err != nil {
		b.fail(err)
	}
	return b
}

// Link declares a link in zoneID.
func (b *Builder) Link(zoneID, id string, bandwidth, latency float64, policy SharingPolicy) *Builder {
	zone, ok := b.zones[zoneID]
	if !ok {
		b.fail(ErrNotFound{"zone", zoneID})
		return b
	}
	l := NewLink(id, bandwidth, latency, policy)
	if err := b.platform.RegisterLink(zone, l); err != nil {
		b.fail(err)
	}
	return b
}

// Disk declares a disk attached to hostID, in the same zone as that host.
// Spec.md §4.1: "Disks are attached to hosts at creation. Hosts refusing
// to find their named disks/links cause an explicit platform error."
func (b *Builder) Disk(zoneID, id, hostID string, readBW, writeBW float64) *Builder {
	zone, ok := b.zones[zoneID]
	if !ok {
		b.fail(ErrNotFound{"zone", zoneID})
		return b
	}
	if _, err := b.platform.Host(hostID); err != nil {
		b.fail(fmt.Errorf("disk %s: %w", id, err))
		return b
	}
	d := NewDisk(id, hostID, readBW, writeBW)
	if err := b.platform.RegisterDisk(zone, d); err != nil {
		b.fail(err)
	}
	return b
}

// VM declares a virtual machine pinned to physicalHost.
func (b *Builder) VM(zoneID, id string, ramBytes, reservationFlops float64, physicalHost string) *Builder {
	zone, ok := b.zones[zoneID]
	if !ok {
		b.fail(ErrNotFound{"zone", zoneID})
		return b
	}
	if _, err := b.platform.Host(physicalHost); err != nil {
		b.fail(fmt.Errorf("vm %s: %w", id, err))
		return b
	}
	vm := NewVM(id, ramBytes, reservationFlops, physicalHost)
	if err := b.platform.RegisterVM(zone, vm); err != nil {
		b.fail(err)
	}
	return b
}

// Cluster is the programmatic equivalent of the `<cluster>` XML shorthand:
// it creates n hosts named fmt.Sprintf(prefix+"%d", i) for i in
// [0,n) plus a backbone link, all inside a single new flat-routed zone.
func (b *Builder) Cluster(parentID, zoneID, hostPrefix string, n int, speedFlops, hostLatency, bbBandwidth, bbLatency float64, gatewayEndpoint string) *Builder {
	hostIDs := make([]string, n)
	for i := range hostIDs {
		hostIDs[i] = fmt.Sprintf("%s%d", hostPrefix, i)
	}
	router := NewClusterFlatRouter(zoneID, hostIDs, hostLatency, bbLatency)
	b.Zone(parentID, zoneID, RoutingClusterFlat, router, gatewayEndpoint)
	for i, id := range hostIDs {
		b.Host(zoneID, id, speedFlops, 1)
		b.Link(zoneID, fmt.Sprintf("%s-uplink-%d", zoneID, i), bbBandwidth, hostLatency, SharingShared)
	}
	b.Link(zoneID, router.BackboneLink, bbBandwidth, bbLatency, SharingShared)
	return b
}

// Build seals the assembled platform and returns it, or the first error
// recorded during assembly.
func (b *Builder) Build() (*Platform, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if err := b.platform.Seal(); err != nil {
		return nil, err
	}
	return b.platform, nil
}
