package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_ClusterProducesRoutableHosts(t *testing.T) {
	b := NewBuilder("root", RoutingEmpty, NewEmptyRouter())
	b.Cluster("root", "rack1", "node", 4, 1e9, 0.0001, 1e9, 0.001, "node0")

	p, err := b.Build()
	require.NoError(t, err)

	route, err := p.Route("node1", "node2")
	require.NoError(t, err)
	assert.Len(t, route.Links, 3)

	h, err := p.Host("node0")
	require.NoError(t, err)
	assert.Equal(t, 1e9, h.Speed())
}

func TestBuilder_DiskRequiresExistingHost(t *testing.T) {
	b := NewBuilder("root", RoutingEmpty, NewEmptyRouter())
	b.Disk("root", "d1", "nosuchhost", 1e8, 1e8)

	_, err := b.Build()
	assert.Error(t, err)
}

func TestBuilder_VMPinsToPhysicalHost(t *testing.T) {
	b := NewBuilder("root", RoutingEmpty, NewEmptyRouter())
	b.Host("root", "phys1", 1e9, 4)
	b.VM("root", "vm1", 2e9, 5e8, "phys1")

	p, err := b.Build()
	require.NoError(t, err)

	vm, err := p.VM("vm1")
	require.NoError(t, err)
	assert.Equal(t, "phys1", vm.PhysicalHost())
}
