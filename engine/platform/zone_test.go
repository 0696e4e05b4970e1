package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZone_MutationRejectedAfterSeal(t *testing.T) {
	z := NewZone("z", RoutingEmpty, NewEmptyRouter())
	require.NoError(t, z.Seal())
	assert.True(t, z.Sealed())

	err := z.AddHost(NewHost("h1", 1e9, 1))
	assert.ErrorAs(t, err, &ErrSealed{})
}

func TestZone_SealRecursesIntoChildrenConcurrently(t *testing.T) {
	root := NewZone("root", RoutingEmpty, NewEmptyRouter())
	for _, id := range []string{"c1", "c2", "c3"} {
		child := NewZone(id, RoutingEmpty, NewEmptyRouter())
		require.NoError(t, root.AddChild(child, id+"-gw"))
	}
	require.NoError(t, root.Seal())
	for _, id := range []string{"c1", "c2", "c3"} {
		child := root.children[id]
		assert.True(t, child.Sealed())
	}
	assert.True(t, root.Sealed())
}

func TestPlatform_RouteWithinSameZoneUsesZoneRouter(t *testing.T) {
	full := NewFullRouter()
	full.Add("A", "B", []string{"l1"}, 0.001, true)
	zone := NewZone("z", RoutingFull, full)
	p := NewPlatform(zone)
	require.NoError(t, p.RegisterHost(zone, NewHost("A", 1e9, 1)))
	require.NoError(t, p.RegisterHost(zone, NewHost("B", 1e9, 1)))
	require.NoError(t, p.Seal())

	route, err := p.Route("A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, route.Links)
}

func TestPlatform_RouteAcrossZonesClimbsToLCA(t *testing.T) {
	rootRouter := NewFullRouter()
	rootRouter.Add("gwA", "gwB", []string{"backbone"}, 0.01, true)
	root := NewZone("root", RoutingFull, rootRouter)
	p := NewPlatform(root)

	zoneA := NewZone("zoneA", RoutingEmpty, NewEmptyRouter())
	zoneB := NewZone("zoneB", RoutingEmpty, NewEmptyRouter())
	require.NoError(t, root.AddChild(zoneA, "gwA"))
	require.NoError(t, root.AddChild(zoneB, "gwB"))
	p.RegisterZone(zoneA)
	p.RegisterZone(zoneB)

	require.NoError(t, p.RegisterHost(zoneA, NewHost("gwA", 1e9, 1)))
	require.NoError(t, p.RegisterHost(zoneB, NewHost("gwB", 1e9, 1)))
	require.NoError(t, p.Seal())

	route, err := p.Route("gwA", "gwB")
	require.NoError(t, err)
	assert.Equal(t, []string{"backbone"}, route.Links)
	assert.InDelta(t, 0.01, route.Latency, 1e-9)
}

func TestPlatform_RouteUnknownHostErrors(t *testing.T) {
	root := NewZone("root", RoutingEmpty, NewEmptyRouter())
	p := NewPlatform(root)
	require.NoError(t, p.RegisterHost(root, NewHost("A", 1e9, 1)))
	require.NoError(t, p.Seal())

	_, err := p.Route("A", "ghost")
	assert.Error(t, err)
}
