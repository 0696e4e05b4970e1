package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullRouter_SymmetricRoute(t *testing.T) {
	r := NewFullRouter()
	r.Add("A", "B", []string{"l1"}, 0.001, true)
	require.NoError(t, r.Seal())

	fwd, err := r.Route("A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, fwd.Links)

	back, err := r.Route("B", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, back.Links)
}

func TestFullRouter_UnknownPairErrors(t *testing.T) {
	r := NewFullRouter()
	_, err := r.Route("A", "Z")
	assert.Error(t, err)
}

func TestDijkstraRouter_ShortestPathPrefersFewerHops(t *testing.T) {
	r := NewDijkstraRouter()
	r.AddEdge("A", "B", "ab", 0.01)
	r.AddEdge("B", "C", "bc", 0.01)
	r.AddEdge("A", "C", "ac", 0.005)
	require.NoError(t, r.Seal())

	route, err := r.Route("A", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"ac"}, route.Links)
	assert.InDelta(t, 0.005, route.Latency, 1e-9)
}

func TestDijkstraRouter_NoPathErrors(t *testing.T) {
	r := NewDijkstraRouter()
	r.AddEdge("A", "B", "ab", 0.01)
	require.NoError(t, r.Seal())
	_, err := r.Route("A", "Z")
	assert.Error(t, err)
}

func TestFloydRouter_MatchesDijkstraOnSameTopology(t *testing.T) {
	f := NewFloydRouter()
	f.AddEdge("A", "B", "ab", 0.01)
	f.AddEdge("B", "C", "bc", 0.01)
	f.AddEdge("A", "C", "ac", 0.005)
	require.NoError(t, f.Seal())

	route, err := f.Route("A", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"ac"}, route.Links)
	assert.InDelta(t, 0.005, route.Latency, 1e-9)
}

func TestFloydRouter_MultiHopReconstructsFullPath(t *testing.T) {
	f := NewFloydRouter()
	f.AddEdge("A", "B", "ab", 0.01)
	f.AddEdge("B", "C", "bc", 0.02)
	require.NoError(t, f.Seal())

	route, err := f.Route("A", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "bc"}, route.Links)
	assert.InDelta(t, 0.03, route.Latency, 1e-9)
}

func TestStarRouter_ConcatenatesUpAndDownDeduped(t *testing.T) {
	r := NewStarRouter()
	r.AddHost("A", []string{"shared", "a-up"}, 0.001, []string{"a-down"}, 0.001)
	r.AddHost("B", []string{"b-up"}, 0.001, []string{"shared", "b-down"}, 0.001)
	require.NoError(t, r.Seal())

	route, err := r.Route("A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "a-up", "b-down"}, route.Links)
}

func TestVivaldiRouter_DistancePlusHeights(t *testing.T) {
	r := NewVivaldiRouter()
	r.AddHost("A", 0, 0, 0.001)
	r.AddHost("B", 3, 4, 0.002)
	require.NoError(t, r.Seal())

	route, err := r.Route("A", "B")
	require.NoError(t, err)
	assert.Empty(t, route.Links)
	assert.InDelta(t, 5.003, route.Latency, 1e-9)
}

func TestWifiRouter_BothEndpointsMustBeStations(t *testing.T) {
	r := NewWifiRouter("ap")
	r.AddStation("phone")
	require.NoError(t, r.Seal())

	_, err := r.Route("phone", "laptop")
	assert.Error(t, err)

	r.AddStation("laptop")
	route, err := r.Route("phone", "laptop")
	require.NoError(t, err)
	assert.Equal(t, []string{"ap"}, route.Links)
}

func TestEmptyRouter_OnlySameEndpointRoutes(t *testing.T) {
	r := NewEmptyRouter()
	route, err := r.Route("A", "A")
	require.NoError(t, err)
	assert.Empty(t, route.Links)

	_, err = r.Route("A", "B")
	assert.Error(t, err)
}

func TestClusterFatTreeRouter_SiblingsClimbOneLevel(t *testing.T) {
	hosts := []string{"h0", "h1", "h2", "h3"}
	r := NewClusterFatTreeRouter("ft", hosts, 2, 2, 0.001)
	route, err := r.Route("h0", "h1")
	require.NoError(t, err)
	assert.Len(t, route.Links, 2)
}

func TestClusterTorusRouter_WrapsAroundShorterDirection(t *testing.T) {
	hosts := []string{"h0", "h1", "h2", "h3"}
	r := NewClusterTorusRouter("tor", hosts, []int{4}, 0.001)
	route, err := r.Route("h0", "h3")
	require.NoError(t, err)
	assert.Len(t, route.Links, 1)
}

func TestClusterDragonflyRouter_SameGroupSkipsGlobalHop(t *testing.T) {
	hosts := []string{"h0", "h1", "h2", "h3"}
	r := NewClusterDragonflyRouter("df", hosts, 2, 0.001)
	route, err := r.Route("h0", "h1")
	require.NoError(t, err)
	assert.Len(t, route.Links, 2)

	route, err = r.Route("h0", "h2")
	require.NoError(t, err)
	assert.Len(t, route.Links, 3)
}
