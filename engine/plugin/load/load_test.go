package load

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simgrid/simgrid-go/engine/hooks"
)

func TestPlugin_TalliesActorsPerHostAndBandwidthChanges(t *testing.T) {
	reg := hooks.NewRegistry()
	p := New()
	p.Init(reg)

	reg.FireActorCreation("a1", "h1")
	reg.FireActorCreation("a2", "h1")
	reg.FireActorCreation("a3", "h2")
	reg.FireBandwidthChange("l1", 1e9)

	assert.Equal(t, 2, p.ActorsPerHost["h1"])
	assert.Equal(t, 1, p.ActorsPerHost["h2"])
	assert.Equal(t, 1, p.BandwidthChanges)
}
