package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/hooks"
)

func TestPlugin_TalliesHostStateAndCompletions(t *testing.T) {
	reg := hooks.NewRegistry()
	p := New()
	p.Init(reg)

	reg.FireHostStateChange("h1", false)
	reg.FireHostStateChange("h1", true)
	reg.FireActivityCompletion(&activity.Activity{}, activity.CompletionStatus{State: activity.StateFinished})

	assert.Equal(t, 1, p.HostOffCount)
	assert.Equal(t, 1, p.HostOnCount)
	assert.Equal(t, 1, p.Completions)
}
