package engine

import (
	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/actor"
)

// Sleep creates a Sleep activity of the given virtual-time duration,
// starts it against the current clock, and blocks ctx's actor on it
// (spec.md §4.6, "sleep_for(d)"). Unlike Exec/Io/Comm, a Sleep has no
// resource model of its own (engine/activity/sleep.go: "its rate is
// implicitly 1"), so computeDeltaT/applyDeltaT account for it directly
// by Kind rather than through CPU/Network/Disk.
func (e *Engine) Sleep(ctx *actor.Context, duration float64) (activity.Handle, error) {
	h := activity.NewSleep(e.Arena, duration)
	if err := e.Arena.MustGet(h).Start(e.Clock, nil); err != nil {
		return activity.Handle{}, err
	}
	ctx.WaitActivity(h)
	return h, nil
}
