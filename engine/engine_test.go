package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/actor"
	"github.com/simgrid/simgrid-go/engine/platform"
)

func newTestPlatform(t *testing.T, bandwidth, latency float64) *platform.Platform {
	t.Helper()
	full := platform.NewFullRouter()
	full.Add("A", "B", []string{"lAB"}, latency, true)
	zone := platform.NewZone("z", platform.RoutingFull, full)
	p := platform.NewPlatform(zone)
	require.NoError(t, p.RegisterHost(zone, platform.NewHost("A", 1e9, 1)))
	require.NoError(t, p.RegisterHost(zone, platform.NewHost("B", 1e9, 1)))
	require.NoError(t, p.RegisterLink(zone, platform.NewLink("lAB", bandwidth, latency, platform.SharingShared)))
	require.NoError(t, p.Seal())
	return p
}

func TestEngine_PingPongCompletesAndClockAdvances(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	var pongSeen bool
	e.CreateActor("A", func(ctx *actor.Context) {
		h, err := e.Put("mbox", "A", 1000, "ping")
		require.NoError(t, err)
		ctx.WaitActivity(h)
	})
	e.CreateActor("B", func(ctx *actor.Context) {
		h, err := e.Get("mbox", "B")
		require.NoError(t, err)
		ctx.WaitActivity(h)
		pongSeen = true
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, pongSeen)
	assert.False(t, report.Deadlocked)
	assert.Greater(t, report.FinalClock, int64(0))
}

func TestEngine_ExecRunsToCompletion(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	var done bool
	e.CreateActor("A", func(ctx *actor.Context) {
		h, err := e.Exec("A", 1e9)
		require.NoError(t, err)
		ctx.WaitActivity(h)
		done = true
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, int64(1), report.FinalClock) // 1e9 flops at 1e9 flop/s
}

func TestEngine_SleepBlocksForExactDuration(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	var woke bool
	e.CreateActor("A", func(ctx *actor.Context) {
		_, err := e.Sleep(ctx, 5.0)
		require.NoError(t, err)
		woke = true
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, woke)
	assert.Equal(t, int64(5), report.FinalClock)
}

func TestEngine_SharedLinkSplitsBandwidthFairly(t *testing.T) {
	p := newTestPlatform(t, 1000, 0)
	e := New(DefaultConfig(), p)

	e.CreateActor("A", func(ctx *actor.Context) {
		h, err := e.Put("mbox1", "A", 1000, "x")
		require.NoError(t, err)
		ctx.WaitActivity(h)
	})
	e.CreateActor("B", func(ctx *actor.Context) {
		h, err := e.Get("mbox1", "B")
		require.NoError(t, err)
		ctx.WaitActivity(h)
	})
	e.CreateActor("A", func(ctx *actor.Context) {
		h, err := e.Put("mbox2", "A", 1000, "y")
		require.NoError(t, err)
		ctx.WaitActivity(h)
	})
	e.CreateActor("B", func(ctx *actor.Context) {
		h, err := e.Get("mbox2", "B")
		require.NoError(t, err)
		ctx.WaitActivity(h)
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Deadlocked)
	// Two 1000-byte comms sharing a 1000 B/s link fairly should each get
	// 500 B/s, finishing around clock 2, not clock 1.
	assert.GreaterOrEqual(t, report.FinalClock, int64(2))
}

func TestEngine_CancelActivityWakesWaiter(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	var cancelled bool
	var h activity.Handle
	e.CreateActor("A", func(ctx *actor.Context) {
		var err error
		h, err = e.Exec("A", 1e12) // far longer than the sibling's 1-tick sleep
		require.NoError(t, err)
		e.Defer(func() {
			require.NoError(t, e.CancelActivity(h))
		})
		ctx.WaitActivity(h)
		done, status := e.Arena.MustGet(h).Test()
		cancelled = done && status.State == activity.StateCanceled
	})
	// A second actor sleeping 1 tick. The deferred cancel is drained as
	// soon as A yields in round 1, long before the Exec would otherwise
	// finish on its own.
	e.CreateActor("B", func(ctx *actor.Context) {
		_, _ = e.Sleep(ctx, 1)
	})

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestEngine_DeadlockDetectedWhenAllActorsBlockForever(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	e.CreateActor("A", func(ctx *actor.Context) {
		h, err := e.Get("never-sent", "A")
		require.NoError(t, err)
		ctx.WaitActivity(h)
	})

	report, err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDeadlock{})
	assert.True(t, report.Deadlocked)
}

func TestEngine_HostOffFailsActivityWithoutKillingRemoteDriver(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	// The Parallel Exec spans host A, but the actor driving it lives on
	// host B, so turning A off fails the activity (spec.md §5) without
	// killing the actor that is waiting on it (it isn't "currently on"
	// A) — letting the test observe the failure status instead of the
	// actor simply vanishing.
	var observed bool
	var failureKind activity.FailureKind
	e.CreateActor("B", func(ctx *actor.Context) {
		h, err := e.ParallelExec([]string{"A", "B"}, []float64{1e12, 1e12}, [][]float64{{0, 0}, {0, 0}})
		require.NoError(t, err)
		ctx.WaitActivity(h)
		done, status := e.Arena.MustGet(h).Test()
		observed = done
		failureKind = status.Failure
	})
	e.CreateActor("B", func(ctx *actor.Context) {
		require.NoError(t, e.SetHostOn("A", false))
	})

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, observed)
	assert.Equal(t, activity.FailureHost, failureKind)
}

func TestEngine_DeploymentStartsAtScheduledTimeAndHonorsKillTime(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	var started bool
	e.RegisterFunction("worker", func(ctx *actor.Context, args []string) {
		started = true
		_, _ = e.Sleep(ctx, 1000) // already blocks; killed at t=20 long before this elapses
	})

	require.NoError(t, e.Deploy([]DeploymentEntry{
		{ActorName: "w1", Host: "A", Function: "worker", StartTime: 10, HasKillTime: true, KillTime: 20},
	}))

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, started)
	assert.LessOrEqual(t, report.FinalClock, int64(21))
}

func TestEngine_DeployUnknownFunctionErrors(t *testing.T) {
	p := newTestPlatform(t, 1e9, 0.0001)
	e := New(DefaultConfig(), p)

	err := e.Deploy([]DeploymentEntry{{ActorName: "w1", Host: "A", Function: "ghost"}})
	assert.ErrorAs(t, err, &ErrUnknownFunction{})
}
