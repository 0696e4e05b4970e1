package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simgrid/simgrid-go/engine/activity"
)

func TestRuntime_CreateAndRunToCompletion(t *testing.T) {
	rt := NewRuntime()
	var ran bool
	rt.Create("h1", func(ctx *Context) {
		ran = true
	})

	a, ok := rt.ResumeNext()
	require.True(t, ok)
	assert.True(t, ran)
	assert.Equal(t, StateDead, a.state)
	assert.False(t, rt.NonDaemonsRemain())
}

func TestRuntime_YieldReinsertsAtTail(t *testing.T) {
	rt := NewRuntime()
	order := []string{}
	rt.Create("h1", func(ctx *Context) {
		order = append(order, "a-1")
		ctx.Yield()
		order = append(order, "a-2")
	})
	rt.Create("h1", func(ctx *Context) {
		order = append(order, "b-1")
	})

	rt.ResumeNext() // a yields
	rt.ResumeNext() // b runs to completion
	rt.ResumeNext() // a resumes and finishes

	assert.Equal(t, []string{"a-1", "b-1", "a-2"}, order)
}

func TestRuntime_WaitActivityBlocksUntilWoken(t *testing.T) {
	rt := NewRuntime()
	ar := activity.NewArena()
	h := activity.NewSleep(ar, 1.0)
	require.NoError(t, ar.MustGet(h).Start(0, nil))

	var resumed bool
	rt.Create("h1", func(ctx *Context) {
		ctx.WaitActivity(h)
		resumed = true
	})

	rt.ResumeNext()
	assert.False(t, resumed)
	assert.Equal(t, 1, len(rt.Blocked()))

	_, err := ar.MustGet(h).Finish(5)
	require.NoError(t, err)
	rt.WakeActivity(h)
	assert.Equal(t, 1, rt.ReadyLen())

	rt.ResumeNext()
	assert.True(t, resumed)
}

func TestRuntime_KillUnwindsAndFiresOnExitLIFO(t *testing.T) {
	rt := NewRuntime()
	ar := activity.NewArena()
	h := activity.NewSleep(ar, 100)

	var order []string
	var a *Actor
	rt.Create("h1", func(ctx *Context) {
		ctx.actor.OnExit(func() { order = append(order, "first registered") })
		ctx.actor.OnExit(func() { order = append(order, "second registered") })
		ctx.WaitActivity(h)
		order = append(order, "should never run")
	})

	rt.ResumeNext()
	a = rt.actors["actor-1"]
	require.Equal(t, StateBlocked, a.state)

	rt.Kill("actor-1")
	assert.Equal(t, StateReady, a.state)

	rt.ResumeNext()
	assert.Equal(t, StateDead, a.state)
	assert.Equal(t, []string{"second registered", "first registered"}, order)
}

func TestRuntime_JoinBlocksUntilTargetDies(t *testing.T) {
	rt := NewRuntime()
	var joined bool
	rt.Create("h1", func(ctx *Context) {
		ctx.Join("actor-2", 0, false)
		joined = true
	})
	rt.Create("h1", func(ctx *Context) {})

	rt.ResumeNext() // actor-1 joins actor-2, blocks
	assert.False(t, joined)
	assert.Equal(t, 1, len(rt.Blocked()))

	rt.ResumeNext() // actor-2 runs to completion, wakes actor-1's join
	assert.Equal(t, 1, rt.ReadyLen())

	rt.ResumeNext() // actor-1 resumes
	assert.True(t, joined)
}

func TestMutex_SecondLockerBlocksUntilUnlock(t *testing.T) {
	rt := NewRuntime()
	ar := activity.NewArena()
	m := NewMutex("m1")

	var aHasLock, bHasLock bool
	rt.Create("h1", func(ctx *Context) {
		m.Lock(ctx, ar, 0)
		aHasLock = true
		ctx.Yield()
		m.Unlock(ar, rt, 0)
	})
	rt.Create("h1", func(ctx *Context) {
		m.Lock(ctx, ar, 0)
		bHasLock = true
	})

	rt.ResumeNext() // a locks, yields
	assert.True(t, aHasLock)

	rt.ResumeNext() // b tries to lock, blocks
	assert.False(t, bHasLock)

	rt.ResumeNext() // a resumes, unlocks, hands lock to b
	assert.Equal(t, 1, rt.ReadyLen())

	rt.ResumeNext() // b resumes holding the lock
	assert.True(t, bHasLock)
}

func TestBarrier_ReleasesAllOnceNArrive(t *testing.T) {
	rt := NewRuntime()
	ar := activity.NewArena()
	b := NewBarrier("b1", 2)

	var past []string
	rt.Create("h1", func(ctx *Context) {
		b.Wait(ctx, ar, rt, 0)
		past = append(past, "a")
	})
	rt.Create("h1", func(ctx *Context) {
		b.Wait(ctx, ar, rt, 0)
		past = append(past, "b")
	})

	rt.ResumeNext() // a arrives, blocks
	assert.Empty(t, past)
	rt.ResumeNext() // b arrives, completes the barrier, releases a
	assert.Equal(t, []string{"b"}, past)

	rt.ResumeNext() // a resumes
	assert.Equal(t, []string{"b", "a"}, past)
}
