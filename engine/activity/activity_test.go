package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecLifecycle_StartFinish(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	a := ar.MustGet(h)
	assert.Equal(t, StateInited, a.State)

	err := a.Start(0, nil)
	assert.NoError(t, err)
	assert.Equal(t, StateStarted, a.State)
	assert.True(t, a.HasStart)

	status, err := a.Finish(5)
	assert.NoError(t, err)
	assert.Equal(t, StateFinished, status.State)
	assert.Equal(t, int64(5), a.FinishTime)

	// I4: terminal states are absorbing.
	err = a.Start(6, nil)
	assert.Error(t, err)
}

func TestSuspendResume_RestoresPriority(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	a := ar.MustGet(h)
	assert.NoError(t, a.Start(0, nil))

	assert.NoError(t, a.Suspend())
	assert.Equal(t, StateSuspended, a.State)
	assert.Equal(t, 0.0, a.Priority)

	assert.NoError(t, a.Resume(2.0))
	assert.Equal(t, StateStarted, a.State)
	assert.Equal(t, 2.0, a.Priority)
}

func TestCancel_FromStartedReportsCancelled(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	a := ar.MustGet(h)
	assert.NoError(t, a.Start(0, nil))

	status, err := a.Cancel(3)
	assert.NoError(t, err)
	assert.Equal(t, StateCanceled, status.State)
	assert.Equal(t, FailureCancelled, status.Failure)

	// I4: terminal states absorb; a canceled activity cannot be cancelled again.
	_, err = a.Cancel(4)
	assert.Error(t, err)
}

func TestFail_FromStartingIsAllowed(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	a := ar.MustGet(h)
	assert.NoError(t, a.transition(StateStarting))

	status, err := a.Fail(1, FailureHost)
	assert.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, FailureHost, status.Failure)
}

func TestObservers_FireWithStatus(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	a := ar.MustGet(h)
	var got CompletionStatus
	a.OnCompletion(func(_ *Activity, status CompletionStatus) { got = status })

	assert.NoError(t, a.Start(0, nil))
	status, err := a.Finish(1)
	assert.NoError(t, err)
	a.FireObservers(status)

	assert.Equal(t, StateFinished, got.State)
}

func TestArena_UnrefReclaimsSlotAndBumpsGeneration(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	assert.Equal(t, 1, ar.Live())

	assert.NoError(t, ar.Unref(h))
	assert.Equal(t, 0, ar.Live())

	_, err := ar.Get(h)
	assert.Error(t, err)
	var stale ErrStale
	assert.ErrorAs(t, err, &stale)

	// Reusing the slot must bump the generation so the old handle stays stale.
	h2 := NewExec(ar, "H2", 2e9)
	assert.Equal(t, h.slot, h2.slot)
	assert.NotEqual(t, h.gen, h2.gen)
}

func TestArena_RefKeepsActivityAliveAcrossMultipleOwners(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	a := ar.MustGet(h)
	a.Ref() // a second conceptual owner, e.g. an ActivitySet

	assert.NoError(t, ar.Unref(h)) // drop the first owner
	_, err := ar.Get(h)
	assert.NoError(t, err, "still referenced by the second owner")

	assert.NoError(t, ar.Unref(h))
	_, err = ar.Get(h)
	assert.Error(t, err)
}

func TestParallelExec_JointCompletion(t *testing.T) {
	ar := NewArena()
	h := NewParallelExec(ar, []string{"H1", "H2"}, []float64{0, 5}, [][]float64{{0, 100}, {100, 0}})
	a := ar.MustGet(h)
	e := a.Payload.(*Exec)
	assert.False(t, e.Joint(1e-9))
	e.Flops[1] = 0
	assert.True(t, e.Joint(1e-9))
}

func TestSet_RejectsDuplicateMembership(t *testing.T) {
	ar := NewArena()
	h := NewExec(ar, "H1", 1e9)
	s := NewSet()
	assert.NoError(t, s.Push(h))
	assert.Error(t, s.Push(h))
	assert.Equal(t, 1, s.Len())
}

func TestSet_TestAny(t *testing.T) {
	ar := NewArena()
	h1 := NewExec(ar, "H1", 1e9)
	h2 := NewExec(ar, "H2", 1e9)
	s := NewSet()
	assert.NoError(t, s.Push(h1))
	assert.NoError(t, s.Push(h2))

	_, ok := s.TestAny(ar)
	assert.False(t, ok)

	a1 := ar.MustGet(h1)
	assert.NoError(t, a1.Start(0, nil))
	_, err := a1.Finish(1)
	assert.NoError(t, err)

	done, ok := s.TestAny(ar)
	assert.True(t, ok)
	assert.Equal(t, h1, done)
	assert.False(t, s.AllDone(ar))
}

func TestCommLatency_ConsumedBeforeBandwidth(t *testing.T) {
	ar := NewArena()
	h := NewComm(ar, "H1", "H2", 1e6, nil)
	a := ar.MustGet(h)
	c := a.Payload.(*Comm)
	c.SetRoute([]string{"L1"}, 1e-3)

	consumed, pending := c.ConsumeLatency(5e-4)
	assert.Equal(t, 0.0, consumed)
	assert.True(t, pending)

	consumed, pending = c.ConsumeLatency(1e-3)
	assert.InDelta(t, 5e-4, consumed, 1e-12)
	assert.False(t, pending)
}
