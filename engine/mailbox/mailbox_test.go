package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simgrid/simgrid-go/engine/activity"
)

func TestMailbox_PutBeforeGetQueuesThenMatches(t *testing.T) {
	ar := activity.NewArena()
	m := New("mb1")

	sh := activity.NewComm(ar, "hostA", "", 1024, "payload")
	require.NoError(t, m.PutAsync(ar, sh))
	sends, recvs := m.Pending()
	assert.Equal(t, 1, sends)
	assert.Equal(t, 0, recvs)

	rh := activity.NewComm(ar, "", "hostB", 0, nil)
	require.NoError(t, m.GetAsync(ar, rh))
	sends, recvs = m.Pending()
	assert.Equal(t, 0, sends)
	assert.Equal(t, 0, recvs)

	recvComm := ar.MustGet(rh).Payload.(*activity.Comm)
	assert.Equal(t, "hostA", recvComm.SrcHost)
	assert.Equal(t, float64(1024), recvComm.Size)
	assert.Equal(t, "payload", recvComm.Payload)
	assert.True(t, recvComm.Primary)

	sendComm := ar.MustGet(sh).Payload.(*activity.Comm)
	assert.False(t, sendComm.Primary)
	assert.True(t, sendComm.HasPeer)
	assert.Equal(t, rh, sendComm.Peer)
}

func TestMailbox_GetBeforePutQueuesThenMatches(t *testing.T) {
	ar := activity.NewArena()
	m := New("mb1")

	rh := activity.NewComm(ar, "", "hostB", 0, nil)
	require.NoError(t, m.GetAsync(ar, rh))

	sh := activity.NewComm(ar, "hostA", "", 512, "data")
	require.NoError(t, m.PutAsync(ar, sh))

	recvComm := ar.MustGet(rh).Payload.(*activity.Comm)
	assert.Equal(t, float64(512), recvComm.Size)
	assert.True(t, recvComm.Paired)

	sends, recvs := m.Pending()
	assert.Equal(t, 0, sends)
	assert.Equal(t, 0, recvs)
}

func TestMailbox_FIFOOrderPreserved(t *testing.T) {
	ar := activity.NewArena()
	m := New("mb1")

	s1 := activity.NewComm(ar, "h1", "", 1, "first")
	s2 := activity.NewComm(ar, "h2", "", 2, "second")
	require.NoError(t, m.PutAsync(ar, s1))
	require.NoError(t, m.PutAsync(ar, s2))

	r1 := activity.NewComm(ar, "", "hB", 0, nil)
	require.NoError(t, m.GetAsync(ar, r1))

	got := ar.MustGet(r1).Payload.(*activity.Comm)
	assert.Equal(t, "first", got.Payload)

	sends, _ := m.Pending()
	assert.Equal(t, 1, sends)
}

func TestMailbox_PermanentReceiverStagesPayload(t *testing.T) {
	ar := activity.NewArena()
	m := New("mb1")
	m.SetPermanentReceiver("actor-1")

	sh := activity.NewComm(ar, "h1", "", 8, "eager")
	require.NoError(t, m.PutAsync(ar, sh))
	sends, recvs := m.Pending()
	assert.Equal(t, 1, sends)
	assert.Equal(t, 0, recvs)

	rh := activity.NewComm(ar, "", "hB", 0, nil)
	require.NoError(t, m.GetAsync(ar, rh))
	got := ar.MustGet(rh).Payload.(*activity.Comm)
	assert.Equal(t, "eager", got.Payload)
}

func TestMailbox_CancelUnmatchedSendRemovesFromQueue(t *testing.T) {
	ar := activity.NewArena()
	m := New("mb1")
	sh := activity.NewComm(ar, "h1", "", 8, "x")
	require.NoError(t, m.PutAsync(ar, sh))

	require.NoError(t, m.Cancel(ar, 0, sh))
	sends, _ := m.Pending()
	assert.Equal(t, 0, sends)
	assert.Equal(t, activity.StateCanceled, ar.MustGet(sh).State)
}

func TestMailbox_CancelOneHalfCancelsPeer(t *testing.T) {
	ar := activity.NewArena()
	m := New("mb1")
	sh := activity.NewComm(ar, "h1", "", 8, "x")
	rh := activity.NewComm(ar, "", "h2", 0, nil)
	require.NoError(t, m.PutAsync(ar, sh))
	require.NoError(t, m.GetAsync(ar, rh))

	var cleanedUp any
	ar.MustGet(sh).Payload.(*activity.Comm).OnCleanup = func(payload any) { cleanedUp = payload }

	require.NoError(t, m.Cancel(ar, 0, sh))
	assert.Equal(t, activity.StateCanceled, ar.MustGet(sh).State)
	assert.Equal(t, activity.StateCanceled, ar.MustGet(rh).State)
	assert.Equal(t, "x", cleanedUp)
}
