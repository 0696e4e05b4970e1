package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simgrid/simgrid-go/engine/activity"
)

func TestDiskModel_ReadAndWriteAreIndependentConstraints(t *testing.T) {
	m := NewDiskModel()
	m.RegisterDisk("D1", 1e8, 2e8)
	ar := activity.NewArena()

	hr, err := m.CreateIo(ar, "D1", activity.IoRead, 1e8)
	assert.NoError(t, err)
	hw, err := m.CreateIo(ar, "D1", activity.IoWrite, 1e8)
	assert.NoError(t, err)
	aRead, aWrite := ar.MustGet(hr), ar.MustGet(hw)
	assert.NoError(t, m.Start(0, aRead))
	assert.NoError(t, m.Start(0, aWrite))

	solveAll(t, m.Constraints())
	assert.InDelta(t, 1e8, aRead.Variable.Rate(), 1e-3, "lone reader gets the full read budget")
	assert.InDelta(t, 2e8, aWrite.Variable.Rate(), 1e-3, "lone writer gets the full write budget")
}

func TestDiskModel_AggregateConstraintCapsCombinedThroughput(t *testing.T) {
	// Equal read/write budgets but a tighter aggregate: the aggregate
	// constraint, not the per-direction ones, becomes the bottleneck.
	m := NewDiskModel()
	m.RegisterDiskWithAggregate("D1", 1e8, 1e8, 1e8)
	ar := activity.NewArena()

	hr, _ := m.CreateIo(ar, "D1", activity.IoRead, 1e8)
	hw, _ := m.CreateIo(ar, "D1", activity.IoWrite, 1e8)
	aRead, aWrite := ar.MustGet(hr), ar.MustGet(hw)
	assert.NoError(t, m.Start(0, aRead))
	assert.NoError(t, m.Start(0, aWrite))

	solveAll(t, m.Constraints())
	assert.InDelta(t, 5e7, aRead.Variable.Rate(), 1e-3)
	assert.InDelta(t, 5e7, aWrite.Variable.Rate(), 1e-3)
}

func TestDiskModel_Update_CompletesWhenRemainingDrained(t *testing.T) {
	m := NewDiskModel()
	m.RegisterDisk("D1", 1e8, 1e8)
	ar := activity.NewArena()
	h, _ := m.CreateIo(ar, "D1", activity.IoRead, 1e8)
	a := ar.MustGet(h)
	assert.NoError(t, m.Start(0, a))
	solveAll(t, m.Constraints())

	completed := m.Update(1.0, 1e-9)
	assert.Len(t, completed, 1)
	assert.InDelta(t, 0, a.Remaining, 1e-6)
}
