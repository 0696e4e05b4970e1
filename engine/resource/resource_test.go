package resource

import (
	"testing"

	"github.com/simgrid/simgrid-go/engine/solver"
)

// solveAll runs one solver round over every variable registered across the
// given constraints, the same two-step the engine's main loop performs
// each round (collect variables, then Solve).
func solveAll(t *testing.T, constraints []*solver.Constraint) {
	t.Helper()
	vars := solver.CollectVariables(constraints)
	solver.Solve(vars, constraints, 0)
}
