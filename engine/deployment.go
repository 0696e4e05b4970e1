package engine

import (
	"fmt"

	"github.com/simgrid/simgrid-go/engine/actor"
)

// ActorFunc is a registered deployment entry point: the function table
// spec.md §6 names ("function names resolve against the registered
// function table").
type ActorFunc func(ctx *actor.Context, args []string)

// DeploymentEntry is one `<actor host function start_time kill_time
// on_failure><argument/></actor>` from spec.md §6's deployment file, given a
// Go-native shape per SPEC_FULL.md §6.
type DeploymentEntry struct {
	ActorName string
	Host      string
	Function  string
	Args      []string

	StartTime   int64
	HasKillTime bool
	KillTime    int64

	// OnFailure selects what happens if the actor's host turns off while
	// it is running: "restart" re-creates it when the host comes back,
	// anything else leaves it dead (spec.md §5, "Host on/off").
	OnFailure string
}

// ErrUnknownFunction reports a DeploymentEntry naming a function that was
// never registered via Engine.RegisterFunction.
type ErrUnknownFunction struct{ Name string }

func (e ErrUnknownFunction) Error() string {
	return fmt.Sprintf("deployment: function %q is not registered", e.Name)
}

// RegisterFunction adds name to the function table Deploy resolves
// DeploymentEntry.Function against.
func (e *Engine) RegisterFunction(name string, fn ActorFunc) {
	e.functions[name] = fn
}

// Deploy schedules every entry: actors whose StartTime has already elapsed
// are created immediately, the rest wait for their turn in the main loop
// (step 6, "reschedule time-based sleepers" generalizes to pending
// deployment starts).
func (e *Engine) Deploy(entries []DeploymentEntry) error {
	for _, entry := range entries {
		if _, ok := e.functions[entry.Function]; !ok {
			return ErrUnknownFunction{Name: entry.Function}
		}
	}
	e.pending = append(e.pending, entries...)
	return nil
}

// startDeploymentsDueBy creates every pending deployment entry whose
// StartTime has elapsed at the current clock, keeping the entries still
// in the future in e.pending.
func (e *Engine) startDeploymentsDueBy(clock int64) {
	var stillPending []DeploymentEntry
	for _, entry := range e.pending {
		if entry.StartTime > clock {
			stillPending = append(stillPending, entry)
			continue
		}
		e.startDeployment(entry)
	}
	e.pending = stillPending
}

func (e *Engine) startDeployment(entry DeploymentEntry) {
	fn := e.functions[entry.Function]
	a := e.CreateActor(entry.Host, func(ctx *actor.Context) {
		fn(ctx, entry.Args)
	})
	if entry.HasKillTime {
		e.killAt[a.ID] = entry.KillTime
	}
	if entry.OnFailure == "restart" {
		e.Runtime.SetAutoRestart(a.ID, true)
		e.restartSpec[a.ID] = entry
	}
}
