// Package engine implements the Simulation Engine (spec.md §4.7): the
// seven-step main loop that ties the platform graph, solver, resource
// models, activity kernel, mailboxes, and actor runtime together into one
// virtual-time simulation.
package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/actor"
	"github.com/simgrid/simgrid-go/engine/hooks"
	"github.com/simgrid/simgrid-go/engine/mailbox"
	"github.com/simgrid/simgrid-go/engine/platform"
	"github.com/simgrid/simgrid-go/engine/resource"
	"github.com/simgrid/simgrid-go/engine/solver"
)

// Engine owns every sub-package's state for one simulation run. Virtual
// time is an int64 tick count, matching `sim/simulator.go`'s
// `Simulator.Clock` and its microsecond-scaled event timestamps;
// `computeDeltaT`'s float64 arithmetic is rounded up to the next whole tick
// so no activity's Remaining can undershoot zero before its terminal
// transition is applied (see DESIGN.md, "virtual clock resolution").
type Engine struct {
	Config Config

	Arena    *activity.Arena
	Platform *platform.Platform
	CPU      *resource.CPUModel
	Network  *resource.NetworkModel
	Disk     *resource.DiskModel
	Runtime  *actor.Runtime
	Hooks    *hooks.Registry

	mailboxes map[string]*mailbox.Mailbox

	Clock      int64
	HasHorizon bool
	Horizon    int64

	deferred []func()

	functions       map[string]ActorFunc
	pending         []DeploymentEntry
	killAt          map[actor.ID]int64
	restartSpec     map[actor.ID]DeploymentEntry
	pendingRestarts map[string][]DeploymentEntry

	log *logrus.Entry
}

// New builds an Engine over an already-sealed Platform, seeding the CPU,
// network, and disk resource models from its hosts/links/disks
// (SPEC_FULL.md §4.7: the Engine is what turns a static platform plus
// resource models into a runnable simulation).
func New(cfg Config, plat *platform.Platform) *Engine {
	e := &Engine{
		Config:          cfg,
		Arena:           activity.NewArena(),
		Platform:        plat,
		CPU:             resource.NewCPUModel(),
		Network:         resource.NewNetworkModel(),
		Disk:            resource.NewDiskModel(),
		Runtime:         actor.NewRuntime(),
		Hooks:           hooks.NewRegistry(),
		mailboxes:       make(map[string]*mailbox.Mailbox),
		functions:       make(map[string]ActorFunc),
		killAt:          make(map[actor.ID]int64),
		restartSpec:     make(map[actor.ID]DeploymentEntry),
		pendingRestarts: make(map[string][]DeploymentEntry),
		log:             logrus.WithField("component", "engine"),
	}
	e.Network.CrossTraffic = cfg.NetworkCrossTraffic
	if cfg.NetworkTCPGamma > 0 {
		e.Network.CrossTrafficFactor = cfg.NetworkTCPGamma
	}
	for id, h := range plat.AllHosts() {
		e.CPU.RegisterHost(id, h.Speed())
	}
	for id, l := range plat.AllLinks() {
		e.Network.RegisterLink(id, l.Bandwidth, l.Policy, l.Wifi)
	}
	for id, d := range plat.AllDisks() {
		e.Disk.RegisterDisk(id, d.ReadBW, d.WriteBW)
	}
	return e
}

// SetHorizon caps the simulation's virtual clock; Run stops (successfully)
// once it would be exceeded, mirroring `sim.Simulator.Horizon`.
func (e *Engine) SetHorizon(ticks int64) {
	e.HasHorizon = true
	e.Horizon = ticks
}

// Mailbox returns the named mailbox, creating it on first reference
// (spec.md §3: "mailboxes are created on first reference, never
// explicitly").
func (e *Engine) Mailbox(name string) *mailbox.Mailbox {
	if mb, ok := e.mailboxes[name]; ok {
		return mb
	}
	mb := mailbox.New(name)
	e.mailboxes[name] = mb
	return mb
}

// Defer enqueues a command to run at the next drain of the deferred command
// queue (spec.md §4.7, "drain deferred command queue"): at the start of each
// round's step 1 and after each actor resumed in step 2 yields. The engine
// itself defers nothing here; observer callbacks are fired synchronously
// (see activity.Observer).
func (e *Engine) Defer(fn func()) {
	e.deferred = append(e.deferred, fn)
}

// CreateActor creates a new actor bound to host and fires the
// actor-creation plugin hook.
func (e *Engine) CreateActor(host string, fn func(*actor.Context)) *actor.Actor {
	a := e.Runtime.Create(host, fn)
	e.Hooks.FireActorCreation(a.ID, host)
	return a
}

// Report summarizes how a Run call ended.
type Report struct {
	FinalClock     int64
	Deadlocked     bool
	CompletedCount int
}

// ErrDeadlock is returned when step 4/5 of the main loop finds every
// non-daemon actor blocked with no activity, timed wakeup, or scheduled
// deployment ever able to make progress (spec.md §4.7, step 5).
type ErrDeadlock struct{ Clock int64 }

func (e ErrDeadlock) Error() string {
	return fmt.Sprintf("deadlock detected at clock %d: no non-daemon actor can make progress", e.Clock)
}

// Run executes the seven-step main loop (spec.md §4.7) until no non-daemon
// actor remains, returning a Report, or an error on deadlock. ctx is an
// idiomatic Go cancellation hook for an embedding host process to abort a
// runaway simulation; it has no bearing on virtual time and is never passed
// to actor bodies (SPEC_FULL.md §4.7).
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	completed := 0
	for {
		if err := ctx.Err(); err != nil {
			return &Report{FinalClock: e.Clock, CompletedCount: completed}, err
		}

		// Step 1: drain the deferred command queue.
		e.drainDeferred()
		e.startDeploymentsDueBy(e.Clock)
		e.applyScheduledKills()

		// Step 2: run every ready actor to its next yield point.
		for e.Runtime.ReadyLen() > 0 {
			e.Runtime.ResumeNext()
			e.drainDeferred()
		}

		// Step 7's termination check runs before the solver/advance
		// steps, since a simulation with no actors left has nothing to
		// solve for. A still-pending future deployment means the
		// simulation is not actually over yet, even though no actor
		// exists at this instant to keep NonDaemonsRemain true.
		if !e.Runtime.NonDaemonsRemain() && len(e.pending) == 0 {
			e.terminateDaemons()
			return &Report{FinalClock: e.Clock, CompletedCount: completed}, nil
		}

		// Step 3: collect started activities and invoke the solver.
		e.solveRound()

		// Step 4: compute Δt.
		dt, infinite := e.computeDeltaT()

		// Step 5: infinite Δt with a blocked non-daemon actor is a
		// deadlock.
		if infinite {
			if len(e.Runtime.Blocked()) > 0 {
				e.log.Warnf("deadlock at clock %d", e.Clock)
				return &Report{FinalClock: e.Clock, Deadlocked: true, CompletedCount: completed}, ErrDeadlock{Clock: e.Clock}
			}
			// No activity pending and nothing blocked: every remaining
			// non-daemon actor must still be runnable next round
			// (e.g. a fresh deployment not yet due); advance to its
			// start time instead of looping forever.
			if next, ok := e.nextDeploymentTime(); ok {
				dt = float64(next - e.Clock)
				infinite = false
			} else {
				e.log.Warnf("deadlock at clock %d: no progress possible", e.Clock)
				return &Report{FinalClock: e.Clock, Deadlocked: true, CompletedCount: completed}, ErrDeadlock{Clock: e.Clock}
			}
		}

		// Step 6: advance the clock and apply the round's progress.
		n := e.applyDeltaT(dt)
		completed += n

		e.log.Infof("[tick %07d] Δt=%.6f completed=%d", e.Clock, dt, n)

		if e.HasHorizon && e.Clock >= e.Horizon {
			return &Report{FinalClock: e.Clock, CompletedCount: completed}, nil
		}
	}
}

func (e *Engine) drainDeferred() {
	for len(e.deferred) > 0 {
		cmds := e.deferred
		e.deferred = nil
		for _, cmd := range cmds {
			cmd()
		}
	}
}

func (e *Engine) applyScheduledKills() {
	for id, at := range e.killAt {
		if e.Clock >= at {
			e.Runtime.Kill(id)
			delete(e.killAt, id)
		}
	}
}

func (e *Engine) nextDeploymentTime() (int64, bool) {
	best := int64(math.MaxInt64)
	found := false
	for _, d := range e.pending {
		if !found || d.StartTime < best {
			best = d.StartTime
			found = true
		}
	}
	return best, found
}

// solveRound collects every constraint from the three resource families
// and runs one Solve pass (spec.md §4.7, step 3).
func (e *Engine) solveRound() {
	var constraints []*solver.Constraint
	constraints = append(constraints, e.CPU.Constraints()...)
	constraints = append(constraints, e.Network.Constraints()...)
	constraints = append(constraints, e.Disk.Constraints()...)
	vars := solver.CollectVariables(constraints)
	solver.Solve(vars, constraints, e.Config.MaxminPrecision)
}

// computeDeltaT implements step 4: the minimum of every started activity's
// remaining/rate, the next timed actor wakeup, and the next pending
// deployment start or kill time. Host and link traces are not consulted:
// no trace event bounds Δt. It reports infinite (true) if none of those
// bounds exist.
func (e *Engine) computeDeltaT() (float64, bool) {
	best := math.Inf(1)
	for _, a := range e.Arena.Started() {
		if a.Kind == activity.KindSleep {
			if a.Remaining < best {
				best = a.Remaining
			}
			continue
		}
		if a.Variable == nil {
			continue
		}
		// A fused Comm's non-primary half shares the primary's Variable
		// (engine/comm.go's startIfPaired) but its own Remaining is never
		// touched by NetworkModel.Update, which only tracks the primary;
		// counting it here would read a stale value and skew Δt.
		if comm, ok := a.Payload.(*activity.Comm); ok && comm.HasPeer && !comm.Primary {
			continue
		}
		rate := a.Variable.Rate()
		if rate <= e.Config.SurfPrecision {
			continue
		}
		remaining := activityRemaining(a)
		candidate := remaining / rate
		if candidate < best {
			best = candidate
		}
	}
	for _, actr := range e.Runtime.Blocked() {
		_, _, _, deadline, has := actr.BlockedOn()
		if !has {
			continue
		}
		candidate := float64(deadline - e.Clock)
		if candidate < best {
			best = candidate
		}
	}
	// A scheduled deployment start or kill time is itself a wakeup event:
	// without folding these in, a round bounded only by a long-running
	// activity (e.g. a multi-hour Sleep) would let the clock jump straight
	// past a kill_time that was due to fire in the middle of it.
	if next, ok := e.nextDeploymentTime(); ok {
		if candidate := float64(next - e.Clock); candidate < best {
			best = candidate
		}
	}
	if next, ok := e.nextKillTime(); ok {
		if candidate := float64(next - e.Clock); candidate < best {
			best = candidate
		}
	}
	if math.IsInf(best, 1) {
		return 0, true
	}
	if best < 0 {
		best = 0
	}
	return best, false
}

func (e *Engine) nextKillTime() (int64, bool) {
	best := int64(math.MaxInt64)
	found := false
	for _, at := range e.killAt {
		if !found || at < best {
			best = at
			found = true
		}
	}
	return best, found
}

// activityRemaining reads the Comm leading-latency-aware remaining value
// for communications, and Remaining directly for every other kind, so
// Comms still in their latency period don't falsely report dt=0.
func activityRemaining(a *activity.Activity) float64 {
	if comm, ok := a.Payload.(*activity.Comm); ok && comm.Latency > 0 {
		return a.Remaining + comm.Latency
	}
	return a.Remaining
}

// applyDeltaT implements step 6: advances the clock, lets every resource
// model account for dt of progress, transitions newly-completed
// activities, fires their observers and the activity-completion hook, and
// wakes actors (by activity completion or by deadline).
func (e *Engine) applyDeltaT(dt float64) int {
	ticks := int64(math.Ceil(dt - e.Config.SurfPrecision))
	if ticks < 0 {
		ticks = 0
	}
	e.Clock += ticks

	completed := 0
	for _, a := range e.CPU.Update(dt, e.Config.MaxminPrecision) {
		e.finishActivity(a)
		completed++
	}
	for _, a := range e.Network.Update(dt, e.Config.MaxminPrecision) {
		e.finishActivity(a)
		completed++
	}
	for _, a := range e.Disk.Update(dt, e.Config.MaxminPrecision) {
		e.finishActivity(a)
		completed++
	}
	for _, a := range e.Arena.Started() {
		if a.Kind != activity.KindSleep {
			continue
		}
		a.Remaining -= dt
		if a.Remaining < 0 {
			a.Remaining = 0
		}
		if a.Remaining <= e.Config.SurfPrecision {
			e.finishActivity(a)
			completed++
		}
	}
	e.Runtime.WakeTimedOut(e.Clock)
	return completed
}

func (e *Engine) finishActivity(a *activity.Activity) {
	switch a.Payload.(type) {
	case *activity.Exec:
		e.CPU.Finalize(a)
	case *activity.Comm:
		e.Network.Finalize(a)
	case *activity.Io:
		e.Disk.Finalize(a)
	}
	status, err := a.Finish(e.Clock)
	if err != nil {
		return
	}
	a.FireObservers(status)
	e.Hooks.FireActivityCompletion(a, status)
	e.Runtime.WakeActivity(a.Handle)

	// A fused Comm's peer has no solver variable of its own (engine/
	// comm.go's startIfPaired); the network model only ever registers
	// and finalizes the primary, so the peer's terminal transition is
	// driven here in lockstep rather than discovered independently.
	if comm, ok := a.Payload.(*activity.Comm); ok && comm.HasPeer {
		if peer, err := e.Arena.Get(comm.Peer); err == nil && !peer.State.IsTerminal() {
			if peerStatus, err := peer.Finish(e.Clock); err == nil {
				peer.FireObservers(peerStatus)
				e.Hooks.FireActivityCompletion(peer, peerStatus)
				e.Runtime.WakeActivity(peer.Handle)
			}
		}
	}
}

func (e *Engine) terminateDaemons() {
	for _, d := range e.Runtime.Daemons() {
		e.Runtime.Kill(d.ID)
	}
	for e.Runtime.ReadyLen() > 0 {
		e.Runtime.ResumeNext()
		e.drainDeferred()
	}
}

// SealPlatformConcurrently is a thin wrapper documenting where real OS
// concurrency is legitimate in this module (SPEC_FULL.md §4.7): bulk
// platform-graph precompute at Zone.Seal() time uses
// golang.org/x/sync/errgroup internally (engine/platform/zone.go); nothing
// in the Engine's own main loop is ever run concurrently.
func SealPlatformConcurrently(plat *platform.Platform) error {
	var g errgroup.Group
	g.Go(plat.Seal)
	return g.Wait()
}
