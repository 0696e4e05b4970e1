// Package simgrid is the Public Facade (spec.md §4.8): opaque typed
// handles over the engine's internal activity/actor IDs, API functions
// that expose a fail-kind instead of panicking, and the plugin hook
// subscription point. It is a thin wrapper — cmd/root.go's pattern of a
// public-facing layer sitting directly on top of the core simulator —
// over engine.Engine; it adds no scheduling or resource-model logic of
// its own.
package simgrid

import (
	"context"
	"fmt"

	"github.com/simgrid/simgrid-go/engine"
	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/actor"
	"github.com/simgrid/simgrid-go/engine/hooks"
	"github.com/simgrid/simgrid-go/engine/platform"
)

// ErrorKind enumerates spec.md §7's error kinds. It mirrors
// activity.FailureKind (which deliberately does not import this package,
// to keep activity a leaf) plus the facade-only kinds that never reach
// an Activity: Timeout, Killed, Unassigned, TracingError, AssertionFailure.
type ErrorKind int

const (
	// ErrorNone is the zero value: no error occurred.
	ErrorNone ErrorKind = iota
	ErrorNetworkFailure
	ErrorHostFailure
	ErrorTimeout
	ErrorCancelled
	ErrorKilled
	ErrorUnassigned
	ErrorTracingError
	ErrorAssertionFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorNetworkFailure:
		return "network_failure"
	case ErrorHostFailure:
		return "host_failure"
	case ErrorTimeout:
		return "timeout"
	case ErrorCancelled:
		return "cancelled"
	case ErrorKilled:
		return "killed"
	case ErrorUnassigned:
		return "unassigned"
	case ErrorTracingError:
		return "tracing_error"
	case ErrorAssertionFailure:
		return "assertion_failure"
	default:
		return "unknown"
	}
}

// Error is the facade-level error type spec.md §7 names: "activity-level
// errors are surfaced via the result of the terminating wait*/test*
// call." Activity names the activity the error concerns, and is the zero
// ActivityHandle when the error is not tied to one.
type Error struct {
	Kind     ErrorKind
	Msg      string
	Activity ActivityHandle
}

func (e *Error) Error() string {
	return fmt.Sprintf("simgrid: %s: %s", e.Kind, e.Msg)
}

func failureToKind(f activity.FailureKind) ErrorKind {
	switch f {
	case activity.FailureNetwork:
		return ErrorNetworkFailure
	case activity.FailureHost:
		return ErrorHostFailure
	case activity.FailureTimeout:
		return ErrorTimeout
	case activity.FailureCancelled:
		return ErrorCancelled
	default:
		return ErrorNone
	}
}

// ActivityHandle is an opaque typed ID over an activity.Handle (spec.md
// §4.8: "Handles are opaque typed IDs"). Its zero value refers to no
// activity; callers obtain one only from a Simulation method.
type ActivityHandle struct {
	sim *Simulation
	h   activity.Handle
}

// Wait blocks ctx's actor until the activity reaches a terminal state,
// returning nil on a clean finish or an *Error describing the failure
// kind (spec.md §5, "wait* on any activity" is a suspension point).
func (a ActivityHandle) Wait(ctx *actor.Context) error {
	ctx.WaitActivity(a.h)
	return a.result()
}

// WaitFor blocks until the activity terminates or deadline (virtual
// time) elapses, whichever comes first (spec.md §4.4, "wait_for(timeout)
// ... does not cancel the underlying activity unless the caller
// explicitly cancels", spec.md §5). Returns an ErrorTimeout *Error if the
// deadline fires first.
func (a ActivityHandle) WaitFor(ctx *actor.Context, deadline int64) error {
	ctx.WaitActivityFor(a.h, deadline)
	if done, _ := a.sim.engine.Arena.MustGet(a.h).Test(); !done {
		return &Error{Kind: ErrorTimeout, Msg: "wait_for deadline elapsed", Activity: a}
	}
	return a.result()
}

// Test reports whether the activity has reached a terminal state and, if
// so, its outcome (spec.md §4.4, "test* any activity").
func (a ActivityHandle) Test() (done bool, err error) {
	act, getErr := a.sim.engine.Arena.Get(a.h)
	if getErr != nil {
		return false, &Error{Kind: ErrorUnassigned, Msg: getErr.Error(), Activity: a}
	}
	done, _ = act.Test()
	if !done {
		return false, nil
	}
	return true, a.result()
}

// Cancel transitions the activity to canceled (spec.md §5, "cancel
// (activity) on a non-terminal activity ... wakes all actors waiting on
// it with a cancellation error").
func (a ActivityHandle) Cancel() error {
	if err := a.sim.engine.CancelActivity(a.h); err != nil {
		return &Error{Kind: ErrorTracingError, Msg: err.Error(), Activity: a}
	}
	return nil
}

func (a ActivityHandle) result() error {
	act := a.sim.engine.Arena.MustGet(a.h)
	if act.Failure == activity.FailureNone {
		return nil
	}
	return &Error{Kind: failureToKind(act.Failure), Msg: act.State.String(), Activity: a}
}

// Simulation is the facade's entry point: one Engine, plus the typed
// wrappers spec.md §4.8 names around its handles.
type Simulation struct {
	engine *engine.Engine
}

// New builds a Simulation over an already-sealed platform (spec.md §6's
// programmatic builder API; the XML reader itself stays external per the
// spec's explicit instruction).
func New(cfg engine.Config, plat *platform.Platform) *Simulation {
	return &Simulation{engine: engine.New(cfg, plat)}
}

// Hooks exposes the plugin signal bus (spec.md §4.8: "Plugin hooks ...
// are signals to which external code subscribes"). A plugin's Init
// method takes exactly this type, e.g. energy.New().Init(sim.Hooks()).
func (s *Simulation) Hooks() *hooks.Registry {
	return s.engine.Hooks
}

// RegisterFunction adds name to the deployment function table (spec.md
// §6: "function names resolve against the registered-function table").
func (s *Simulation) RegisterFunction(name string, fn engine.ActorFunc) {
	s.engine.RegisterFunction(name, fn)
}

// Deploy schedules a deployment file's worth of actors (spec.md §6,
// "Deployment file").
func (s *Simulation) Deploy(entries []engine.DeploymentEntry) error {
	if err := s.engine.Deploy(entries); err != nil {
		return &Error{Kind: ErrorUnassigned, Msg: err.Error()}
	}
	return nil
}

// CreateActor creates an actor bound to host outside the deployment-file
// path, for callers building a simulation programmatically.
func (s *Simulation) CreateActor(host string, fn func(*actor.Context)) actor.ID {
	return s.engine.CreateActor(host, fn).ID
}

// Exec starts a single-host compute activity (spec.md §4.3, "CPU
// model"). Fails with ErrorUnassigned if host is not sealed into the
// platform (spec.md §7: "Unassigned: an Exec without a host when start
// is called").
func (s *Simulation) Exec(host string, flops float64) (ActivityHandle, error) {
	h, err := s.engine.Exec(host, flops)
	return s.wrap(h, err, ErrorUnassigned)
}

// ParallelExec starts a multi-host compute activity (spec.md §4.4,
// "Parallel Exec").
func (s *Simulation) ParallelExec(hosts []string, flops []float64, bytes [][]float64) (ActivityHandle, error) {
	h, err := s.engine.ParallelExec(hosts, flops, bytes)
	return s.wrap(h, err, ErrorUnassigned)
}

// Send starts an asynchronous mailbox put (spec.md §4.5.1).
func (s *Simulation) Send(mailboxName, srcHost string, size float64, payload any) (ActivityHandle, error) {
	h, err := s.engine.Put(mailboxName, srcHost, size, payload)
	return s.wrap(h, err, ErrorTracingError)
}

// Recv starts an asynchronous mailbox get (spec.md §4.5.2).
func (s *Simulation) Recv(mailboxName, dstHost string) (ActivityHandle, error) {
	h, err := s.engine.Get(mailboxName, dstHost)
	return s.wrap(h, err, ErrorTracingError)
}

// Io starts a disk read or write (spec.md §4.3, "Disk model").
func (s *Simulation) Io(disk string, op activity.IoOp, size float64) (ActivityHandle, error) {
	h, err := s.engine.Io(disk, op, size)
	return s.wrap(h, err, ErrorUnassigned)
}

// Sleep blocks ctx's actor for duration units of virtual time (spec.md
// §4.6, "sleep_for(d)"). Infallible by spec.md §4.8's classification (a
// Sleep activity cannot fail the way a host- or network-bound activity
// can), so only an internal arena inconsistency would return an error.
func (s *Simulation) Sleep(ctx *actor.Context, duration float64) (ActivityHandle, error) {
	h, err := s.engine.Sleep(ctx, duration)
	return s.wrap(h, err, ErrorAssertionFailure)
}

func (s *Simulation) wrap(h activity.Handle, err error, kind ErrorKind) (ActivityHandle, error) {
	if err != nil {
		return ActivityHandle{}, &Error{Kind: kind, Msg: err.Error()}
	}
	return ActivityHandle{sim: s, h: h}, nil
}

// SetHostOn turns a host on or off (spec.md §5, "Host on/off").
func (s *Simulation) SetHostOn(hostID string, on bool) error {
	if err := s.engine.SetHostOn(hostID, on); err != nil {
		return &Error{Kind: ErrorHostFailure, Msg: err.Error()}
	}
	return nil
}

// SetLinkOn turns a link on or off, failing Comms routed through it.
func (s *Simulation) SetLinkOn(linkID string, on bool) error {
	if err := s.engine.SetLinkOn(linkID, on); err != nil {
		return &Error{Kind: ErrorNetworkFailure, Msg: err.Error()}
	}
	return nil
}

// SetHorizon caps the simulation's virtual clock.
func (s *Simulation) SetHorizon(ticks int64) {
	s.engine.SetHorizon(ticks)
}

// Run executes the simulation to completion or deadlock (spec.md §4.7).
// ErrDeadlock is returned unwrapped (not as *Error) since it already
// carries the clock at which the deadlock was detected; callers match on
// it with errors.As.
func (s *Simulation) Run(ctx context.Context) (*engine.Report, error) {
	return s.engine.Run(ctx)
}
