// Package actor implements the cooperative fiber runtime of spec.md §4.6:
// one goroutine per actor, resumed one at a time by a single maestro via
// channel handoff rather than longjmp (spec.md §9's explicit redesign
// note), with kill/daemonize/auto-restart lifecycle management.
package actor

import (
	"fmt"

	"github.com/simgrid/simgrid-go/engine/activity"
	"github.com/simgrid/simgrid-go/engine/mailbox"
)

// ID names an actor. Actors and mailboxes share an identifier space
// (a permanent-receiver claim names the actor that owns it).
type ID = mailbox.ActorID

// State is an actor's scheduling state.
type State int

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateDead
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// BlockKind is the reason a blocked actor is off the ready queue.
type BlockKind int

const (
	BlockNone BlockKind = iota
	BlockActivity
	BlockJoin
)

// killSignal is panicked by a Context's blocking calls once Kill has been
// requested, unwinding the actor's goroutine to runFiber's top-level
// recover (spec.md §4.6: "the kill is observed by throwing a termination
// signal from the next blocking call, which unwinds to the actor's top
// frame where on-exit callbacks fire in LIFO order").
type killSignal struct{}

// Actor is one cooperatively-scheduled fiber.
type Actor struct {
	ID   ID
	Host string

	Daemon      bool
	autoRestart bool
	entry       func(*Context)

	state         State
	killRequested bool

	blockKind       BlockKind
	blockHandle     activity.Handle
	blockJoinTarget ID
	blockDeadline   int64
	hasDeadline     bool

	onExit []func()

	resumeCh chan struct{}
	yieldCh  chan yieldMsg
}

// State reports the actor's current scheduling state.
func (a *Actor) State() State { return a.state }

// IsDaemon reports the daemon bit (spec.md §4.6, "daemonize").
func (a *Actor) IsDaemon() bool { return a.Daemon }

// AutoRestart reports whether the actor should be re-created with its
// original entry function when its host turns back on.
func (a *Actor) AutoRestart() bool { return a.autoRestart }

// OnExit registers a callback fired, LIFO among all registrations, when
// the actor terminates, by normal return or by kill. Any other panic in
// the entry function propagates without running the callbacks.
func (a *Actor) OnExit(fn func()) { a.onExit = append(a.onExit, fn) }

// BlockedOn reports what a blocked actor is waiting for.
func (a *Actor) BlockedOn() (kind BlockKind, handle activity.Handle, join ID, deadline int64, hasDeadline bool) {
	return a.blockKind, a.blockHandle, a.blockJoinTarget, a.blockDeadline, a.hasDeadline
}

// yieldKind tags why a fiber handed control back to the maestro.
type yieldKind int

const (
	kindYield yieldKind = iota
	kindWaitActivity
	kindJoin
	kindDone
)

type yieldMsg struct {
	kind        yieldKind
	handle      activity.Handle
	joinTarget  ID
	deadline    int64
	hasDeadline bool
}

func fmtActor(id ID) string { return fmt.Sprintf("actor %s", id) }
