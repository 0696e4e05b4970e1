// Package activity implements the SimGrid activity kernel: the tagged-union
// state machine shared by Exec, Comm, Io, Sleep, and Synchro activities.
package activity

import "fmt"

// State is an activity's lifecycle state.
type State string

const (
	StateInited     State = "inited"
	StateStarting   State = "starting"
	StateStarted    State = "started"
	StateSuspended  State = "suspended"
	StateFinishing  State = "finishing"
	StateFinished   State = "finished"
	StateFailed     State = "failed"
	StateCanceled   State = "canceled"
)

func (s State) String() string { return string(s) }

// IsTerminal reports whether s is absorbing (I4).
func (s State) IsTerminal() bool {
	switch s {
	case StateFinished, StateFailed, StateCanceled:
		return true
	default:
		return false
	}
}

// Kind tags the variant-specific payload carried by an Activity.
type Kind int

const (
	KindExec Kind = iota
	KindComm
	KindIo
	KindSleep
	KindSynchro
)

func (k Kind) String() string {
	switch k {
	case KindExec:
		return "exec"
	case KindComm:
		return "comm"
	case KindIo:
		return "io"
	case KindSleep:
		return "sleep"
	case KindSynchro:
		return "synchro"
	default:
		return "unknown"
	}
}

// FailureKind classifies why an activity transitioned to StateFailed or
// StateCanceled; mirrors the Error kinds in the public facade without
// importing it (activity stays a leaf package).
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNetwork
	FailureHost
	FailureTimeout
	FailureCancelled
)

// CompletionStatus is delivered to on_completion observers.
type CompletionStatus struct {
	State   State
	Failure FailureKind
}

// Observer is a callback fired on activity lifecycle events. Observers are
// never called from within transition: whichever component commits a
// terminal transition (the engine, a mailbox, a synchro primitive) calls
// FireObservers directly right after it, before waking any waiting actor.
// They are not routed through the engine's deferred command queue.
type Observer func(a *Activity, status CompletionStatus)

// allowedFrom lists the states transition(to) may be called from for a
// given target state. This is the Go-shaped version of the ASCII diagram
// in spec.md §4.4.
var allowedFrom = map[State][]State{
	StateStarting:  {StateInited},
	StateStarted:   {StateStarting, StateSuspended},
	StateSuspended: {StateStarted},
	StateFinishing: {StateStarted},
	StateFinished:  {StateFinishing},
	StateFailed:    {StateStarting, StateStarted, StateSuspended},
	StateCanceled:  {StateInited, StateStarting, StateStarted, StateSuspended},
}

// Activity is the common header shared by every variant. Variant-specific
// fields live in Payload (one of *Exec, *Comm, *Io, *Sleep, *Synchro).
type Activity struct {
	Handle Handle

	Kind  Kind
	State State

	Remaining float64 // I2: remaining work, domain-specific units, >= 0
	Priority  float64 // solver share multiplier; 0 while suspended

	StartTime  int64 // virtual time, set on starting->started
	FinishTime int64 // virtual time, set on terminal transition
	HasStart   bool
	HasFinish  bool

	Refcount int // I5: destroyed when this reaches 0

	observers []Observer

	// Variable is set by Start and kept while started or suspended; it is
	// the solver's handle for this activity's instantaneous rate (I3).
	// Terminal transitions reset it to nil.
	Variable SolverVariable

	Failure FailureKind

	Payload any
}

// SolverVariable is the narrow view of a solver.Variable the activity
// kernel needs, avoiding an import cycle with engine/solver.
type SolverVariable interface {
	SetPriority(p float64)
	Rate() float64
}

// newActivity builds a fresh, inited activity of the given kind.
func newActivity(kind Kind, payload any) *Activity {
	return &Activity{
		Kind:     kind,
		State:    StateInited,
		Priority: 1.0,
		Refcount: 1,
		Payload:  payload,
	}
}

// OnCompletion registers an observer fired when the activity reaches a
// terminal state (finished, failed, or canceled).
func (a *Activity) OnCompletion(obs Observer) {
	a.observers = append(a.observers, obs)
}

// Ref increments the reference count (I5).
func (a *Activity) Ref() { a.Refcount++ }

// Unref decrements the reference count; callers must stop using a once it
// reaches zero. The arena reclaims storage when this happens (see arena.go).
func (a *Activity) Unref() int {
	a.Refcount--
	return a.Refcount
}

// transition moves the activity to `to`, validating I1 (monotone progress
// except via cancel) and I4 (terminal states absorb). It does not itself
// fire observers; callers call FireObservers once a terminal transition
// has succeeded.
func (a *Activity) transition(to State) error {
	if a.State.IsTerminal() {
		return fmt.Errorf("activity %v: cannot transition out of terminal state %s", a.Handle, a.State)
	}
	allowed := allowedFrom[to]
	ok := false
	for _, from := range allowed {
		if from == a.State {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("activity %v: illegal transition %s -> %s", a.Handle, a.State, to)
	}
	a.State = to
	return nil
}

// Start moves inited -> starting -> started in one call, the common case
// for activities with no separate "parameters fully set" checkpoint.
func (a *Activity) Start(now int64, v SolverVariable) error {
	if a.State == StateInited {
		if err := a.transition(StateStarting); err != nil {
			return err
		}
	}
	if err := a.transition(StateStarted); err != nil {
		return err
	}
	a.Variable = v
	a.StartTime = now
	a.HasStart = true
	return nil
}

// Suspend sets the solver variable's priority to zero and freezes the
// activity's progress (4.4: started -> suspended).
func (a *Activity) Suspend() error {
	if err := a.transition(StateSuspended); err != nil {
		return err
	}
	a.Priority = 0
	if a.Variable != nil {
		a.Variable.SetPriority(0)
	}
	return nil
}

// Resume restores the activity's priority and returns it to started.
func (a *Activity) Resume(priority float64) error {
	if err := a.transition(StateStarted); err != nil {
		return err
	}
	a.Priority = priority
	if a.Variable != nil {
		a.Variable.SetPriority(priority)
	}
	return nil
}

// Finish moves started -> finishing -> finished, releasing the solver
// variable. Called by the engine once a resource model's Update reports
// Remaining <= eps, and by synchro primitives when they grant a waiter.
func (a *Activity) Finish(now int64) (CompletionStatus, error) {
	if err := a.transition(StateFinishing); err != nil {
		return CompletionStatus{}, err
	}
	if err := a.transition(StateFinished); err != nil {
		return CompletionStatus{}, err
	}
	a.Variable = nil
	a.FinishTime = now
	a.HasFinish = true
	status := CompletionStatus{State: StateFinished, Failure: FailureNone}
	return status, nil
}

// Cancel transitions a non-terminal activity to canceled (spec.md §5:
// "cancel(activity) on a non-terminal activity transitions it to canceled
// and wakes all actors waiting on it with a cancellation error").
func (a *Activity) Cancel(now int64) (CompletionStatus, error) {
	if err := a.transition(StateCanceled); err != nil {
		return CompletionStatus{}, err
	}
	a.Variable = nil
	a.FinishTime = now
	a.HasFinish = true
	a.Failure = FailureCancelled
	status := CompletionStatus{State: StateCanceled, Failure: FailureCancelled}
	return status, nil
}

// Fail transitions a starting/started/suspended activity to failed.
func (a *Activity) Fail(now int64, reason FailureKind) (CompletionStatus, error) {
	if err := a.transition(StateFailed); err != nil {
		return CompletionStatus{}, err
	}
	a.Variable = nil
	a.FinishTime = now
	a.HasFinish = true
	a.Failure = reason
	status := CompletionStatus{State: StateFailed, Failure: reason}
	return status, nil
}

// FireObservers invokes every registered observer with the given status.
// Callers invoke it directly after committing a terminal transition;
// transition itself never calls it.
func (a *Activity) FireObservers(status CompletionStatus) {
	for _, obs := range a.observers {
		obs(a, status)
	}
}

// Test is the non-blocking terminal-state check.
func (a *Activity) Test() (done bool, status CompletionStatus) {
	if !a.State.IsTerminal() {
		return false, CompletionStatus{}
	}
	return true, CompletionStatus{State: a.State, Failure: a.Failure}
}
