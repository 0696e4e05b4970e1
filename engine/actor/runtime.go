package actor

import (
	"fmt"

	"github.com/simgrid/simgrid-go/engine/activity"
)

// Runtime is the maestro: it owns every Actor, the ready queue, and the
// blocked set, and resumes actors one at a time in insertion order
// (spec.md §4.6, "Scheduling policy").
type Runtime struct {
	actors map[ID]*Actor
	ready  []ID

	blockedActivity map[ID]bool
	blockedJoin     map[ID]bool

	joinWaiters map[ID][]ID // target -> actors blocked joining it

	nextID uint64
}

// NewRuntime returns an empty Runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		actors:          make(map[ID]*Actor),
		blockedActivity: make(map[ID]bool),
		blockedJoin:     make(map[ID]bool),
		joinWaiters:     make(map[ID][]ID),
	}
}

func (rt *Runtime) newID() ID {
	rt.nextID++
	return ID(fmt.Sprintf("actor-%d", rt.nextID))
}

// Create allocates a new actor bound to host, schedules its fiber, and
// enqueues it in the ready set (spec.md §4.6, "create(host, fn, args)").
func (rt *Runtime) Create(host string, fn func(*Context)) *Actor {
	a := &Actor{
		ID:       rt.newID(),
		Host:     host,
		entry:    fn,
		state:    StateReady,
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan yieldMsg),
	}
	rt.actors[a.ID] = a
	rt.ready = append(rt.ready, a.ID)
	go rt.runFiber(a)
	return a
}

// runFiber is the goroutine body backing one actor: it parks until its
// first resume, runs the entry function, and on any exit path (normal
// return, panic(killSignal{})) fires on-exit callbacks LIFO before
// reporting termination to the maestro.
func (rt *Runtime) runFiber(a *Actor) {
	ctx := &Context{actor: a}
	defer func() {
		r := recover()
		if r != nil {
			if _, ok := r.(killSignal); !ok {
				panic(r)
			}
		}
		for i := len(a.onExit) - 1; i >= 0; i-- {
			a.onExit[i]()
		}
		a.state = StateDead
		a.yieldCh <- yieldMsg{kind: kindDone}
	}()
	<-a.resumeCh
	a.entry(ctx)
}

// Actor looks up an actor by ID.
func (rt *Runtime) Actor(id ID) (*Actor, bool) {
	a, ok := rt.actors[id]
	return a, ok
}

// ReadyLen reports the number of actors in the ready queue.
func (rt *Runtime) ReadyLen() int { return len(rt.ready) }

// NonDaemonsRemain reports whether any non-daemon actor is not yet dead,
// the Engine's termination predicate (spec.md §4.6, "Termination rule").
func (rt *Runtime) NonDaemonsRemain() bool {
	for _, a := range rt.actors {
		if !a.Daemon && a.state != StateDead {
			return true
		}
	}
	return false
}

// Daemons returns every actor with the daemon bit set, still alive.
func (rt *Runtime) Daemons() []*Actor {
	var out []*Actor
	for _, a := range rt.actors {
		if a.Daemon && a.state != StateDead {
			out = append(out, a)
		}
	}
	return out
}

// ActorsOnHost returns every live actor currently bound to host, for the
// host-off cascade (spec.md §5: "turning a host off ... kills all actors
// currently on it").
func (rt *Runtime) ActorsOnHost(host string) []*Actor {
	var out []*Actor
	for _, a := range rt.actors {
		if a.Host == host && a.state != StateDead {
			out = append(out, a)
		}
	}
	return out
}

// Blocked returns every currently-blocked actor, for deadlock diagnostics.
func (rt *Runtime) Blocked() []*Actor {
	var out []*Actor
	for _, a := range rt.actors {
		if a.state == StateBlocked {
			out = append(out, a)
		}
	}
	return out
}

// ResumeNext pops the head of the ready queue and resumes it until it
// yields, updating the actor's scheduling state from the result. It
// reports false if the ready queue was empty.
func (rt *Runtime) ResumeNext() (*Actor, bool) {
	if len(rt.ready) == 0 {
		return nil, false
	}
	id := rt.ready[0]
	rt.ready = rt.ready[1:]
	a := rt.actors[id]
	a.state = StateRunning
	a.resumeCh <- struct{}{}
	msg := <-a.yieldCh
	rt.applyYield(a, msg)
	return a, true
}

func (rt *Runtime) applyYield(a *Actor, msg yieldMsg) {
	switch msg.kind {
	case kindYield:
		a.state = StateReady
		rt.ready = append(rt.ready, a.ID)
	case kindWaitActivity:
		a.state = StateBlocked
		a.blockKind = BlockActivity
		a.blockHandle = msg.handle
		a.hasDeadline = msg.hasDeadline
		a.blockDeadline = msg.deadline
		rt.blockedActivity[a.ID] = true
	case kindJoin:
		if t, ok := rt.actors[msg.joinTarget]; !ok || t.state == StateDead {
			a.state = StateReady
			rt.ready = append(rt.ready, a.ID)
			return
		}
		a.state = StateBlocked
		a.blockKind = BlockJoin
		a.blockJoinTarget = msg.joinTarget
		a.hasDeadline = msg.hasDeadline
		a.blockDeadline = msg.deadline
		rt.blockedJoin[a.ID] = true
		rt.joinWaiters[msg.joinTarget] = append(rt.joinWaiters[msg.joinTarget], a.ID)
	case kindDone:
		rt.wakeJoiners(a.ID)
	}
}

// WakeActivity moves every actor blocked on h back onto the ready queue
// (spec.md §4.7 step 6, "wake actors whose awaited activities became
// terminal").
func (rt *Runtime) WakeActivity(h activity.Handle) {
	for id := range rt.blockedActivity {
		a := rt.actors[id]
		if a.blockKind == BlockActivity && a.blockHandle == h {
			rt.wake(a)
		}
	}
}

// WakeTimedOut moves every actor whose activity or join deadline has
// elapsed at virtual time now back onto the ready queue. Callers
// distinguish a timeout wake from a completion wake via the activity's or
// join target's actual terminal status.
func (rt *Runtime) WakeTimedOut(now int64) []*Actor {
	var woken []*Actor
	for id := range rt.blockedActivity {
		a := rt.actors[id]
		if a.hasDeadline && now >= a.blockDeadline {
			rt.wake(a)
			woken = append(woken, a)
		}
	}
	for id := range rt.blockedJoin {
		a := rt.actors[id]
		if a.hasDeadline && now >= a.blockDeadline {
			rt.wake(a)
			woken = append(woken, a)
		}
	}
	return woken
}

func (rt *Runtime) wakeJoiners(target ID) {
	waiters := rt.joinWaiters[target]
	delete(rt.joinWaiters, target)
	for _, id := range waiters {
		if a, ok := rt.actors[id]; ok && a.state == StateBlocked {
			rt.wake(a)
		}
	}
}

func (rt *Runtime) wake(a *Actor) {
	delete(rt.blockedActivity, a.ID)
	delete(rt.blockedJoin, a.ID)
	a.blockKind = BlockNone
	a.hasDeadline = false
	a.state = StateReady
	rt.ready = append(rt.ready, a.ID)
}

// Kill marks id for termination at its next yield point (spec.md §4.6,
// "kill(a)"). A blocked actor is woken immediately so it reaches that
// yield point promptly instead of waiting for its original condition.
func (rt *Runtime) Kill(id ID) {
	a, ok := rt.actors[id]
	if !ok || a.state == StateDead {
		return
	}
	a.killRequested = true
	if a.state == StateBlocked {
		rt.wake(a)
	}
}

// KillAll kills every actor except except.
func (rt *Runtime) KillAll(except ID) {
	for id := range rt.actors {
		if id != except {
			rt.Kill(id)
		}
	}
}

// Daemonize sets the daemon bit on id.
func (rt *Runtime) Daemonize(id ID) {
	if a, ok := rt.actors[id]; ok {
		a.Daemon = true
	}
}

// SetAutoRestart toggles auto-restart on id.
func (rt *Runtime) SetAutoRestart(id ID, v bool) {
	if a, ok := rt.actors[id]; ok {
		a.autoRestart = v
	}
}

// SetHost migrates id to a new host (spec.md §4.6, "set_host(h)"); the
// caller is responsible for re-binding any currently-started Exec to the
// new host's CPU constraint (engine/resource), which actor has no
// visibility into.
func (rt *Runtime) SetHost(id ID, host string) {
	if a, ok := rt.actors[id]; ok {
		a.Host = host
	}
}
