package actor

import "github.com/simgrid/simgrid-go/engine/activity"

// The four synchronization primitives spec.md §3 names ("mutex / semaphore
// / barrier / condition wait"). Each blocks the calling actor on a Synchro
// activity (engine/activity) whose completion the primitive itself drives
// — there is no solver variable involved, unlike Exec/Comm/Io.

type waiter struct {
	actor  ID
	handle activity.Handle
}

// startWait allocates a Synchro activity and moves it straight to started
// (it has no resource-model admission step, unlike Exec/Comm/Io), so that
// release's later Finish call is a legal started -> finishing -> finished
// transition.
func startWait(ar *activity.Arena, now int64, kind activity.SynchroKind, name string) activity.Handle {
	h := activity.NewSynchro(ar, kind, name)
	_ = ar.MustGet(h).Start(now, nil)
	return h
}

// release finishes w's Synchro activity and wakes the actor blocked on it.
func release(ar *activity.Arena, rt *Runtime, now int64, w waiter) {
	a := ar.MustGet(w.handle)
	status, err := a.Finish(now)
	if err != nil {
		return
	}
	a.FireObservers(status)
	rt.WakeActivity(w.handle)
}

// Mutex is a simple FIFO-fair exclusive lock.
type Mutex struct {
	name    string
	locked  bool
	owner   ID
	waiters []waiter
}

// NewMutex returns an unlocked, named Mutex.
func NewMutex(name string) *Mutex { return &Mutex{name: name} }

// Lock acquires m, blocking the calling actor if it is already held.
func (m *Mutex) Lock(ctx *Context, ar *activity.Arena, now int64) {
	if !m.locked {
		m.locked = true
		m.owner = ctx.Self()
		return
	}
	h := startWait(ar, now, activity.SynchroMutex, m.name)
	m.waiters = append(m.waiters, waiter{actor: ctx.Self(), handle: h})
	ctx.WaitActivity(h)
}

// Unlock releases m, handing it directly to the next FIFO waiter if any.
func (m *Mutex) Unlock(ar *activity.Arena, rt *Runtime, now int64) {
	if len(m.waiters) == 0 {
		m.locked = false
		m.owner = ""
		return
	}
	next := m.waiters[0]
	m.waiters = m.waiters[1:]
	m.owner = next.actor
	release(ar, rt, now, next)
}

// Semaphore is a counting semaphore with FIFO-fair waiters.
type Semaphore struct {
	name    string
	count   int
	waiters []waiter
}

// NewSemaphore returns a Semaphore with the given initial count.
func NewSemaphore(name string, initial int) *Semaphore {
	return &Semaphore{name: name, count: initial}
}

// Acquire decrements the semaphore, blocking if its count is already zero.
func (s *Semaphore) Acquire(ctx *Context, ar *activity.Arena, now int64) {
	if s.count > 0 {
		s.count--
		return
	}
	h := startWait(ar, now, activity.SynchroSemaphore, s.name)
	s.waiters = append(s.waiters, waiter{actor: ctx.Self(), handle: h})
	ctx.WaitActivity(h)
}

// Release increments the semaphore, or hands the unit directly to the next
// FIFO waiter if any are queued.
func (s *Semaphore) Release(ar *activity.Arena, rt *Runtime, now int64) {
	if len(s.waiters) == 0 {
		s.count++
		return
	}
	next := s.waiters[0]
	s.waiters = s.waiters[1:]
	release(ar, rt, now, next)
}

// Barrier releases every arrival once n actors have reached Wait.
type Barrier struct {
	name    string
	n       int
	arrived []waiter
}

// NewBarrier returns a Barrier requiring n arrivals per generation.
func NewBarrier(name string, n int) *Barrier { return &Barrier{name: name, n: n} }

// Wait blocks until n actors (across all generations' Wait calls) have
// arrived, then releases them all together.
func (b *Barrier) Wait(ctx *Context, ar *activity.Arena, rt *Runtime, now int64) {
	if len(b.arrived)+1 < b.n {
		h := startWait(ar, now, activity.SynchroBarrier, b.name)
		b.arrived = append(b.arrived, waiter{actor: ctx.Self(), handle: h})
		ctx.WaitActivity(h)
		return
	}
	generation := b.arrived
	b.arrived = nil
	for _, w := range generation {
		release(ar, rt, now, w)
	}
}

// Cond is a condition variable: actors block in Wait until Signal or
// Broadcast releases them. This module's simplified model has no
// associated mutex to re-acquire on wakeup; callers serialize around it
// with a Mutex of their own if they need that guarantee.
type Cond struct {
	name    string
	waiters []waiter
}

// NewCond returns a named, empty Cond.
func NewCond(name string) *Cond { return &Cond{name: name} }

// Wait blocks the calling actor until Signal or Broadcast wakes it.
func (c *Cond) Wait(ctx *Context, ar *activity.Arena, now int64) {
	h := startWait(ar, now, activity.SynchroCond, c.name)
	c.waiters = append(c.waiters, waiter{actor: ctx.Self(), handle: h})
	ctx.WaitActivity(h)
}

// Signal wakes the single longest-waiting actor, if any.
func (c *Cond) Signal(ar *activity.Arena, rt *Runtime, now int64) {
	if len(c.waiters) == 0 {
		return
	}
	next := c.waiters[0]
	c.waiters = c.waiters[1:]
	release(ar, rt, now, next)
}

// Broadcast wakes every waiting actor.
func (c *Cond) Broadcast(ar *activity.Arena, rt *Runtime, now int64) {
	all := c.waiters
	c.waiters = nil
	for _, w := range all {
		release(ar, rt, now, w)
	}
}
