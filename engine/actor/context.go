package actor

import "github.com/simgrid/simgrid-go/engine/activity"

// Context is the handle an actor's entry function uses to make blocking
// simulation calls. Every blocking method here is a yield point; Self and
// Host only read the actor's fields (spec.md §4.6:
// "an actor yields only on explicit simulation calls").
type Context struct {
	actor *Actor
}

// Self returns the calling actor's ID.
func (c *Context) Self() ID { return c.actor.ID }

// Host returns the host the calling actor currently runs on.
func (c *Context) Host() string { return c.actor.Host }

func (c *Context) checkKilled() {
	if c.actor.killRequested {
		panic(killSignal{})
	}
}

func (c *Context) handoff(msg yieldMsg) {
	c.checkKilled()
	c.actor.yieldCh <- msg
	<-c.actor.resumeCh
	c.checkKilled()
}

// Yield re-inserts the actor at the tail of the ready queue without
// advancing the clock (spec.md §4.6, "yield()").
func (c *Context) Yield() {
	c.handoff(yieldMsg{kind: kindYield})
}

// WaitActivity blocks until h reaches a terminal state.
func (c *Context) WaitActivity(h activity.Handle) {
	c.handoff(yieldMsg{kind: kindWaitActivity, handle: h})
}

// WaitActivityFor blocks until h reaches a terminal state or deadline
// (virtual time) passes, whichever comes first. When the deadline elapses
// first the engine only wakes the actor; h is left in whatever state it
// is in, so callers tell a timeout apart by h still being non-terminal
// (spec.md §4.4, "wait_for(timeout)").
func (c *Context) WaitActivityFor(h activity.Handle, deadline int64) {
	c.handoff(yieldMsg{kind: kindWaitActivity, handle: h, hasDeadline: true, deadline: deadline})
}

// Join blocks until target terminates, or deadline passes if hasDeadline.
// Joining an actor that is already dead (or unknown) returns at the next
// resume without blocking.
func (c *Context) Join(target ID, deadline int64, hasDeadline bool) {
	c.handoff(yieldMsg{kind: kindJoin, joinTarget: target, deadline: deadline, hasDeadline: hasDeadline})
}

// Sleep creates a Sleep activity of the given duration and blocks on it,
// returning its handle (spec.md §4.6, "sleep_for(d) creates a Sleep
// activity; actor blocks on it").
func (c *Context) Sleep(ar *activity.Arena, duration float64) activity.Handle {
	h := activity.NewSleep(ar, duration)
	c.WaitActivity(h)
	return h
}
