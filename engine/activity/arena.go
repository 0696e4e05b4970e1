package activity

import "fmt"

// Handle is a copyable, comparable POD reference into an Arena. It never
// dangles silently: a stale handle's generation no longer matches the slot's
// current generation, and lookups report ErrStale instead of reading
// reclaimed storage. This realizes spec.md §9's "arena + generational index"
// guidance in place of the source's intrusive reference counting.
type Handle struct {
	slot int
	gen  uint32
}

// Zero reports whether h is the zero Handle (never a valid reference).
func (h Handle) Zero() bool { return h.slot == 0 && h.gen == 0 }

func (h Handle) String() string { return fmt.Sprintf("activity#%d.%d", h.slot, h.gen) }

// ErrStale is returned by Arena.Get when a Handle refers to a slot that has
// since been reclaimed and possibly reused.
type ErrStale struct{ Handle Handle }

func (e ErrStale) Error() string { return fmt.Sprintf("%v: stale handle", e.Handle) }

type slotEntry struct {
	gen  uint32
	live bool
	act  *Activity
}

// Arena is a per-engine slab of Activities, indexed by (slot, generation).
// It is not safe for concurrent use across goroutines; it is only ever
// touched by the maestro, consistent with spec.md §5's cooperative model.
type Arena struct {
	slots     []slotEntry
	freeList  []int
	liveCount int
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{slots: []slotEntry{{}}} // slot 0 reserved, never allocated
}

// New allocates a fresh Exec/Comm/Io/Sleep/Synchro activity and returns its
// handle. payload must be one of *Exec, *Comm, *Io, *Sleep, *Synchro.
func (ar *Arena) New(kind Kind, payload any) Handle {
	a := newActivity(kind, payload)
	var slot int
	if n := len(ar.freeList); n > 0 {
		slot = ar.freeList[n-1]
		ar.freeList = ar.freeList[:n-1]
		ar.slots[slot].gen++
	} else {
		slot = len(ar.slots)
		ar.slots = append(ar.slots, slotEntry{gen: 1})
	}
	ar.slots[slot].live = true
	ar.slots[slot].act = a
	h := Handle{slot: slot, gen: ar.slots[slot].gen}
	a.Handle = h
	ar.liveCount++
	return h
}

// Get resolves a handle to its Activity, or ErrStale if reclaimed.
func (ar *Arena) Get(h Handle) (*Activity, error) {
	if h.slot <= 0 || h.slot >= len(ar.slots) {
		return nil, ErrStale{h}
	}
	e := ar.slots[h.slot]
	if !e.live || e.gen != h.gen {
		return nil, ErrStale{h}
	}
	return e.act, nil
}

// MustGet is Get without the error return, for call sites that have just
// validated the handle (e.g. immediately after New).
func (ar *Arena) MustGet(h Handle) *Activity {
	a, err := ar.Get(h)
	if err != nil {
		panic(err)
	}
	return a
}

// Unref decrements the activity's refcount (I5) and reclaims the slot when
// it reaches zero. Outstanding handles then observe ErrStale: the freed
// slot is no longer live, and New bumps its generation when it reuses it,
// so an old handle never reaches a reused activity.
func (ar *Arena) Unref(h Handle) error {
	a, err := ar.Get(h)
	if err != nil {
		return err
	}
	if a.Unref() > 0 {
		return nil
	}
	ar.slots[h.slot].live = false
	ar.slots[h.slot].act = nil
	ar.freeList = append(ar.freeList, h.slot)
	ar.liveCount--
	return nil
}

// Live returns the number of currently-allocated activities.
func (ar *Arena) Live() int { return ar.liveCount }

// Started returns every activity currently in StateStarted, for the
// solver to consume each scheduling round.
func (ar *Arena) Started() []*Activity {
	out := make([]*Activity, 0, ar.liveCount)
	for i := 1; i < len(ar.slots); i++ {
		e := ar.slots[i]
		if e.live && e.act.State == StateStarted {
			out = append(out, e.act)
		}
	}
	return out
}
