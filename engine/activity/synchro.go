package activity

// SynchroKind distinguishes the four synchro variants spec.md §3 names:
// "mutex / semaphore / barrier / condition wait".
type SynchroKind int

const (
	SynchroMutex SynchroKind = iota
	SynchroSemaphore
	SynchroBarrier
	SynchroCond
)

// Synchro is the payload for a synchronization-primitive wait. It carries
// no solver variable (spec.md §3); completion is driven entirely by a
// wake-up predicate evaluated by the owning primitive (engine/actor), not
// by the resource-sharing solver.
type Synchro struct {
	Kind SynchroKind
	Name string // the primitive's identity, for diagnostics
}

// NewSynchro allocates a Synchro activity waiting on the named primitive.
func NewSynchro(ar *Arena, kind SynchroKind, name string) Handle {
	return ar.New(KindSynchro, &Synchro{Kind: kind, Name: name})
}
