package activity

// Sleep is the payload for a fixed-duration elapse with no solver variable:
// its "rate" is implicitly 1, so Remaining counts down directly with the
// clock rather than through the resource-sharing solver.
type Sleep struct {
	Duration float64
}

// NewSleep allocates a Sleep activity of the given virtual-time duration.
func NewSleep(ar *Arena, duration float64) Handle {
	h := ar.New(KindSleep, &Sleep{Duration: duration})
	a := ar.MustGet(h)
	a.Remaining = duration
	return h
}
