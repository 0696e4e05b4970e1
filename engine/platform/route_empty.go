package platform

// EmptyRouter is used by zones with no internal routing to speak of — a
// leaf zone holding a single host, where any endpoint pair within it is
// the same point (spec.md §4.1 lists "empty" among the routing variants;
// the original source uses it for single-host zones and for zones whose
// only job is to contain child zones reached entirely through gateways).
type EmptyRouter struct{}

// NewEmptyRouter returns an EmptyRouter.
func NewEmptyRouter() *EmptyRouter { return &EmptyRouter{} }

// Route implements Router: same endpoint is a zero-cost route, anything
// else has none.
func (r *EmptyRouter) Route(src, dst string) (Route, error) {
	if src == dst {
		return Route{}, nil
	}
	return Route{}, ErrNoRoute{Src: src, Dst: dst}
}

// Seal is a no-op.
func (r *EmptyRouter) Seal() error { return nil }
