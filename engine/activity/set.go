package activity

import "fmt"

// Set is an ordered container of Activity handles, matching spec.md §3's
// ActivitySet: push/erase/test_any/wait_any/wait_all, duplicate membership
// forbidden. Set holds membership and serves the non-blocking queries
// (TestAny, AllDone); no blocking wait-any or wait-all exists in this
// module.
type Set struct {
	order   []Handle
	members map[Handle]bool
}

// NewSet returns an empty, ordered ActivitySet.
func NewSet() *Set {
	return &Set{members: make(map[Handle]bool)}
}

// Push appends h to the set. Pushing a handle already present is an error
// (spec.md §3: "Duplicate membership is forbidden").
func (s *Set) Push(h Handle) error {
	if s.members[h] {
		return fmt.Errorf("%v: already a member of this activity set", h)
	}
	s.members[h] = true
	s.order = append(s.order, h)
	return nil
}

// Erase removes h from the set if present; it is a no-op otherwise.
func (s *Set) Erase(h Handle) {
	if !s.members[h] {
		return
	}
	delete(s.members, h)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.order) }

// Handles returns the set's members in insertion order. Callers must not
// mutate the returned slice.
func (s *Set) Handles() []Handle { return s.order }

// Contains reports set membership.
func (s *Set) Contains(h Handle) bool { return s.members[h] }

// TestAny returns any member that has reached a terminal state, or the
// zero Handle and false if none have. Non-blocking (spec.md §3: "test_any").
func (s *Set) TestAny(ar *Arena) (Handle, bool) {
	for _, h := range s.order {
		a, err := ar.Get(h)
		if err != nil {
			continue
		}
		if done, _ := a.Test(); done {
			return h, true
		}
	}
	return Handle{}, false
}

// AllDone reports whether every member has reached a terminal state.
// Non-blocking.
func (s *Set) AllDone(ar *Arena) bool {
	for _, h := range s.order {
		a, err := ar.Get(h)
		if err != nil {
			continue
		}
		if done, _ := a.Test(); !done {
			return false
		}
	}
	return true
}
