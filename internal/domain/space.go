package domain

import "github.com/google/uuid"

// Space is a capacity snapshot for one trip: the capacity of its vehicle and
// the summed size of its cargos, optionally minus one excluded cargo.
type Space struct {
	TripID   uuid.UUID
	Capacity int
	Used     int
}

// Available is Capacity minus Used. It goes negative only for a trip that is
// already over capacity, which the audit job reports.
func (s Space) Available() int {
	return s.Capacity - s.Used
}

// Admits reports whether adding size units keeps Used within Capacity.
// Capacity and Used are never negative, so the subtraction cannot overflow.
func (s Space) Admits(size int) bool {
	return size <= s.Capacity-s.Used
}

// Overloaded reports whether Used exceeds Capacity.
func (s Space) Overloaded() bool {
	return s.Used > s.Capacity
}
