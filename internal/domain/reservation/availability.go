package reservation

import (
	"github.com/google/uuid"
)

// Availability is the outcome of a conflict check against one table.
type Availability struct {
	Available bool
	Conflict  *Reservation
}

// CheckAvailability decides whether candidate can occupy a table already
// holding the given reservations. Only blocking statuses (booked, confirmed,
// seated) participate; cancelled and no-show reservations never conflict.
// excludeID skips the reservation currently being moved or resized so it does
// not collide with its own prior slot.
//
// Pure and allocation-free on the happy path: the UI calls this on every
// drag-over against cached data, the service re-runs it inside the commit
// transaction as the authoritative check.
func CheckAvailability(candidate Interval, existing []*Reservation, excludeID uuid.UUID) Availability {
	for _, other := range existing {
		if other.ID() == excludeID {
			continue
		}
		if !other.Status().Blocks() {
			continue
		}
		if candidate.Overlaps(other.Interval()) {
			return Availability{Available: false, Conflict: other}
		}
	}
	return Availability{Available: true}
}
