package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInterval   = errors.New("interval end must be after start")
	ErrInvalidPartySize  = errors.New("party size must be at least 1")
	ErrEmptyGuestName    = errors.New("guest name is required")
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrInvalidAction     = errors.New("invalid lifecycle action")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrPastStart         = errors.New("start time is in the past")
)

// Reservation occupies one table of one restaurant for a half-open interval.
// The guest may optionally be linked to a customer profile; lifecycle
// transitions then carry stat side effects for that profile.
type Reservation struct {
	id           uuid.UUID
	restaurantID uuid.UUID
	tableID      uuid.UUID
	customerID   *uuid.UUID
	guestName    GuestName
	guestPhone   string
	partySize    PartySize
	interval     Interval
	status       Status
	visitCounted bool
	note         Note
	createdAt    time.Time
	updatedAt    time.Time
}

func NewReservation(
	restaurantID, tableID uuid.UUID,
	customerID *uuid.UUID,
	guestName GuestName,
	guestPhone string,
	partySize PartySize,
	interval Interval,
	now time.Time,
) (*Reservation, error) {
	if interval.Start().Before(now) {
		return nil, ErrPastStart
	}

	return &Reservation{
		id:           uuid.New(),
		restaurantID: restaurantID,
		tableID:      tableID,
		customerID:   customerID,
		guestName:    guestName,
		guestPhone:   guestPhone,
		partySize:    partySize,
		interval:     interval,
		status:       StatusBooked,
	}, nil
}

func ReconstructReservation(
	id, restaurantID, tableID uuid.UUID,
	customerID *uuid.UUID,
	guestName GuestName,
	guestPhone string,
	partySize PartySize,
	interval Interval,
	status Status,
	visitCounted bool,
	note Note,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:           id,
		restaurantID: restaurantID,
		tableID:      tableID,
		customerID:   customerID,
		guestName:    guestName,
		guestPhone:   guestPhone,
		partySize:    partySize,
		interval:     interval,
		status:       status,
		visitCounted: visitCounted,
		note:         note,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// Effects are the customer-stat deltas a transition produced. Applied exactly
// once per transition by the caller, inside the same transaction.
type Effects struct {
	VisitDelta        int
	NoShowDelta       int
	CancellationDelta int
	LastVisitAt       *time.Time
}

func (e Effects) IsZero() bool {
	return e.VisitDelta == 0 && e.NoShowDelta == 0 && e.CancellationDelta == 0 && e.LastVisitAt == nil
}

// Apply performs a lifecycle action. Re-applying the current status is a
// no-op (changed=false) so repeated requests never double-count stats.
// Transitions out of a terminal state are rejected.
func (r *Reservation) Apply(action Action, now time.Time) (bool, Effects, error) {
	next, ok := action.TargetStatus()
	if !ok {
		return false, Effects{}, ErrInvalidAction
	}
	return r.TransitionTo(next, now)
}

func (r *Reservation) TransitionTo(next Status, now time.Time) (bool, Effects, error) {
	if !next.IsValid() {
		return false, Effects{}, ErrInvalidStatus
	}
	if next == r.status {
		return false, Effects{}, nil
	}
	if !r.status.CanTransitionTo(next) {
		return false, Effects{}, ErrIllegalTransition
	}

	r.status = next
	r.updatedAt = now
	return true, r.effectsOf(next, now), nil
}

// effectsOf computes the stat deltas for an executed transition. A visit is
// counted once per reservation lifetime, on whichever of seated/finished
// happens first; the visitCounted flag guards the double-count.
func (r *Reservation) effectsOf(entered Status, now time.Time) Effects {
	if r.customerID == nil {
		return Effects{}
	}

	var eff Effects
	switch entered {
	case StatusSeated, StatusFinished:
		if !r.visitCounted {
			r.visitCounted = true
			eff.VisitDelta = 1
			t := now
			eff.LastVisitAt = &t
		}
	case StatusNoShow:
		eff.NoShowDelta = 1
	case StatusCancelled:
		eff.CancellationDelta = 1
	}
	return eff
}

// Reschedule moves the reservation to another table and/or interval.
// Availability against other reservations is the caller's concern.
func (r *Reservation) Reschedule(tableID uuid.UUID, interval Interval, now time.Time) error {
	if r.status.IsTerminal() {
		return ErrIllegalTransition
	}
	if interval.Start().Before(now) {
		return ErrPastStart
	}

	r.tableID = tableID
	r.interval = interval
	r.updatedAt = now
	return nil
}

func (r *Reservation) UpdateDetails(guestName GuestName, guestPhone string, partySize PartySize, note Note, now time.Time) {
	r.guestName = guestName
	r.guestPhone = guestPhone
	r.partySize = partySize
	r.note = note
	r.updatedAt = now
}

func (r *Reservation) LinkCustomer(customerID uuid.UUID) {
	id := customerID
	r.customerID = &id
}

// EligibleForNoShowSweep reports whether the reservation should be auto-marked
// no_show: still awaiting the guest, with the start time more than grace ago.
func (r *Reservation) EligibleForNoShowSweep(now time.Time, grace time.Duration) bool {
	if r.status != StatusBooked && r.status != StatusConfirmed {
		return false
	}
	return now.Sub(r.interval.Start()) > grace
}

func (r *Reservation) ID() uuid.UUID           { return r.id }
func (r *Reservation) RestaurantID() uuid.UUID { return r.restaurantID }
func (r *Reservation) TableID() uuid.UUID      { return r.tableID }
func (r *Reservation) CustomerID() *uuid.UUID  { return r.customerID }
func (r *Reservation) GuestName() GuestName    { return r.guestName }
func (r *Reservation) GuestPhone() string      { return r.guestPhone }
func (r *Reservation) PartySize() PartySize    { return r.partySize }
func (r *Reservation) Interval() Interval      { return r.interval }
func (r *Reservation) Status() Status          { return r.status }
func (r *Reservation) VisitCounted() bool      { return r.visitCounted }
func (r *Reservation) Note() Note              { return r.note }
func (r *Reservation) CreatedAt() time.Time    { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time    { return r.updatedAt }
