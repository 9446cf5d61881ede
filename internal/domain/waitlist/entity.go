package waitlist

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyGuestName   = errors.New("guest name is required")
	ErrInvalidPartySize = errors.New("party size must be at least 1")
	ErrInvalidStatus    = errors.New("invalid waitlist status")
	ErrInvalidPriority  = errors.New("invalid waitlist priority")
	ErrEntryClosed      = errors.New("waitlist entry is already closed")
)

// Entry is one walk-in party in a restaurant's wait queue. Position is a
// plain FIFO counter over active entries; priority is display metadata and
// does not reorder the queue.
type Entry struct {
	id           uuid.UUID
	restaurantID uuid.UUID
	guestName    string
	phone        string
	partySize    int
	status       Status
	priority     Priority
	position     int
	arrivedAt    *time.Time
	notifiedAt   *time.Time
	seatedAt     *time.Time
	notes        string
	createdAt    time.Time
	updatedAt    time.Time
}

func NewEntry(restaurantID uuid.UUID, guestName, phone string, partySize int, priority Priority, notes string) (*Entry, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return nil, ErrEmptyGuestName
	}
	if partySize < 1 {
		return nil, ErrInvalidPartySize
	}
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	return &Entry{
		id:           uuid.New(),
		restaurantID: restaurantID,
		guestName:    guestName,
		phone:        phone,
		partySize:    partySize,
		status:       StatusWaiting,
		priority:     priority,
		notes:        notes,
	}, nil
}

func ReconstructEntry(
	id, restaurantID uuid.UUID,
	guestName, phone string,
	partySize int,
	status Status,
	priority Priority,
	position int,
	arrivedAt, notifiedAt, seatedAt *time.Time,
	notes string,
	createdAt, updatedAt time.Time,
) *Entry {
	return &Entry{
		id:           id,
		restaurantID: restaurantID,
		guestName:    guestName,
		phone:        phone,
		partySize:    partySize,
		status:       status,
		priority:     priority,
		position:     position,
		arrivedAt:    arrivedAt,
		notifiedAt:   notifiedAt,
		seatedAt:     seatedAt,
		notes:        notes,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// SetStatus records a status change with its per-transition timestamp.
// Status flow here is deliberately loose (any order may happen at the host
// stand), but closed entries stay closed.
func (e *Entry) SetStatus(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !e.status.IsActive() && e.status != next {
		return ErrEntryClosed
	}
	if next == e.status {
		return nil
	}

	e.status = next
	e.updatedAt = now
	t := now
	switch next {
	case StatusArrived:
		e.arrivedAt = &t
	case StatusNotified:
		e.notifiedAt = &t
	case StatusSeated:
		e.seatedAt = &t
	}
	return nil
}

func (e *Entry) AssignPosition(position int, now time.Time) {
	e.position = position
	e.updatedAt = now
}

func (e *Entry) UpdateDetails(guestName, phone string, partySize int, priority Priority, notes string, now time.Time) error {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return ErrEmptyGuestName
	}
	if partySize < 1 {
		return ErrInvalidPartySize
	}
	if !priority.IsValid() {
		return ErrInvalidPriority
	}
	e.guestName = guestName
	e.phone = phone
	e.partySize = partySize
	e.priority = priority
	e.notes = notes
	e.updatedAt = now
	return nil
}

func (e *Entry) IsActive() bool {
	return e.status.IsActive()
}

func (e *Entry) ID() uuid.UUID           { return e.id }
func (e *Entry) RestaurantID() uuid.UUID { return e.restaurantID }
func (e *Entry) GuestName() string       { return e.guestName }
func (e *Entry) Phone() string           { return e.phone }
func (e *Entry) PartySize() int          { return e.partySize }
func (e *Entry) Status() Status          { return e.status }
func (e *Entry) Priority() Priority      { return e.priority }
func (e *Entry) Position() int           { return e.position }
func (e *Entry) ArrivedAt() *time.Time   { return e.arrivedAt }
func (e *Entry) NotifiedAt() *time.Time  { return e.notifiedAt }
func (e *Entry) SeatedAt() *time.Time    { return e.seatedAt }
func (e *Entry) Notes() string           { return e.notes }
func (e *Entry) CreatedAt() time.Time    { return e.createdAt }
func (e *Entry) UpdatedAt() time.Time    { return e.updatedAt }
