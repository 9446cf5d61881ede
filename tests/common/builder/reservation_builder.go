package builder

import (
	"time"

	"tablebook/internal/domain/reservation"

	"github.com/google/uuid"
)

// ReservationBuilder assembles valid reservation entities for tests; mutate
// single fields through the With* methods to exercise validation boundaries.
type ReservationBuilder struct {
	restaurantID uuid.UUID
	tableID      uuid.UUID
	customerID   *uuid.UUID
	guestName    string
	guestPhone   string
	partySize    int
	start        time.Time
	end          time.Time
	now          time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return &ReservationBuilder{
		restaurantID: uuid.New(),
		tableID:      uuid.New(),
		guestName:    "Dana Vega",
		guestPhone:   "090-1234-5678",
		partySize:    2,
		start:        now.Add(9 * time.Hour),  // 19:00
		end:          now.Add(10*time.Hour + 30*time.Minute),
		now:          now,
	}
}

func (b *ReservationBuilder) WithRestaurantID(id uuid.UUID) *ReservationBuilder {
	b.restaurantID = id
	return b
}

func (b *ReservationBuilder) WithTableID(id uuid.UUID) *ReservationBuilder {
	b.tableID = id
	return b
}

func (b *ReservationBuilder) WithCustomerID(id uuid.UUID) *ReservationBuilder {
	b.customerID = &id
	return b
}

func (b *ReservationBuilder) WithGuestName(name string) *ReservationBuilder {
	b.guestName = name
	return b
}

func (b *ReservationBuilder) WithPartySize(size int) *ReservationBuilder {
	b.partySize = size
	return b
}

func (b *ReservationBuilder) WithInterval(start, end time.Time) *ReservationBuilder {
	b.start = start
	b.end = end
	return b
}

func (b *ReservationBuilder) WithNow(now time.Time) *ReservationBuilder {
	b.now = now
	return b
}

func (b *ReservationBuilder) Now() time.Time {
	return b.now
}

func (b *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	name, err := reservation.NewGuestName(b.guestName)
	if err != nil {
		return nil, err
	}
	size, err := reservation.NewPartySize(b.partySize)
	if err != nil {
		return nil, err
	}
	interval, err := reservation.NewInterval(b.start, b.end)
	if err != nil {
		return nil, err
	}

	return reservation.NewReservation(
		b.restaurantID,
		b.tableID,
		b.customerID,
		name,
		b.guestPhone,
		size,
		interval,
		b.now,
	)
}
