package request

import (
	"strings"
	"time"

	"tablebook/internal/domain/reservation"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	TableID    uuid.UUID  `json:"table_id" binding:"required"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	GuestName  string     `json:"guest_name" binding:"required"`
	GuestPhone string     `json:"guest_phone,omitempty"`
	PartySize  int        `json:"party_size" binding:"required,min=1"`
	StartTime  time.Time  `json:"start_time" binding:"required"`
	EndTime    time.Time  `json:"end_time" binding:"required"`
	Note       *string    `json:"note,omitempty"`
}

func (r CreateReservationRequest) GetNote() string {
	if r.Note == nil {
		return ""
	}
	return strings.TrimSpace(*r.Note)
}

type UpdateReservationRequest struct {
	GuestName  string  `json:"guest_name" binding:"required"`
	GuestPhone string  `json:"guest_phone,omitempty"`
	PartySize  int     `json:"party_size" binding:"required,min=1"`
	Note       *string `json:"note,omitempty"`
}

func (r UpdateReservationRequest) GetNote() string {
	if r.Note == nil {
		return ""
	}
	return strings.TrimSpace(*r.Note)
}

// MoveReservationRequest relocates a reservation on the grid: a new table,
// a new time window, or both.
type MoveReservationRequest struct {
	TableID   uuid.UUID `json:"table_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (r MoveReservationRequest) ToInterval() (reservation.Interval, error) {
	return reservation.NewInterval(r.StartTime, r.EndTime)
}

type ChangeReservationStatusRequest struct {
	Action string `json:"action" binding:"required"`
}
