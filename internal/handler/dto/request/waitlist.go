package request

import (
	"time"

	"github.com/google/uuid"
)

type EnqueueWaitlistRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
	Phone     string `json:"phone,omitempty"`
	PartySize int    `json:"party_size" binding:"required,min=1"`
	Priority  string `json:"priority,omitempty" binding:"omitempty,oneof=normal vip urgent"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateWaitlistRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
	Phone     string `json:"phone,omitempty"`
	PartySize int    `json:"party_size" binding:"required,min=1"`
	Priority  string `json:"priority" binding:"required,oneof=normal vip urgent"`
	Notes     string `json:"notes,omitempty"`
}

type ChangeWaitlistStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SeatWaitlistRequest converts a waiting party into a seated reservation on
// the chosen table, starting now.
type SeatWaitlistRequest struct {
	TableID         uuid.UUID  `json:"table_id" binding:"required"`
	DurationMinutes int        `json:"duration_minutes,omitempty" binding:"omitempty,min=15"`
	CustomerID      *uuid.UUID `json:"customer_id,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
}
