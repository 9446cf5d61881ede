package response

import (
	"github.com/google/uuid"
)

type CreateReservationResponse struct {
	ID       uuid.UUID `json:"id"`
	Warnings []string  `json:"warnings,omitempty"`
	Replayed bool      `json:"replayed,omitempty"`
}

type MoveReservationResponse struct {
	Warnings []string `json:"warnings,omitempty"`
}

// ConflictDetail is attached to 409 responses so the client can highlight
// the blocking reservation on the grid.
type ConflictDetail struct {
	ConflictingID uuid.UUID `json:"conflicting_id"`
	TableID       uuid.UUID `json:"table_id"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Status        string    `json:"status"`
}
