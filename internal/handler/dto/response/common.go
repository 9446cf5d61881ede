package response

import "github.com/google/uuid"

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type EnqueueWaitlistResponse struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

type SeatWaitlistResponse struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Warnings      []string  `json:"warnings,omitempty"`
}

type SweepResponse struct {
	Marked int `json:"marked"`
}
