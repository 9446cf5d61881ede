package shared

import (
	"time"

	"github.com/google/uuid"
)

type IdempotencyStatus string

const (
	IdempotencyProcessing IdempotencyStatus = "processing"
	IdempotencyCompleted  IdempotencyStatus = "completed"
)

type IdempotencyRecord struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	Endpoint    string
	RequestHash string
	Status      IdempotencyStatus
	ResultID    *uuid.UUID
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
