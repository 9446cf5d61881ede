package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TimelineInvalidator evicts the cached day grid covering the given instant.
// Commands call it from after-commit hooks; a no-op implementation is valid
// when caching is disabled.
type TimelineInvalidator interface {
	InvalidateTimeline(ctx context.Context, restaurantID uuid.UUID, at time.Time)
}

type NopInvalidator struct{}

func (NopInvalidator) InvalidateTimeline(context.Context, uuid.UUID, time.Time) {}
