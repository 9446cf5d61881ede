// Package queries is the read side: view types plus the interfaces the
// handlers consume. Implementations live in infra/readstore and read
// committed state directly, bypassing the domain entities.
package queries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRange = errors.New("invalid date range")

type ReservationQueries interface {
	// Timeline returns the day grid for the service day containing date.
	Timeline(ctx context.Context, restaurantID uuid.UUID, date time.Time) (*TimelineView, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (*ReservationView, error)
	ListByCustomer(ctx context.Context, restaurantID, customerID uuid.UUID, limit int) ([]ReservationView, error)
}

type TableQueries interface {
	List(ctx context.Context, restaurantID uuid.UUID) ([]TableView, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (*TableView, error)
}

type CustomerQueries interface {
	Get(ctx context.Context, restaurantID, id uuid.UUID) (*CustomerView, error)
	// Search filters by name substring and/or phone digits; empty filters
	// list the most recently updated profiles.
	Search(ctx context.Context, restaurantID uuid.UUID, name, phone string, limit int) ([]CustomerView, error)
	// MatchByPhone runs the fuzzy phone lookup used when taking a booking:
	// exact normalized matches first, then partial containment.
	MatchByPhone(ctx context.Context, restaurantID uuid.UUID, phone string) ([]CustomerMatch, error)
}

type WaitlistQueries interface {
	Board(ctx context.Context, restaurantID uuid.UUID) ([]WaitlistEntryView, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (*WaitlistEntryView, error)
}

type AnalyticsQueries interface {
	Summary(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (*AnalyticsSummary, error)
}

type UserQueries interface {
	Get(ctx context.Context, id uuid.UUID) (*UserView, error)
}
