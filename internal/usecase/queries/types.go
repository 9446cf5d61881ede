package queries

import (
	"time"

	"github.com/google/uuid"
)

type TableView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Shape     string    `json:"shape"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReservationView struct {
	ID         uuid.UUID  `json:"id"`
	TableID    uuid.UUID  `json:"table_id"`
	TableName  string     `json:"table_name"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	GuestName  string     `json:"guest_name"`
	GuestPhone string     `json:"guest_phone,omitempty"`
	PartySize  int        `json:"party_size"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	Status     string     `json:"status"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TimelineLane is one table's row on the day grid, with its reservations in
// start order.
type TimelineLane struct {
	Table        TableView         `json:"table"`
	Reservations []ReservationView `json:"reservations"`
}

// TimelineView is the full day grid: every table of the restaurant with the
// reservations whose interval touches the service day window.
type TimelineView struct {
	Date        string         `json:"date"`
	DayStart    time.Time      `json:"day_start"`
	DayEnd      time.Time      `json:"day_end"`
	SlotMinutes int            `json:"slot_minutes"`
	Lanes       []TimelineLane `json:"lanes"`
}

type CustomerView struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Tags              []string   `json:"tags"`
	TotalVisits       int        `json:"total_visits"`
	NoShowCount       int        `json:"no_show_count"`
	CancellationCount int        `json:"cancellation_count"`
	LastVisitAt       *time.Time `json:"last_visit_at,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Segment           string     `json:"segment"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CustomerMatch is one candidate from a phone lookup; Exact marks a full
// normalized-digits match as opposed to a partial containment.
type CustomerMatch struct {
	Customer CustomerView `json:"customer"`
	Exact    bool         `json:"exact"`
}

type WaitlistEntryView struct {
	ID            uuid.UUID  `json:"id"`
	GuestName     string     `json:"guest_name"`
	Phone         string     `json:"phone,omitempty"`
	PartySize     int        `json:"party_size"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	Position      int        `json:"position"`
	EstimatedWait int        `json:"estimated_wait_minutes"`
	ArrivedAt     *time.Time `json:"arrived_at,omitempty"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	SeatedAt      *time.Time `json:"seated_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type SegmentCount struct {
	Segment string `json:"segment"`
	Count   int    `json:"count"`
}

// AnalyticsSummary aggregates one restaurant over a date range. Rates are
// fractions of total reservations in the range; utilization is reserved
// table-hours over available table-hours.
type AnalyticsSummary struct {
	From              time.Time      `json:"from"`
	To                time.Time      `json:"to"`
	TotalReservations int            `json:"total_reservations"`
	StatusCounts      []StatusCount  `json:"status_counts"`
	CompletionRate    float64        `json:"completion_rate"`
	NoShowRate        float64        `json:"no_show_rate"`
	CancellationRate  float64        `json:"cancellation_rate"`
	AvgPartySize      float64        `json:"avg_party_size"`
	UtilizationRate   float64        `json:"utilization_rate"`
	Segments          []SegmentCount `json:"segments"`
}

type UserView struct {
	ID           uuid.UUID  `json:"id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
