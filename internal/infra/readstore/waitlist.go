package readstore

import (
	"context"
	"time"

	"tablebook/internal/domain/waitlist"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WaitlistReadStore struct {
	db          db.DBTX
	avgTurnover int
}

func NewWaitlistReadStore(dbtx db.DBTX, cfg config.ScheduleConfig) *WaitlistReadStore {
	return &WaitlistReadStore{db: dbtx, avgTurnover: cfg.AvgTurnoverMinutes}
}

var _ queries.WaitlistQueries = (*WaitlistReadStore)(nil)

const waitlistViewColumns = `
	id, guest_name, phone, party_size,
	status, priority, position,
	arrived_at, notified_at, seated_at, notes,
	created_at, updated_at`

// Board lists the active queue in position order with wait estimates.
func (s *WaitlistReadStore) Board(ctx context.Context, restaurantID uuid.UUID) ([]queries.WaitlistEntryView, error) {
	query := `SELECT ` + waitlistViewColumns + `
		FROM waitlist_entries
		WHERE restaurant_id = $1 AND status IN ('waiting', 'arrived', 'notified')
		ORDER BY position`

	rows, err := s.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query waitlist board", err)
	}
	defer rows.Close()

	out := []queries.WaitlistEntryView{}
	for rows.Next() {
		v, err := s.scanEntryView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan waitlist view", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate waitlist views", err)
	}
	return out, nil
}

func (s *WaitlistReadStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (*queries.WaitlistEntryView, error) {
	query := `SELECT ` + waitlistViewColumns + `
		FROM waitlist_entries
		WHERE restaurant_id = $1 AND id = $2`

	v, err := s.scanEntryView(s.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get waitlist view", err)
	}
	return &v, nil
}

func (s *WaitlistReadStore) scanEntryView(row pgx.Row) (queries.WaitlistEntryView, error) {
	var v queries.WaitlistEntryView
	err := row.Scan(
		&v.ID, &v.GuestName, &v.Phone, &v.PartySize,
		&v.Status, &v.Priority, &v.Position,
		&v.ArrivedAt, &v.NotifiedAt, &v.SeatedAt, &v.Notes,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return queries.WaitlistEntryView{}, err
	}
	if waitlist.Status(v.Status).IsActive() {
		v.EstimatedWait = int(waitlist.EstimateWait(v.Position, s.avgTurnover) / time.Minute)
	}
	return v, nil
}
