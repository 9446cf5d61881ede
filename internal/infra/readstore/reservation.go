package readstore

import (
	"context"
	"time"

	"tablebook/internal/domain/schedule"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationReadStore struct {
	db   db.DBTX
	grid schedule.Grid
}

func NewReservationReadStore(dbtx db.DBTX, cfg config.ScheduleConfig) (*ReservationReadStore, error) {
	grid, err := schedule.NewGrid(cfg.DayStartHour, cfg.SlotMinutes)
	if err != nil {
		return nil, err
	}
	return &ReservationReadStore{db: dbtx, grid: grid}, nil
}

var _ queries.ReservationQueries = (*ReservationReadStore)(nil)

const reservationViewColumns = `
	r.id, r.table_id, t.name, r.customer_id,
	r.guest_name, r.guest_phone, r.party_size,
	r.start_time, r.end_time, r.status, r.note,
	r.created_at, r.updated_at`

// Timeline builds the day grid: every table of the restaurant, each with the
// reservations whose interval touches the 24h axis anchored at the service
// day's start hour.
func (s *ReservationReadStore) Timeline(ctx context.Context, restaurantID uuid.UUID, date time.Time) (*queries.TimelineView, error) {
	day := s.grid.ServiceDay(date)
	dayStart := s.grid.AxisStart(day)
	dayEnd := dayStart.Add(24 * time.Hour)

	tables, err := listTables(ctx, s.db, restaurantID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + reservationViewColumns + `
		FROM reservations r
		JOIN tables t ON t.id = r.table_id
		WHERE r.restaurant_id = $1 AND r.start_time < $3 AND r.end_time > $2
		ORDER BY r.start_time`

	rows, err := s.db.Query(ctx, query, restaurantID, dayStart, dayEnd)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query day timeline", err)
	}
	defer rows.Close()

	byTable := make(map[uuid.UUID][]queries.ReservationView, len(tables))
	for rows.Next() {
		view, err := scanReservationView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan timeline row", err)
		}
		byTable[view.TableID] = append(byTable[view.TableID], view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate timeline rows", err)
	}

	lanes := make([]queries.TimelineLane, 0, len(tables))
	for _, tv := range tables {
		res := byTable[tv.ID]
		if res == nil {
			res = []queries.ReservationView{}
		}
		lanes = append(lanes, queries.TimelineLane{Table: tv, Reservations: res})
	}

	return &queries.TimelineView{
		Date:        day.Format("2006-01-02"),
		DayStart:    dayStart,
		DayEnd:      dayEnd,
		SlotMinutes: s.grid.SlotMinutes(),
		Lanes:       lanes,
	}, nil
}

func (s *ReservationReadStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (*queries.ReservationView, error) {
	query := `SELECT ` + reservationViewColumns + `
		FROM reservations r
		JOIN tables t ON t.id = r.table_id
		WHERE r.restaurant_id = $1 AND r.id = $2`

	view, err := scanReservationView(s.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get reservation view", err)
	}
	return &view, nil
}

func (s *ReservationReadStore) ListByCustomer(ctx context.Context, restaurantID, customerID uuid.UUID, limit int) ([]queries.ReservationView, error) {
	query := `SELECT ` + reservationViewColumns + `
		FROM reservations r
		JOIN tables t ON t.id = r.table_id
		WHERE r.restaurant_id = $1 AND r.customer_id = $2
		ORDER BY r.start_time DESC
		LIMIT $3`

	rows, err := s.db.Query(ctx, query, restaurantID, customerID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list customer reservations", err)
	}
	defer rows.Close()

	out := []queries.ReservationView{}
	for rows.Next() {
		view, err := scanReservationView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation view", err)
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation views", err)
	}
	return out, nil
}

func scanReservationView(row pgx.Row) (queries.ReservationView, error) {
	var v queries.ReservationView
	err := row.Scan(
		&v.ID, &v.TableID, &v.TableName, &v.CustomerID,
		&v.GuestName, &v.GuestPhone, &v.PartySize,
		&v.StartTime, &v.EndTime, &v.Status, &v.Note,
		&v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}
