package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/reservation"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

var _ shared.ReservationRepository = (*ReservationRepository)(nil)

const reservationColumns = `
	id, restaurant_id, table_id, customer_id,
	guest_name, guest_phone, party_size,
	start_time, end_time, status, visit_counted, note,
	created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	query := `
		INSERT INTO reservations (
			id, restaurant_id, table_id, customer_id,
			guest_name, guest_phone, party_size,
			start_time, end_time, status, visit_counted, note
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		res.ID(), res.RestaurantID(), res.TableID(), res.CustomerID(),
		res.GuestName().String(), res.GuestPhone(), res.PartySize().Value(),
		res.Interval().Start(), res.Interval().End(), string(res.Status()),
		res.VisitCounted(), res.Note().String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert reservation", err)
	}
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	query := `
		UPDATE reservations
		SET table_id = $3, customer_id = $4,
		    guest_name = $5, guest_phone = $6, party_size = $7,
		    start_time = $8, end_time = $9, status = $10,
		    visit_counted = $11, note = $12, updated_at = now()
		WHERE restaurant_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query,
		res.RestaurantID(), res.ID(), res.TableID(), res.CustomerID(),
		res.GuestName().String(), res.GuestPhone(), res.PartySize().Value(),
		res.Interval().Start(), res.Interval().End(), string(res.Status()),
		res.VisitCounted(), res.Note().String(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM reservations WHERE restaurant_id = $1 AND id = $2`,
		restaurantID, id,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to delete reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE restaurant_id = $1 AND id = $2`

	row := r.db.QueryRow(ctx, query, restaurantID, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListForTableBetween(ctx context.Context, tableID uuid.UUID, from, to time.Time) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE table_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time`

	rows, err := r.db.Query(ctx, query, tableID, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations for table", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (r *ReservationRepository) ListSweepCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status IN ('booked', 'confirmed') AND start_time < $1
		ORDER BY start_time
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list sweep candidates", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation row", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation rows", err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, restaurantID, tableID uuid.UUID
		customerID                *uuid.UUID
		guestName, guestPhone     string
		partySize                 int
		startTime, endTime        time.Time
		status                    string
		visitCounted              bool
		note                      string
		createdAt, updatedAt      time.Time
	)

	if err := row.Scan(
		&id, &restaurantID, &tableID, &customerID,
		&guestName, &guestPhone, &partySize,
		&startTime, &endTime, &status, &visitCounted, &note,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	name, err := reservation.NewGuestName(guestName)
	if err != nil {
		return nil, err
	}
	size, err := reservation.NewPartySize(partySize)
	if err != nil {
		return nil, err
	}
	interval, err := reservation.NewInterval(startTime, endTime)
	if err != nil {
		return nil, err
	}

	return reservation.ReconstructReservation(
		id, restaurantID, tableID, customerID,
		name, guestPhone, size, interval,
		reservation.Status(status), visitCounted,
		reservation.NewNote(note),
		createdAt, updatedAt,
	), nil
}
