package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/waitlist"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WaitlistRepository struct {
	db db.DBTX
}

func NewWaitlistRepository(dbtx db.DBTX) *WaitlistRepository {
	return &WaitlistRepository{db: dbtx}
}

var _ shared.WaitlistRepository = (*WaitlistRepository)(nil)

const waitlistColumns = `
	id, restaurant_id, guest_name, phone, party_size,
	status, priority, position,
	arrived_at, notified_at, seated_at, notes,
	created_at, updated_at`

func (r *WaitlistRepository) Create(ctx context.Context, e *waitlist.Entry) error {
	query := `
		INSERT INTO waitlist_entries (
			id, restaurant_id, guest_name, phone, party_size,
			status, priority, position, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		e.ID(), e.RestaurantID(), e.GuestName(), e.Phone(), e.PartySize(),
		string(e.Status()), string(e.Priority()), e.Position(), e.Notes(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert waitlist entry", err)
	}
	return nil
}

func (r *WaitlistRepository) Update(ctx context.Context, e *waitlist.Entry) error {
	query := `
		UPDATE waitlist_entries
		SET guest_name = $3, phone = $4, party_size = $5,
		    status = $6, priority = $7, position = $8,
		    arrived_at = $9, notified_at = $10, seated_at = $11,
		    notes = $12, updated_at = now()
		WHERE restaurant_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query,
		e.RestaurantID(), e.ID(), e.GuestName(), e.Phone(), e.PartySize(),
		string(e.Status()), string(e.Priority()), e.Position(),
		e.ArrivedAt(), e.NotifiedAt(), e.SeatedAt(), e.Notes(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update waitlist entry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("waitlist entry not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *WaitlistRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*waitlist.Entry, error) {
	query := `SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE restaurant_id = $1 AND id = $2`

	e, err := scanWaitlistEntry(r.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find waitlist entry", err)
	}
	return e, nil
}

// ListActiveForUpdate locks the restaurant's active queue rows in position
// order so concurrent enqueue/remove operations serialize.
func (r *WaitlistRepository) ListActiveForUpdate(ctx context.Context, restaurantID uuid.UUID) ([]*waitlist.Entry, error) {
	query := `SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE restaurant_id = $1 AND status IN ('waiting', 'arrived', 'notified')
		ORDER BY position
		FOR UPDATE`

	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active waitlist entries", err)
	}
	defer rows.Close()

	var out []*waitlist.Entry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan waitlist row", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate waitlist rows", err)
	}
	return out, nil
}

func scanWaitlistEntry(row pgx.Row) (*waitlist.Entry, error) {
	var (
		id, restaurantID                uuid.UUID
		guestName, phone                string
		partySize                       int
		status, priority                string
		position                        int
		arrivedAt, notifiedAt, seatedAt *time.Time
		notes                           string
		createdAt, updatedAt            time.Time
	)

	if err := row.Scan(
		&id, &restaurantID, &guestName, &phone, &partySize,
		&status, &priority, &position,
		&arrivedAt, &notifiedAt, &seatedAt, &notes,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return waitlist.ReconstructEntry(
		id, restaurantID, guestName, phone, partySize,
		waitlist.Status(status), waitlist.Priority(priority), position,
		arrivedAt, notifiedAt, seatedAt, notes,
		createdAt, updatedAt,
	), nil
}
