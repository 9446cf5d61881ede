package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/table"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TableRepository struct {
	db db.DBTX
}

func NewTableRepository(dbtx db.DBTX) *TableRepository {
	return &TableRepository{db: dbtx}
}

var _ shared.TableRepository = (*TableRepository)(nil)

func (r *TableRepository) Create(ctx context.Context, t *table.Table) error {
	query := `
		INSERT INTO tables (id, restaurant_id, name, capacity, shape)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		t.ID(), t.RestaurantID(), t.Name(), t.Capacity(), string(t.Shape()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert table", err)
	}
	return nil
}

func (r *TableRepository) Update(ctx context.Context, t *table.Table) error {
	query := `
		UPDATE tables
		SET name = $3, capacity = $4, shape = $5, updated_at = now()
		WHERE restaurant_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query,
		t.RestaurantID(), t.ID(), t.Name(), t.Capacity(), string(t.Shape()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update table", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("table not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *TableRepository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tables WHERE restaurant_id = $1 AND id = $2`,
		restaurantID, id,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to delete table", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("table not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *TableRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*table.Table, error) {
	query := `
		SELECT id, restaurant_id, name, capacity, shape, created_at, updated_at
		FROM tables
		WHERE restaurant_id = $1 AND id = $2`

	t, err := scanTable(r.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find table", err)
	}
	return t, nil
}

// LockByID takes a row lock on the table for the rest of the transaction.
// Every scheduling write for a table goes through this lock, so availability
// checks and inserts cannot interleave between requests.
func (r *TableRepository) LockByID(ctx context.Context, restaurantID, id uuid.UUID) (*table.Table, error) {
	query := `
		SELECT id, restaurant_id, name, capacity, shape, created_at, updated_at
		FROM tables
		WHERE restaurant_id = $1 AND id = $2
		FOR UPDATE`

	t, err := scanTable(r.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock table", err)
	}
	return t, nil
}

func (r *TableRepository) HasBlockingReservations(ctx context.Context, tableID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE table_id = $1 AND status IN ('booked', 'confirmed', 'seated')
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, tableID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check table reservations", err)
	}
	return exists, nil
}

func scanTable(row pgx.Row) (*table.Table, error) {
	var (
		id, restaurantID     uuid.UUID
		name                 string
		capacity             int
		shape                string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &restaurantID, &name, &capacity, &shape, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return table.ReconstructTable(id, restaurantID, name, capacity, table.Shape(shape), createdAt, updatedAt), nil
}
