package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/customer"
	"tablebook/internal/domain/reservation"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository struct {
	db db.DBTX
}

func NewCustomerRepository(dbtx db.DBTX) *CustomerRepository {
	return &CustomerRepository{db: dbtx}
}

var _ shared.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (id, restaurant_id, name, phone, tags, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		c.ID(), c.RestaurantID(), c.Name(), c.Phone(), c.Tags(), c.Notes(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert customer", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $3, phone = $4, tags = $5, notes = $6, updated_at = now()
		WHERE restaurant_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query,
		c.RestaurantID(), c.ID(), c.Name(), c.Phone(), c.Tags(), c.Notes(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update customer", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("customer not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, restaurantID, id uuid.UUID) (*customer.Customer, error) {
	query := `
		SELECT id, restaurant_id, name, phone, tags,
		       total_visits, no_show_count, cancellation_count,
		       last_visit_at, notes, created_at, updated_at
		FROM customers
		WHERE restaurant_id = $1 AND id = $2`

	c, err := scanCustomer(r.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find customer", err)
	}
	return c, nil
}

// ApplyEffects folds lifecycle stat deltas into the profile in a single
// statement; last_visit_at only ever moves forward.
func (r *CustomerRepository) ApplyEffects(ctx context.Context, restaurantID, id uuid.UUID, eff reservation.Effects) error {
	if eff.IsZero() {
		return nil
	}

	query := `
		UPDATE customers
		SET total_visits = total_visits + $3,
		    no_show_count = no_show_count + $4,
		    cancellation_count = cancellation_count + $5,
		    last_visit_at = GREATEST(last_visit_at, COALESCE($6, last_visit_at)),
		    updated_at = now()
		WHERE restaurant_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query,
		restaurantID, id,
		eff.VisitDelta, eff.NoShowDelta, eff.CancellationDelta, eff.LastVisitAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to apply customer stats", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("customer not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		id, restaurantID                              uuid.UUID
		name, phone                                   string
		tags                                          []string
		totalVisits, noShowCount, cancellationCount   int
		lastVisitAt                                   *time.Time
		notes                                         string
		createdAt, updatedAt                          time.Time
	)

	if err := row.Scan(
		&id, &restaurantID, &name, &phone, &tags,
		&totalVisits, &noShowCount, &cancellationCount,
		&lastVisitAt, &notes, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return customer.ReconstructCustomer(
		id, restaurantID, name, phone, tags,
		totalVisits, noShowCount, cancellationCount,
		lastVisitAt, notes, createdAt, updatedAt,
	), nil
}
