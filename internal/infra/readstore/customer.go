package readstore

import (
	"context"

	"tablebook/internal/domain/customer"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerReadStore struct {
	db db.DBTX
}

func NewCustomerReadStore(dbtx db.DBTX) *CustomerReadStore {
	return &CustomerReadStore{db: dbtx}
}

var _ queries.CustomerQueries = (*CustomerReadStore)(nil)

const customerViewColumns = `
	id, name, phone, tags,
	total_visits, no_show_count, cancellation_count,
	last_visit_at, notes, created_at, updated_at`

func (s *CustomerReadStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (*queries.CustomerView, error) {
	query := `SELECT ` + customerViewColumns + `
		FROM customers
		WHERE restaurant_id = $1 AND id = $2`

	v, err := scanCustomerView(s.db.QueryRow(ctx, query, restaurantID, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get customer view", err)
	}
	return &v, nil
}

func (s *CustomerReadStore) Search(ctx context.Context, restaurantID uuid.UUID, name, phone string, limit int) ([]queries.CustomerView, error) {
	query := `SELECT ` + customerViewColumns + `
		FROM customers
		WHERE restaurant_id = $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR phone_digits LIKE '%' || $3 || '%')
		ORDER BY updated_at DESC
		LIMIT $4`

	rows, err := s.db.Query(ctx, query, restaurantID, name, customer.NormalizePhone(phone), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to search customers", err)
	}
	defer rows.Close()

	return collectCustomerViews(rows)
}

// MatchByPhone implements the fuzzy lookup used at booking time: the stored
// digits and the query digits match when either contains the other. Exact
// normalized matches sort first.
func (s *CustomerReadStore) MatchByPhone(ctx context.Context, restaurantID uuid.UUID, phone string) ([]queries.CustomerMatch, error) {
	digits := customer.NormalizePhone(phone)
	if digits == "" {
		return []queries.CustomerMatch{}, nil
	}

	query := `SELECT ` + customerViewColumns + `
		FROM customers
		WHERE restaurant_id = $1
		  AND (phone_digits LIKE '%' || $2 || '%' OR $2 LIKE '%' || phone_digits || '%')
		ORDER BY (phone_digits = $2) DESC, updated_at DESC
		LIMIT 20`

	rows, err := s.db.Query(ctx, query, restaurantID, digits)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to match customers by phone", err)
	}
	defer rows.Close()

	views, err := collectCustomerViews(rows)
	if err != nil {
		return nil, err
	}

	matches := make([]queries.CustomerMatch, 0, len(views))
	for _, v := range views {
		matches = append(matches, queries.CustomerMatch{
			Customer: v,
			Exact:    customer.NormalizePhone(v.Phone) == digits,
		})
	}
	return matches, nil
}

func collectCustomerViews(rows pgx.Rows) ([]queries.CustomerView, error) {
	out := []queries.CustomerView{}
	for rows.Next() {
		v, err := scanCustomerView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan customer view", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate customer views", err)
	}
	return out, nil
}

func scanCustomerView(row pgx.Row) (queries.CustomerView, error) {
	var v queries.CustomerView
	err := row.Scan(
		&v.ID, &v.Name, &v.Phone, &v.Tags,
		&v.TotalVisits, &v.NoShowCount, &v.CancellationCount,
		&v.LastVisitAt, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return queries.CustomerView{}, err
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	v.Segment = customer.SegmentOf(v.TotalVisits, v.NoShowCount)
	return v, nil
}
