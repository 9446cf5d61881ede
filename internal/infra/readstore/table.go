package readstore

import (
	"context"

	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
)

type TableReadStore struct {
	db db.DBTX
}

func NewTableReadStore(dbtx db.DBTX) *TableReadStore {
	return &TableReadStore{db: dbtx}
}

var _ queries.TableQueries = (*TableReadStore)(nil)

func (s *TableReadStore) List(ctx context.Context, restaurantID uuid.UUID) ([]queries.TableView, error) {
	return listTables(ctx, s.db, restaurantID)
}

func (s *TableReadStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (*queries.TableView, error) {
	query := `
		SELECT id, name, capacity, shape, created_at, updated_at
		FROM tables
		WHERE restaurant_id = $1 AND id = $2`

	var v queries.TableView
	err := s.db.QueryRow(ctx, query, restaurantID, id).Scan(
		&v.ID, &v.Name, &v.Capacity, &v.Shape, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get table view", err)
	}
	return &v, nil
}

func listTables(ctx context.Context, dbtx db.DBTX, restaurantID uuid.UUID) ([]queries.TableView, error) {
	query := `
		SELECT id, name, capacity, shape, created_at, updated_at
		FROM tables
		WHERE restaurant_id = $1
		ORDER BY name`

	rows, err := dbtx.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list tables", err)
	}
	defer rows.Close()

	out := []queries.TableView{}
	for rows.Next() {
		var v queries.TableView
		if err := rows.Scan(&v.ID, &v.Name, &v.Capacity, &v.Shape, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan table view", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate table views", err)
	}
	return out, nil
}
