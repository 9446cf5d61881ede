package readstore

import (
	"context"

	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

var _ queries.UserQueries = (*UserReadStore)(nil)

func (s *UserReadStore) Get(ctx context.Context, id uuid.UUID) (*queries.UserView, error) {
	query := `
		SELECT id, restaurant_id, email, name, role, last_login
		FROM users
		WHERE id = $1 AND is_active = true`

	var v queries.UserView
	err := s.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.RestaurantID, &v.Email, &v.Name, &v.Role, &v.LastLogin,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get user view", err)
	}
	return &v, nil
}
