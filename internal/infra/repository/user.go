package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/user"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(dbtx db.DBTX) *UserRepository {
	return &UserRepository{db: dbtx}
}

var _ shared.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByEmail(ctx context.Context, email user.Email) (*user.User, error) {
	query := `
		SELECT id, restaurant_id, email, password_hash, name, role,
		       last_login, is_active, created_at, updated_at
		FROM users
		WHERE email = $1 AND is_active = true`

	u, err := scanUser(r.db.QueryRow(ctx, query, email.String()))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `
		SELECT id, restaurant_id, email, password_hash, name, role,
		       last_login, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id, restaurantID     uuid.UUID
		email, hash, name    string
		role                 string
		lastLogin            *time.Time
		isActive             bool
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(
		&id, &restaurantID, &email, &hash, &name, &role,
		&lastLogin, &isActive, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	addr, err := user.NewEmail(email)
	if err != nil {
		return nil, err
	}

	return user.ReconstructUser(
		id, restaurantID, addr, hash, name, user.Role(role),
		lastLogin, isActive, createdAt, updatedAt,
	), nil
}
