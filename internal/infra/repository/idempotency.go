package repository

import (
	"context"
	"time"

	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

var _ shared.IdempotencyRepository = (*IdempotencyRepository)(nil)

// TryInsert claims the key for this user. A duplicate-key error means another
// request (possibly in flight) already holds it.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, 'processing', $5)`

	_, err := r.db.Exec(ctx, query, key, userID, endpoint, requestHash, expiresAt)
	if err != nil {
		return infra.WrapRepoErr("failed to claim idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	query := `
		SELECT key, user_id, endpoint, request_hash, status, result_id, expires_at, created_at
		FROM idempotency_keys
		WHERE key = $1 AND user_id = $2`

	var rec shared.IdempotencyRecord
	err := r.db.QueryRow(ctx, query, key, userID).Scan(
		&rec.Key, &rec.UserID, &rec.Endpoint, &rec.RequestHash,
		&rec.Status, &rec.ResultID, &rec.ExpiresAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, key, userID uuid.UUID, resultID uuid.UUID) error {
	query := `
		UPDATE idempotency_keys
		SET status = 'completed', result_id = $3
		WHERE key = $1 AND user_id = $2`

	_, err := r.db.Exec(ctx, query, key, userID, resultID)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	return nil
}
