package repository

import (
	"context"
	"time"

	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

var _ shared.NotificationRepository = (*NotificationRepository)(nil)

// CreateJob enqueues an outbox row. Writing it in the same transaction as the
// triggering change means a rollback also drops the notification.
func (r *NotificationRepository) CreateJob(ctx context.Context, restaurantID uuid.UUID, kind, topic string, payload []byte, runAt time.Time) error {
	query := `
		INSERT INTO notification_jobs (id, restaurant_id, kind, topic, payload, run_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query, uuid.New(), restaurantID, kind, topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue notification job", err)
	}
	return nil
}
