package repository

import (
	"context"
	"time"

	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/infra/db"

	"github.com/jackc/pgx/v5/pgtype"
)

const createNotificationJobSQL = `
	INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
	VALUES ($1, $2, $3, $4, 'queued')`

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(db db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := r.db.Exec(ctx, createNotificationJobSQL, kind, topic, payload, pgtype.Timestamptz{Time: runAt, Valid: true})
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
