package repository

import (
	"context"

	"mikvah-scheduler/internal/domain/history"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/infra/db"
	"mikvah-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	appendHistorySQL = `
		INSERT INTO reservation_history (slot_id, user_id, created_at, action, payment_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	listHistoryBySlotSQL = `
		SELECT id, slot_id, user_id, created_at, action, payment_ref
		FROM reservation_history
		WHERE slot_id = $1
		ORDER BY id`
)

type HistoryRow struct {
	ID         int64
	SlotID     int64
	UserID     uuid.UUID
	CreatedAt  pgtype.Timestamptz
	Action     string
	PaymentRef pgtype.Text
}

// HistoryRepository only appends; entries are never updated or deleted.
type HistoryRepository struct {
	db db.DBTX
}

func NewHistoryRepository(db db.DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, e *history.Entry) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, appendHistorySQL,
		e.SlotID(),
		e.UserID(),
		e.CreatedAt(),
		e.Action().String(),
		pgconv.PgtypeFromStringPtr(e.PaymentRef()),
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to append reservation history", err)
	}
	return id, nil
}

func (r *HistoryRepository) ListBySlot(ctx context.Context, slotID int64) ([]*history.Entry, error) {
	rows, err := r.db.Query(ctx, listHistoryBySlotSQL, slotID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservation history", err)
	}
	collected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (HistoryRow, error) {
		var h HistoryRow
		err := row.Scan(&h.ID, &h.SlotID, &h.UserID, &h.CreatedAt, &h.Action, &h.PaymentRef)
		return h, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan reservation history", err)
	}

	entries := make([]*history.Entry, 0, len(collected))
	for _, h := range collected {
		entries = append(entries, history.Reconstruct(
			h.ID, h.SlotID, h.UserID, history.Action(h.Action), pgconv.StringPtrFromPgtype(h.PaymentRef), h.CreatedAt.Time,
		))
	}
	return entries, nil
}
