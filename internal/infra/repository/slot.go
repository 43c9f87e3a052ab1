package repository

import (
	"context"
	"time"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/infra/db"
	"mikvah-scheduler/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	slotColumns = `id, start_at, room_type, user_id, charge_id, notes`

	countSlotsInRangeSQL = `
		SELECT count(*)
		FROM appointment_slots
		WHERE start_at >= $1 AND start_at < $2 AND room_type = $3`

	insertSlotSQL = `
		INSERT INTO appointment_slots (start_at, room_type)
		VALUES ($1, $2)`

	findSlotByIDSQL = `
		SELECT ` + slotColumns + `
		FROM appointment_slots
		WHERE id = $1`

	findFirstAvailableSlotSQL = `
		SELECT ` + slotColumns + `
		FROM appointment_slots
		WHERE start_at = $1 AND room_type = $2 AND user_id IS NULL
		ORDER BY id
		LIMIT 1`

	saveSlotSQL = `
		UPDATE appointment_slots
		SET user_id = $2, charge_id = $3, notes = $4
		WHERE id = $1`
)

// SlotRow mirrors an appointment_slots row.
type SlotRow struct {
	ID       int64
	StartAt  pgtype.Timestamptz
	RoomType string
	UserID   pgtype.UUID
	ChargeID pgtype.Text
	Notes    pgtype.Text
}

func (s *SlotRow) scanTargets() []any {
	return []any{&s.ID, &s.StartAt, &s.RoomType, &s.UserID, &s.ChargeID, &s.Notes}
}

type SlotRepository struct {
	db  db.DBTX
	loc *time.Location
}

func NewSlotRepository(db db.DBTX, loc *time.Location) *SlotRepository {
	return &SlotRepository{db: db, loc: loc}
}

func (r *SlotRepository) CountInRange(ctx context.Context, from, to time.Time, roomType slot.RoomType) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, countSlotsInRangeSQL, from, to, roomType.String()).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count appointment slots", err)
	}
	return n, nil
}

// InsertBatch inserts new, unassigned slots in a single round trip.
func (r *SlotRepository) InsertBatch(ctx context.Context, slots []*slot.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, s := range slots {
		batch.Queue(insertSlotSQL, s.StartAt(), s.RoomType().String())
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	inserted := 0
	for range slots {
		tag, err := results.Exec()
		if err != nil {
			return inserted, infra.WrapRepoErr("failed to insert appointment slot", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *SlotRepository) FindByID(ctx context.Context, id int64) (*slot.Slot, error) {
	var row SlotRow
	if err := r.db.QueryRow(ctx, findSlotByIDSQL, id).Scan(row.scanTargets()...); err != nil {
		return nil, infra.WrapRepoErr("failed to find appointment slot", err)
	}
	return r.toDomain(row)
}

func (r *SlotRepository) FindFirstAvailable(ctx context.Context, startAt time.Time, roomType slot.RoomType) (*slot.Slot, error) {
	var row SlotRow
	if err := r.db.QueryRow(ctx, findFirstAvailableSlotSQL, startAt, roomType.String()).Scan(row.scanTargets()...); err != nil {
		return nil, infra.WrapRepoErr("failed to find available appointment slot", err)
	}
	return r.toDomain(row)
}

func (r *SlotRepository) Save(ctx context.Context, s *slot.Slot) error {
	tag, err := r.db.Exec(ctx, saveSlotSQL,
		s.ID(),
		pgconv.PgtypeFromUUIDPtr(s.UserID()),
		pgconv.PgtypeFromStringPtr(s.ChargeID()),
		pgconv.PgtypeFromStringPtr(s.Notes()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save appointment slot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("appointment slot not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *SlotRepository) toDomain(row SlotRow) (*slot.Slot, error) {
	s, err := slot.Reconstruct(
		row.ID,
		row.StartAt.Time.In(r.loc),
		slot.RoomType(row.RoomType),
		pgconv.UUIDPtrFromPgtype(row.UserID),
		pgconv.StringPtrFromPgtype(row.ChargeID),
		pgconv.StringPtrFromPgtype(row.Notes),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("stored appointment slot is inconsistent", err, infra.KindDBFailure)
	}
	return s, nil
}
