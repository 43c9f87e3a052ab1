package readstore

import (
	"context"
	"time"

	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/infra/db"
	"mikvah-scheduler/internal/pkg/pgconv"
	"mikvah-scheduler/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	findOpenStartsSQL = `
		SELECT DISTINCT start_at, room_type
		FROM appointment_slots
		WHERE user_id IS NULL AND start_at >= $1 AND start_at < $2
		ORDER BY start_at, room_type`

	findReservedSQL = `
		SELECT s.id, s.start_at, s.room_type, s.notes,
		       u.title, u.first_name, u.last_name, u.email, u.phone
		FROM appointment_slots s
		JOIN users u ON u.id = s.user_id
		WHERE s.start_at >= $1 AND s.start_at < $2
		ORDER BY s.start_at, s.id`
)

// ScheduleReadStore returns start times in the facility zone.
type ScheduleReadStore struct {
	db  db.DBTX
	loc *time.Location
}

func NewScheduleReadStore(db db.DBTX, loc *time.Location) *ScheduleReadStore {
	return &ScheduleReadStore{db: db, loc: loc}
}

var _ queries.ScheduleReadStore = (*ScheduleReadStore)(nil)

func (r *ScheduleReadStore) FindOpenStarts(ctx context.Context, from, to time.Time) ([]*queries.AvailableTime, error) {
	rows, err := r.db.Query(ctx, findOpenStartsSQL, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list available times", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.AvailableTime, error) {
		var (
			startAt  pgtype.Timestamptz
			roomType string
		)
		if err := row.Scan(&startAt, &roomType); err != nil {
			return nil, err
		}
		return &queries.AvailableTime{StartAt: startAt.Time.In(r.loc), RoomType: roomType}, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan available times", err)
	}
	return result, nil
}

func (r *ScheduleReadStore) FindReserved(ctx context.Context, from, to time.Time) ([]*queries.ReservedSlotView, error) {
	rows, err := r.db.Query(ctx, findReservedSQL, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reserved slots", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.ReservedSlotView, error) {
		var (
			v       queries.ReservedSlotView
			startAt pgtype.Timestamptz
			notes   pgtype.Text
		)
		err := row.Scan(&v.SlotID, &startAt, &v.RoomType, &notes,
			&v.Title, &v.FirstName, &v.LastName, &v.Email, &v.Phone)
		if err != nil {
			return nil, err
		}
		v.StartAt = startAt.Time.In(r.loc)
		v.Notes = pgconv.StringPtrFromPgtype(notes)
		return &v, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan reserved slots", err)
	}
	return result, nil
}
