package repository

import (
	"context"
	"time"

	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/infra/db"
	"mikvah-scheduler/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	findHoursByDaySQL = `
		SELECT day, opening, closing, closed
		FROM daily_hours
		WHERE day = $1`

	findHoursRangeSQL = `
		SELECT day, opening, closing, closed
		FROM daily_hours
		WHERE day >= $1 AND day <= $2
		ORDER BY day`

	upsertHoursSQL = `
		INSERT INTO daily_hours (day, opening, closing, closed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day) DO UPDATE
		SET opening = EXCLUDED.opening,
		    closing = EXCLUDED.closing,
		    closed  = EXCLUDED.closed`
)

// HoursRow mirrors a daily_hours row.
type HoursRow struct {
	Day     pgtype.Date
	Opening pgtype.Time
	Closing pgtype.Time
	Closed  bool
}

type HoursRepository struct {
	db  db.DBTX
	loc *time.Location
}

func NewHoursRepository(db db.DBTX, loc *time.Location) *HoursRepository {
	return &HoursRepository{db: db, loc: loc}
}

func (r *HoursRepository) FindByDay(ctx context.Context, day time.Time) (*hours.DailyHours, error) {
	var row HoursRow
	err := r.db.QueryRow(ctx, findHoursByDaySQL, pgconv.PgtypeFromDate(day)).
		Scan(&row.Day, &row.Opening, &row.Closing, &row.Closed)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find daily hours", err)
	}
	return r.toDomain(row)
}

func (r *HoursRepository) FindRange(ctx context.Context, from, to time.Time) ([]*hours.DailyHours, error) {
	rows, err := r.db.Query(ctx, findHoursRangeSQL, pgconv.PgtypeFromDate(from), pgconv.PgtypeFromDate(to))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list daily hours", err)
	}
	collected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (HoursRow, error) {
		var h HoursRow
		err := row.Scan(&h.Day, &h.Opening, &h.Closing, &h.Closed)
		return h, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan daily hours", err)
	}

	result := make([]*hours.DailyHours, 0, len(collected))
	for _, row := range collected {
		h, err := r.toDomain(row)
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, nil
}

func (r *HoursRepository) Upsert(ctx context.Context, h *hours.DailyHours) error {
	row := FromDailyHours(h)
	_, err := r.db.Exec(ctx, upsertHoursSQL, row.Day, row.Opening, row.Closing, row.Closed)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert daily hours", err)
	}
	return nil
}

func (r *HoursRepository) toDomain(row HoursRow) (*hours.DailyHours, error) {
	day := pgconv.DateFromPgtype(row.Day, r.loc)
	h, err := hours.Reconstruct(day, timeOfDayPtr(row.Opening), timeOfDayPtr(row.Closing), row.Closed)
	if err != nil {
		return nil, infra.WrapRepoErr("stored daily hours are inconsistent", err, infra.KindDBFailure)
	}
	return h, nil
}

func FromDailyHours(h *hours.DailyHours) HoursRow {
	row := HoursRow{Day: pgconv.PgtypeFromDate(h.Day()), Closed: h.IsClosed()}
	if o, ok := h.Opening(); ok {
		d := o.SinceMidnight()
		row.Opening = pgconv.PgtypeFromClockPtr(&d)
	}
	if c, ok := h.Closing(); ok {
		d := c.SinceMidnight()
		row.Closing = pgconv.PgtypeFromClockPtr(&d)
	}
	return row
}

func timeOfDayPtr(t pgtype.Time) *hours.TimeOfDay {
	d := pgconv.ClockPtrFromPgtype(t)
	if d == nil {
		return nil
	}
	tod := hours.TimeOfDayFromDuration(*d)
	return &tod
}
