package queries

//go:generate mockgen -source=schedule.go -destination=../../../tests/mock/queries/schedule_mock.go -package=queriesmock

import (
	"context"
	"strings"
	"time"

	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/usecase/shared"
)

const (
	availabilityDays = 8
	listTimeLayout   = "3:04 PM"
)

type ScheduleReadStore interface {
	// FindOpenStarts lists distinct (start, room type) pairs of unassigned
	// slots starting in [from, to), ordered by start then room type.
	FindOpenStarts(ctx context.Context, from, to time.Time) ([]*AvailableTime, error)
	// FindReserved lists reserved slots starting in [from, to), ordered by start.
	FindReserved(ctx context.Context, from, to time.Time) ([]*ReservedSlotView, error)
}

type ScheduleQueries interface {
	AvailableTimes(ctx context.Context) ([]*AvailableTime, error)
	CurrentWeekHours(ctx context.Context) ([]*DayHoursView, error)
	AttendantList(ctx context.Context) ([]*AttendantEntry, error)
	AdminList(ctx context.Context, date time.Time) ([]*AdminEntry, error)
}

type scheduleQueriesImpl struct {
	store ScheduleReadStore
	uow   shared.UnitOfWork
	clock clock.Clock
	loc   *time.Location
}

func NewScheduleQueries(store ScheduleReadStore, uow shared.UnitOfWork, clk clock.Clock, loc *time.Location) ScheduleQueries {
	return &scheduleQueriesImpl{store: store, uow: uow, clock: clk, loc: loc}
}

// AvailableTimes covers eight days from the window start. Once today's
// opening has passed nothing else is bookable today, so the window then
// starts one minute after today's closing.
func (q *scheduleQueriesImpl) AvailableTimes(ctx context.Context) ([]*AvailableTime, error) {
	now := q.clock.Now().In(q.loc)
	from := now

	var today *hours.DailyHours
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, err := tx.Hours().FindByDay(ctx, clock.Midnight(now, q.loc))
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		today = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if today != nil {
		opening, hasOpening := today.OpeningAt()
		closing, hasClosing := today.ClosingAt()
		if hasOpening && hasClosing && opening.Before(now) {
			from = closing.Add(time.Minute)
		}
	}

	return q.store.FindOpenStarts(ctx, from, from.AddDate(0, 0, availabilityDays))
}

// CurrentWeekHours returns the stored rows of the Sunday-anchored week containing today.
func (q *scheduleQueriesImpl) CurrentWeekHours(ctx context.Context) ([]*DayHoursView, error) {
	sunday := clock.StartOfWeek(clock.Today(q.clock, q.loc), time.Sunday)

	var rows []*hours.DailyHours
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		rows, err = tx.Hours().FindRange(ctx, sunday, sunday.AddDate(0, 0, 6))
		return err
	})
	if err != nil {
		return nil, err
	}

	views := make([]*DayHoursView, 0, len(rows))
	for _, h := range rows {
		views = append(views, toDayHoursView(h))
	}
	return views, nil
}

func (q *scheduleQueriesImpl) AttendantList(ctx context.Context) ([]*AttendantEntry, error) {
	rows, err := q.reservedOn(ctx, clock.Today(q.clock, q.loc))
	if err != nil {
		return nil, err
	}
	entries := make([]*AttendantEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, &AttendantEntry{
			FirstName: r.FirstName,
			Time:      r.StartAt.In(q.loc).Format(listTimeLayout),
			RoomType:  strings.ToLower(r.RoomType),
			Notes:     r.Notes,
		})
	}
	return entries, nil
}

func (q *scheduleQueriesImpl) AdminList(ctx context.Context, date time.Time) ([]*AdminEntry, error) {
	rows, err := q.reservedOn(ctx, clock.Midnight(date, q.loc))
	if err != nil {
		return nil, err
	}
	entries := make([]*AdminEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, &AdminEntry{
			SlotID:    r.SlotID,
			Title:     r.Title,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     r.Phone,
			StartAt:   r.StartAt.In(q.loc),
			Time:      r.StartAt.In(q.loc).Format(listTimeLayout),
			RoomType:  strings.ToLower(r.RoomType),
			Notes:     r.Notes,
		})
	}
	return entries, nil
}

func (q *scheduleQueriesImpl) reservedOn(ctx context.Context, day time.Time) ([]*ReservedSlotView, error) {
	return q.store.FindReserved(ctx, day, day.AddDate(0, 0, 1))
}

func toDayHoursView(h *hours.DailyHours) *DayHoursView {
	v := &DayHoursView{
		Date:    h.Day().Format(time.DateOnly),
		Weekday: h.Day().Weekday().String(),
		Closed:  h.IsClosed(),
	}
	if o, ok := h.Opening(); ok {
		s := o.String()
		v.Opening = &s
	}
	if c, ok := h.Closing(); ok {
		s := c.String()
		v.Closing = &s
	}
	return v
}
