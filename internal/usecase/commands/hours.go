package commands

import (
	"context"
	"log/slog"
	"time"

	"mikvah-scheduler/internal/domain/calendar"
	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/usecase/shared"
)

//go:generate mockgen -source=hours.go -destination=../../../tests/mock/commands/hours_mock.go -package=commandsmock

// weeksInWindow counts the previous week plus the two following weeks.
const weeksInWindow = 3

type RecomputeResult struct {
	Written   int
	Unchanged int
	Failed    int
}

// WeekPlan is the computed schedule of one Sunday-anchored week. Days whose
// solar events could not be computed are listed in Skipped.
type WeekPlan struct {
	Sunday  time.Time
	Days    []hours.WeekDay
	Skipped []time.Time
}

type HoursCommands interface {
	RecomputeWindow(ctx context.Context) (*RecomputeResult, error)
	ComputeWeek(sunday time.Time) WeekPlan
}

type hoursCommandsImpl struct {
	uow     shared.UnitOfWork
	oracle  calendar.Oracle
	decider *hours.Decider
	metrics Metrics
	clock   clock.Clock
	loc     *time.Location
}

func NewHoursCommands(
	uow shared.UnitOfWork,
	oracle calendar.Oracle,
	decider *hours.Decider,
	metrics Metrics,
	clk clock.Clock,
	loc *time.Location,
) HoursCommands {
	return &hoursCommandsImpl{
		uow:     uow,
		oracle:  oracle,
		decider: decider,
		metrics: metrics,
		clock:   clk,
		loc:     loc,
	}
}

func (h *hoursCommandsImpl) ComputeWeek(sunday time.Time) WeekPlan {
	sunday = clock.Midnight(sunday, h.loc)
	plan := WeekPlan{Sunday: sunday}

	week := make([]calendar.Events, 0, 7)
	for i := 0; i < 7; i++ {
		day := sunday.AddDate(0, 0, i)
		events, err := h.oracle.EventsFor(day)
		if err != nil {
			slog.Warn("skipping day without solar events",
				"date", day.Format(time.DateOnly),
				"error", err.Error())
			plan.Skipped = append(plan.Skipped, day)
			continue
		}
		week = append(week, events)
	}

	plan.Days = h.decider.ComputeWeek(week)
	return plan
}

// RecomputeWindow recomputes the Sunday before today plus the two following
// weeks and writes only the days whose stored hours differ.
func (h *hoursCommandsImpl) RecomputeWindow(ctx context.Context) (*RecomputeResult, error) {
	start := clock.PreviousWeekday(clock.Today(h.clock, h.loc), time.Sunday)
	result := &RecomputeResult{}

	for w := 0; w < weeksInWindow; w++ {
		plan := h.ComputeWeek(start.AddDate(0, 0, 7*w))
		result.Failed += len(plan.Skipped)

		for _, d := range plan.Days {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if d.Err != nil {
				slog.Warn("no daily hours computed",
					"date", d.Date.Format(time.DateOnly),
					"rule", d.Rule,
					"error", d.Err.Error())
				result.Failed++
				continue
			}

			written, err := h.store(ctx, d.Hours)
			if err != nil {
				slog.Warn("failed to store daily hours",
					"date", d.Date.Format(time.DateOnly),
					"error", err.Error())
				result.Failed++
				continue
			}
			if written {
				slog.Info("daily hours updated", "hours", d.Hours.String(), "rule", d.Rule)
				result.Written++
			} else {
				result.Unchanged++
			}
		}
	}

	h.metrics.DailyHoursWritten(result.Written)
	return result, nil
}

func (h *hoursCommandsImpl) store(ctx context.Context, computed *hours.DailyHours) (bool, error) {
	written := false
	err := h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		written = false
		stored, err := tx.Hours().FindByDay(ctx, computed.Day())
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return err
		}
		if stored != nil && stored.SameSchedule(computed) {
			return nil
		}
		if err := tx.Hours().Upsert(ctx, computed); err != nil {
			return err
		}
		written = true
		return nil
	})
	return written, err
}
