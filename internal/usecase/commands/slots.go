package commands

import (
	"context"
	"log/slog"
	"time"

	"mikvah-scheduler/internal/domain/calendar"
	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/usecase/shared"
)

//go:generate mockgen -source=slots.go -destination=../../../tests/mock/commands/slots_mock.go -package=commandsmock

type GenerateResult struct {
	Created int
	Skipped int
	Failed  int
}

type SlotCommands interface {
	GenerateHorizon(ctx context.Context) (*GenerateResult, error)
}

type slotCommandsImpl struct {
	uow     shared.UnitOfWork
	oracle  calendar.Oracle
	layouts []slot.RoomLayout
	horizon int
	metrics Metrics
	clock   clock.Clock
	loc     *time.Location
}

func NewSlotCommands(
	uow shared.UnitOfWork,
	oracle calendar.Oracle,
	layouts []slot.RoomLayout,
	horizonDays int,
	metrics Metrics,
	clk clock.Clock,
	loc *time.Location,
) SlotCommands {
	return &slotCommandsImpl{
		uow:     uow,
		oracle:  oracle,
		layouts: layouts,
		horizon: horizonDays,
		metrics: metrics,
		clock:   clk,
		loc:     loc,
	}
}

// GenerateHorizon creates slots for days 1..horizon after today. A (day, room
// type) pair that already has slots is left alone.
func (s *slotCommandsImpl) GenerateHorizon(ctx context.Context) (*GenerateResult, error) {
	today := clock.Today(s.clock, s.loc)
	result := &GenerateResult{}

	for i := 1; i <= s.horizon; i++ {
		day := today.AddDate(0, 0, i)

		events, err := s.oracle.EventsFor(day)
		if err != nil {
			slog.Warn("skipping slot generation without solar events",
				"date", day.Format(time.DateOnly),
				"error", err.Error())
			result.Failed += len(s.layouts)
			continue
		}

		for _, layout := range s.layouts {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			created, err := s.generateDay(ctx, day, events, layout)
			if err != nil {
				slog.Warn("failed to generate appointment slots",
					"date", day.Format(time.DateOnly),
					"room_type", layout.RoomType,
					"error", err.Error())
				result.Failed++
				continue
			}
			if created == 0 {
				result.Skipped++
				continue
			}
			slog.Info("appointment slots created",
				"date", day.Format(time.DateOnly),
				"room_type", layout.RoomType,
				"count", created)
			s.metrics.SlotsGenerated(layout.RoomType, created)
			result.Created += created
		}
	}
	return result, nil
}

func (s *slotCommandsImpl) generateDay(ctx context.Context, day time.Time, events calendar.Events, layout slot.RoomLayout) (int, error) {
	created := 0
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created = 0
		next := day.AddDate(0, 0, 1)

		existing, err := tx.Slots().CountInRange(ctx, day, next, layout.RoomType)
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		h, err := tx.Hours().FindByDay(ctx, day)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		if h.IsClosed() || events.IsRestEve() {
			return nil
		}
		opening, _ := h.OpeningAt()
		closing, _ := h.ClosingAt()

		planned := make([]*slot.Slot, 0)
		for _, start := range slot.Plan(opening, closing, layout) {
			sl, err := slot.New(start, layout.RoomType)
			if err != nil {
				return err
			}
			planned = append(planned, sl)
		}

		n, err := tx.Slots().InsertBatch(ctx, planned)
		if err != nil {
			return err
		}
		created = n
		return nil
	})
	return created, err
}
