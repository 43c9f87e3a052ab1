package bootstrap

import (
	"context"
	"log/slog"

	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/internal/worker"

	"go.uber.org/fx"
)

const (
	taskDailyHours       = "daily-hours"
	taskAppointmentSlots = "appointment-slots"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		NewScheduler,
	),
	fx.Invoke(func(*worker.Scheduler) {}),
)

func NewScheduler(
	lc fx.Lifecycle,
	cfg config.Config,
	hoursCmds commands.HoursCommands,
	slotCmds commands.SlotCommands,
	metrics worker.Metrics,
) *worker.Scheduler {
	scheduler := worker.NewScheduler(metrics,
		worker.Task{
			Name:     taskDailyHours,
			Interval: cfg.Schedule.HoursInterval,
			Run: func(ctx context.Context) error {
				res, err := hoursCmds.RecomputeWindow(ctx)
				if err != nil {
					return err
				}
				slog.Info("daily hours recomputed",
					"written", res.Written,
					"unchanged", res.Unchanged,
					"failed", res.Failed)
				return nil
			},
		},
		worker.Task{
			Name:         taskAppointmentSlots,
			Interval:     cfg.Schedule.SlotsInterval,
			InitialDelay: cfg.Schedule.SlotsInitialDelay,
			Run: func(ctx context.Context) error {
				res, err := slotCmds.GenerateHorizon(ctx)
				if err != nil {
					return err
				}
				slog.Info("appointment slots generated",
					"created", res.Created,
					"skipped", res.Skipped,
					"failed", res.Failed)
				return nil
			},
		},
	)

	if !cfg.Schedule.Enabled {
		slog.Info("background scheduler disabled")
		return scheduler
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// the start context expires once startup completes
			scheduler.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
	return scheduler
}
