package components

import (
	"context"
	"log/slog"
	"time"

	"mikvah-scheduler/internal/infra/cache"
	"mikvah-scheduler/internal/infra/metrics"
	"mikvah-scheduler/internal/infra/notify"
	"mikvah-scheduler/internal/infra/payment"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/internal/usecase/queries"
	"mikvah-scheduler/internal/usecase/shared"
	"mikvah-scheduler/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		// Metrics
		fx.Annotate(
			NewRegistry,
			fx.As(new(prometheus.Registerer)),
			fx.As(new(prometheus.Gatherer)),
		),
		fx.Annotate(
			metrics.NewCollector,
			fx.As(new(commands.Metrics)),
			fx.As(new(worker.Metrics)),
		),
		// Payment gateway
		fx.Annotate(
			NewPaymentClient,
			fx.As(new(commands.PaymentGateway)),
		),
		NewNotifier,
		NewScheduleReads,
	),
)

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewPaymentClient(cfg config.Config) *payment.Client {
	if cfg.Payment.APISecret == "" {
		slog.Warn("PAYMENT_API_SECRET is empty, non-member bookings will fail to charge")
	}
	return payment.NewClient(cfg.Payment)
}

func NewNotifier(cfg config.Config, jobs notify.JobWriter, clk clock.Clock, loc *time.Location) commands.Notifier {
	if !cfg.Notify.Enabled {
		return commands.NopNotifier{}
	}
	return notify.NewOutboxNotifier(jobs, clk, loc)
}

type ScheduleReads struct {
	fx.Out

	Queries     queries.ScheduleQueries
	Invalidator commands.AvailabilityInvalidator
}

// NewScheduleReads puts the Redis cache in front of the schedule reads when
// it is enabled; booking writes then invalidate it.
func NewScheduleReads(
	lc fx.Lifecycle,
	cfg config.Config,
	store queries.ScheduleReadStore,
	uow shared.UnitOfWork,
	clk clock.Clock,
	loc *time.Location,
) ScheduleReads {
	base := queries.NewScheduleQueries(store, uow, clk, loc)
	if !cfg.Redis.Enabled {
		return ScheduleReads{Queries: base, Invalidator: commands.NopInvalidator{}}
	}

	client := cache.NewClient(cfg.Redis)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				slog.Warn("redis unreachable, schedule reads bypass the cache until it recovers", "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	slog.Info("schedule cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	return ScheduleReads{
		Queries:     cache.NewScheduleQueries(base, client, cfg.Redis.CacheTTL),
		Invalidator: cache.NewInvalidator(client),
	}
}
