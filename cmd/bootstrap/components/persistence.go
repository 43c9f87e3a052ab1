package components

import (
	"time"

	"mikvah-scheduler/internal/handler/middleware"
	"mikvah-scheduler/internal/infra/db"
	"mikvah-scheduler/internal/infra/notify"
	"mikvah-scheduler/internal/infra/readstore"
	"mikvah-scheduler/internal/infra/repository"
	"mikvah-scheduler/internal/infra/uow"
	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/usecase/queries"
	"mikvah-scheduler/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewScheduleReadStore,
			fx.As(new(queries.ScheduleReadStore)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork
		fx.Annotate(
			NewUnitOfWork,
			fx.As(new(shared.UnitOfWork)),
		),
		// Users are resolved outside any transaction on every authenticated request
		fx.Annotate(
			repository.NewUserRepository,
			fx.As(new(middleware.UserResolver)),
		),
		// Notification outbox
		fx.Annotate(
			repository.NewNotificationRepository,
			fx.As(new(notify.JobWriter)),
		),
	),
)

func NewUnitOfWork(pool *pgxpool.Pool, cfg config.Config, loc *time.Location) *uow.PostgresUoW {
	return uow.NewPostgresUoW(pool, uow.OptionsFrom(cfg.DB, loc))
}

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
