package components

import (
	"mikvah-scheduler/internal/handler"
	"mikvah-scheduler/internal/handler/api"
	"mikvah-scheduler/internal/handler/middleware"
	"mikvah-scheduler/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAppointmentHandler,
		api.NewAdminHandler,
		func(s *jwt.Service) middleware.TokenValidator { return s },
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
