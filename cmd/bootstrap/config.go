package bootstrap

import (
	"time"

	"mikvah-scheduler/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		NewLocation,
	),
)

// NewLocation is the facility time zone every civil date is interpreted in.
func NewLocation(cfg config.Config) (*time.Location, error) {
	return cfg.Facility.Location()
}
