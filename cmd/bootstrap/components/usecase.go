package components

import (
	"time"

	"mikvah-scheduler/internal/domain/calendar"
	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		NewOracle,
		fx.As(new(calendar.Oracle)),
	),
	func() *hours.Decider {
		return hours.NewDecider(hours.DefaultRules())
	},
	NewRoomLayouts,
	NewFee,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		commands.NewHoursCommands,
		NewSlotCommands,
	),
)

func NewOracle(cfg config.Config, loc *time.Location) *calendar.AstronomicalOracle {
	return calendar.NewAstronomicalOracle(calendar.Location{
		Name:      cfg.Facility.Name,
		Latitude:  cfg.Facility.Latitude,
		Longitude: cfg.Facility.Longitude,
		Elevation: cfg.Facility.Elevation,
		TimeZone:  loc,
	}, cfg.Facility.CandleLightingOffset, cfg.Facility.NightfallDepression)
}

func NewRoomLayouts(cfg config.Config) ([]slot.RoomLayout, error) {
	shower, err := slot.NewRoomLayout(slot.RoomShower, cfg.Schedule.ShowerDuration, cfg.Schedule.ShowerOffsets)
	if err != nil {
		return nil, err
	}
	bath, err := slot.NewRoomLayout(slot.RoomBath, cfg.Schedule.BathDuration, cfg.Schedule.BathOffsets)
	if err != nil {
		return nil, err
	}
	return []slot.RoomLayout{shower, bath}, nil
}

func NewFee(cfg config.Config) commands.Fee {
	return commands.Fee{
		AmountCents:         cfg.Booking.AppointmentCostCents,
		Currency:            cfg.Booking.Currency,
		StatementDescriptor: cfg.Booking.StatementDescriptor,
	}
}

func NewSlotCommands(
	cfg config.Config,
	uow shared.UnitOfWork,
	oracle calendar.Oracle,
	layouts []slot.RoomLayout,
	metrics commands.Metrics,
	clk clock.Clock,
	loc *time.Location,
) commands.SlotCommands {
	return commands.NewSlotCommands(uow, oracle, layouts, cfg.Schedule.SlotHorizonDays, metrics, clk, loc)
}
