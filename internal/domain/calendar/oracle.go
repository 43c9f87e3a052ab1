package calendar

import (
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
	TimeZone  *time.Location
}

type AstronomicalOracle struct {
	loc                  Location
	candleLightingOffset time.Duration
	nightfallDepression  float64
}

func NewAstronomicalOracle(loc Location, candleLightingOffset time.Duration, nightfallDepression float64) *AstronomicalOracle {
	if loc.TimeZone == nil {
		loc.TimeZone = time.UTC
	}
	return &AstronomicalOracle{
		loc:                  loc,
		candleLightingOffset: candleLightingOffset,
		nightfallDepression:  nightfallDepression,
	}
}

func (o *AstronomicalOracle) Location() Location { return o.loc }

func (o *AstronomicalOracle) EventsFor(date time.Time) (Events, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, o.loc.TimeZone)

	_, sunset := sunrise.SunriseSunset(o.loc.Latitude, o.loc.Longitude, day.Year(), day.Month(), day.Day())
	if sunset.IsZero() {
		return Events{}, fmt.Errorf("sunset on %s: %w", day.Format(time.DateOnly), ErrNoSolarEvent)
	}

	_, nightfall := sunrise.TimeOfElevation(o.loc.Latitude, o.loc.Longitude, -o.nightfallDepression, day.Year(), day.Month(), day.Day())
	if nightfall.IsZero() {
		return Events{}, fmt.Errorf("nightfall on %s: %w", day.Format(time.DateOnly), ErrNoSolarEvent)
	}

	return Events{
		Date:           day,
		CandleLighting: sunset.Add(-o.candleLightingOffset).In(o.loc.TimeZone),
		Nightfall:      nightfall.In(o.loc.TimeZone),
		Holiday:        HolidayOn(day),
		NextDayHoliday: HolidayOn(day.AddDate(0, 0, 1)),
	}, nil
}
