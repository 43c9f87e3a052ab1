package calendar

import (
	"errors"
	"time"
)

var ErrNoSolarEvent = errors.New("solar event does not occur on this date")

// Events is everything the hours engine needs to know about one civil date.
// CandleLighting and Nightfall are instants in the facility zone.
type Events struct {
	Date           time.Time
	CandleLighting time.Time
	Nightfall      time.Time
	Holiday        Holiday
	NextDayHoliday Holiday
}

func (e Events) IsSabbathEve() bool { return e.Date.Weekday() == time.Friday }

func (e Events) IsSabbath() bool { return e.Date.Weekday() == time.Saturday }

func (e Events) IsHolidayEve() bool { return e.NextDayHoliday.opensAtCandleLightingEve() }

// IsFastEve reports whether tomorrow is Yom Kippur or Tisha B'Av.
func (e Events) IsFastEve() bool { return e.NextDayHoliday.isFast() }

func (e Events) IsRestEve() bool { return e.IsSabbathEve() || e.IsHolidayEve() }

// IsRestDayEnd reports whether tonight follows Shabbos or a Yom Tov.
func (e Events) IsRestDayEnd() bool { return e.IsSabbath() || e.Holiday.IsYomTov() }

type Oracle interface {
	EventsFor(date time.Time) (Events, error)
}
