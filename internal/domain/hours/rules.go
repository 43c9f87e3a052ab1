package hours

import (
	"fmt"
	"time"

	"mikvah-scheduler/internal/domain/calendar"
)

// DayContext is the input of the override chain for one date.
type DayContext struct {
	Events calendar.Events
	// WeekLatestNightfall is shared by every day of the Sunday-anchored week.
	WeekLatestNightfall TimeOfDay
}

func (c DayContext) candleLighting() TimeOfDay { return TimeOfDayOf(c.Events.CandleLighting) }
func (c DayContext) nightfall() TimeOfDay      { return TimeOfDayOf(c.Events.Nightfall) }

// schedule is what a rule decides: closed, or an opening with its closing.
type schedule struct {
	closed  bool
	opening TimeOfDay
	closing TimeOfDay
}

type Rule struct {
	Name    string
	Applies func(DayContext) bool
	Hours   func(DayContext) schedule
}

func openAt(opening TimeOfDay) schedule {
	return schedule{opening: opening, closing: ClosingFor(opening)}
}

func roundedAfter(base TimeOfDay, d time.Duration) TimeOfDay {
	return TimeOfDayOf(RoundUpToFive(base.Add(d).On(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))))
}

// DefaultRules is the override chain in priority order. The last rule always applies.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "fast_eve",
			Applies: func(c DayContext) bool { return c.Events.IsFastEve() },
			Hours:   func(DayContext) schedule { return schedule{closed: true} },
		},
		{
			Name:    "rest_eve",
			Applies: func(c DayContext) bool { return c.Events.IsRestEve() },
			Hours: func(c DayContext) schedule {
				opening := roundedAfter(c.candleLighting(), time.Hour)
				return schedule{opening: opening, closing: opening.Add(erevOpenDuration)}
			},
		},
		{
			Name:    "after_yom_kippur",
			Applies: func(c DayContext) bool { return c.Events.Holiday == calendar.YomKippur },
			Hours:   func(c DayContext) schedule { return openAt(roundedAfter(c.nightfall(), time.Hour)) },
		},
		{
			Name:    "purim_eve",
			Applies: func(c DayContext) bool { return c.Events.NextDayHoliday == calendar.Purim },
			Hours:   func(c DayContext) schedule { return openAt(roundedAfter(c.WeekLatestNightfall, time.Hour)) },
		},
		{
			Name:    "after_tisha_bav",
			Applies: func(c DayContext) bool { return c.Events.Holiday == calendar.TishaBAv },
			Hours:   func(c DayContext) schedule { return openAt(roundedAfter(c.WeekLatestNightfall, time.Hour)) },
		},
		{
			Name:    "after_rest_day",
			Applies: func(c DayContext) bool { return c.Events.IsRestDayEnd() },
			Hours:   func(c DayContext) schedule { return openAt(roundedAfter(c.nightfall(), 45*time.Minute)) },
		},
		{
			Name:    "weekday",
			Applies: func(DayContext) bool { return true },
			Hours:   func(c DayContext) schedule { return openAt(c.WeekLatestNightfall) },
		},
	}
}

type Decider struct {
	rules []Rule
}

func NewDecider(rules []Rule) *Decider {
	return &Decider{rules: rules}
}

// Decide returns the hours produced by the first matching rule and that rule's name.
func (d *Decider) Decide(c DayContext) (*DailyHours, string, error) {
	for _, r := range d.rules {
		if !r.Applies(c) {
			continue
		}
		s := r.Hours(c)
		if s.closed {
			return Closed(c.Events.Date), r.Name, nil
		}
		h, err := Open(c.Events.Date, s.opening, s.closing)
		if err != nil {
			return nil, r.Name, fmt.Errorf("rule %s on %s: %w", r.Name, c.Events.Date.Format(time.DateOnly), err)
		}
		return h, r.Name, nil
	}
	return nil, "", fmt.Errorf("no rule matched %s", c.Events.Date.Format(time.DateOnly))
}

// LatestNightfall takes the latest nightfall of the given days at second
// precision and rounds it up to the next five-minute mark.
func LatestNightfall(week []calendar.Events) (TimeOfDay, bool) {
	var latest time.Duration
	found := false
	for _, e := range week {
		n := e.Nightfall
		since := time.Duration(n.Hour())*time.Hour + time.Duration(n.Minute())*time.Minute + time.Duration(n.Second())*time.Second
		if !found || since > latest {
			latest = since
			found = true
		}
	}
	if !found {
		return TimeOfDay{}, false
	}
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC).Add(latest)
	return TimeOfDayOf(RoundUpToFive(base)), true
}

// ComputeWeek evaluates the chain for each day of a week that shares one
// latest-nightfall value. Results are in the order of week.
func (d *Decider) ComputeWeek(week []calendar.Events) []WeekDay {
	latest, ok := LatestNightfall(week)
	if !ok {
		return nil
	}
	days := make([]WeekDay, 0, len(week))
	for _, e := range week {
		h, rule, err := d.Decide(DayContext{Events: e, WeekLatestNightfall: latest})
		days = append(days, WeekDay{Date: e.Date, Hours: h, Rule: rule, Err: err})
	}
	return days
}

type WeekDay struct {
	Date  time.Time
	Hours *DailyHours
	Rule  string
	Err   error
}
