package hours

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time at minute precision. Arithmetic wraps
// around midnight the way a clock face does.
type TimeOfDay struct {
	minutes int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{minutes: normalize(hour*60 + minute)}
}

// TimeOfDayOf drops the date and anything below the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// TimeOfDayFromDuration converts an offset from midnight, as stored in the
// database, to a TimeOfDay.
func TimeOfDayFromDuration(d time.Duration) TimeOfDay {
	return TimeOfDay{minutes: normalize(int(d / time.Minute))}
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDayOf(t), nil
}

func normalize(m int) int {
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return m
}

func (t TimeOfDay) Hour() int   { return t.minutes / 60 }
func (t TimeOfDay) Minute() int { return t.minutes % 60 }

func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return TimeOfDay{minutes: normalize(t.minutes + int(d/time.Minute))}
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.minutes < o.minutes }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t.minutes > o.minutes }

// Until is the non-wrapping distance from t to o; negative when o is earlier.
func (t TimeOfDay) Until(o TimeOfDay) time.Duration {
	return time.Duration(o.minutes-t.minutes) * time.Minute
}

// SinceMidnight is the offset used for storage.
func (t TimeOfDay) SinceMidnight() time.Duration {
	return time.Duration(t.minutes) * time.Minute
}

// On places t on the civil date of day in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Format renders t with a time layout such as "3:04 PM".
func (t TimeOfDay) Format(layout string) string {
	return t.On(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)).Format(layout)
}

// RoundUpToFive moves t forward to the next minute that is a multiple of
// five. Times already on a five-minute mark are returned unchanged.
func RoundUpToFive(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	if rem := t.Minute() % 5; rem != 0 {
		t = t.Add(time.Duration(5-rem) * time.Minute)
	}
	return t
}
