package clock

import "time"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewRealClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	currentTime time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (c *MockClock) Now() time.Time {
	return c.currentTime
}

func (c *MockClock) Set(t time.Time) {
	c.currentTime = t
}

func (c *MockClock) Add(d time.Duration) {
	c.currentTime = c.currentTime.Add(d)
}

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Today returns midnight of the current day in loc.
func Today(c Clock, loc *time.Location) time.Time {
	return Midnight(c.Now(), loc)
}

// PreviousWeekday returns the last day strictly before day that falls on wd.
func PreviousWeekday(day time.Time, wd time.Weekday) time.Time {
	diff := int(day.Weekday()-wd+7) % 7
	if diff == 0 {
		diff = 7
	}
	return day.AddDate(0, 0, -diff)
}

// StartOfWeek returns day itself when it falls on wd, otherwise the previous wd.
func StartOfWeek(day time.Time, wd time.Weekday) time.Time {
	diff := int(day.Weekday()-wd+7) % 7
	return day.AddDate(0, 0, -diff)
}
