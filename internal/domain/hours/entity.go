package hours

import (
	"errors"
	"time"
)

var (
	ErrMissingTimes     = errors.New("open day requires opening and closing")
	ErrClosedWithTimes  = errors.New("closed day must not carry opening or closing")
	ErrOpeningNotBefore = errors.New("opening must be before closing")
)

// DailyHours is the computed schedule of a single civil date.
type DailyHours struct {
	day     time.Time
	opening *TimeOfDay
	closing *TimeOfDay
	closed  bool
}

func Open(day time.Time, opening, closing TimeOfDay) (*DailyHours, error) {
	if !opening.Before(closing) {
		return nil, ErrOpeningNotBefore
	}
	return &DailyHours{day: dateOf(day), opening: &opening, closing: &closing}, nil
}

func Closed(day time.Time) *DailyHours {
	return &DailyHours{day: dateOf(day), closed: true}
}

// Reconstruct rebuilds a stored row, enforcing the same invariants as the
// constructors.
func Reconstruct(day time.Time, opening, closing *TimeOfDay, closed bool) (*DailyHours, error) {
	if closed {
		if opening != nil || closing != nil {
			return nil, ErrClosedWithTimes
		}
		return Closed(day), nil
	}
	if opening == nil || closing == nil {
		return nil, ErrMissingTimes
	}
	return Open(day, *opening, *closing)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (h *DailyHours) Day() time.Time { return h.day }
func (h *DailyHours) IsClosed() bool { return h.closed }

func (h *DailyHours) Opening() (TimeOfDay, bool) {
	if h.opening == nil {
		return TimeOfDay{}, false
	}
	return *h.opening, true
}

func (h *DailyHours) Closing() (TimeOfDay, bool) {
	if h.closing == nil {
		return TimeOfDay{}, false
	}
	return *h.closing, true
}

// OpeningAt is the opening instant on the row's date.
func (h *DailyHours) OpeningAt() (time.Time, bool) {
	o, ok := h.Opening()
	if !ok {
		return time.Time{}, false
	}
	return o.On(h.day), true
}

func (h *DailyHours) ClosingAt() (time.Time, bool) {
	c, ok := h.Closing()
	if !ok {
		return time.Time{}, false
	}
	return c.On(h.day), true
}

// SameSchedule compares everything except the date.
func (h *DailyHours) SameSchedule(o *DailyHours) bool {
	if o == nil {
		return false
	}
	return h.closed == o.closed && sameTime(h.opening, o.opening) && sameTime(h.closing, o.closing)
}

func sameTime(a, b *TimeOfDay) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (h *DailyHours) String() string {
	if h.closed {
		return h.day.Format(time.DateOnly) + " closed"
	}
	return h.day.Format(time.DateOnly) + " " + h.opening.String() + "-" + h.closing.String()
}
