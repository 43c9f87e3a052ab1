package hours

import "time"

var (
	latestClosing   = NewTimeOfDay(23, 0)
	earliestClosing = NewTimeOfDay(21, 30)
	// EndOfDay stands in for a closing time that would roll past midnight.
	EndOfDay = NewTimeOfDay(23, 59)
)

const (
	regularOpenDuration = 3 * time.Hour
	minimumOpenDuration = 2 * time.Hour
	erevOpenDuration    = 30 * time.Minute
)

// ClosingFor derives the closing time for a night that opens at opening.
func ClosingFor(opening TimeOfDay) TimeOfDay {
	closing := opening.Add(regularOpenDuration)

	if closing.After(latestClosing) {
		if opening.Until(latestClosing) < minimumOpenDuration {
			closing = opening.Add(minimumOpenDuration)
		} else {
			closing = latestClosing
		}
	}

	// wrapped past midnight
	if closing.Hour() < 12 {
		return EndOfDay
	}
	if closing.Before(earliestClosing) {
		return earliestClosing
	}
	return closing
}
