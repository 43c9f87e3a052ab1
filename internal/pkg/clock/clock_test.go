//go:build unit

package clock_test

import (
	"testing"
	"time"

	"mikvah-scheduler/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	c := clock.NewMockClock(start)
	assert.Equal(t, start, c.Now())

	c.Add(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestToday(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 03:00 UTC on the 11th is still the evening of the 10th in Los Angeles
	c := clock.NewMockClock(time.Date(2024, time.March, 11, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, la), clock.Today(c, la))
}

func TestWeekHelpers(t *testing.T) {
	sunday := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	wednesday := sunday.AddDate(0, 0, 3)

	tests := []struct {
		name     string
		day      time.Time
		previous time.Time
		start    time.Time
	}{
		{name: "midweek", day: wednesday, previous: sunday, start: sunday},
		{name: "on sunday", day: sunday, previous: sunday.AddDate(0, 0, -7), start: sunday},
		{name: "saturday", day: sunday.AddDate(0, 0, 6), previous: sunday, start: sunday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.previous, clock.PreviousWeekday(tt.day, time.Sunday))
			assert.Equal(t, tt.start, clock.StartOfWeek(tt.day, time.Sunday))
		})
	}
}
