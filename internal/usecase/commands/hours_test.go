//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"mikvah-scheduler/internal/domain/calendar"
	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/tests/common/memstore"
	commandsmock "mikvah-scheduler/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubOracle gives every day candle lighting at 19:50 and nightfall at 20:21:10
// unless failing lists the date.
type stubOracle struct {
	failing map[string]bool
}

func (o stubOracle) EventsFor(date time.Time) (calendar.Events, error) {
	if o.failing[date.Format(time.DateOnly)] {
		return calendar.Events{}, calendar.ErrNoSolarEvent
	}
	y, m, d := date.Date()
	return calendar.Events{
		Date:           date,
		CandleLighting: time.Date(y, m, d, 19, 50, 0, 0, la),
		Nightfall:      time.Date(y, m, d, 20, 21, 10, 0, la),
	}, nil
}

func newHoursCommands(t *testing.T, store *memstore.Store, oracle calendar.Oracle) commands.HoursCommands {
	t.Helper()
	ctrl := gomock.NewController(t)
	metrics := commandsmock.NewMockMetrics(ctrl)
	metrics.EXPECT().DailyHoursWritten(gomock.Any()).AnyTimes()
	return commands.NewHoursCommands(store, oracle, hours.NewDecider(hours.DefaultRules()), metrics,
		clock.NewMockClock(at(9, 15, 0)), la)
}

func schedule(t *testing.T, h *hours.DailyHours) string {
	t.Helper()
	require.NotNil(t, h)
	return h.String()
}

func TestHoursCommands_ComputeWeek(t *testing.T) {
	sut := newHoursCommands(t, memstore.New(), stubOracle{})

	plan := sut.ComputeWeek(at(7, 0, 0))

	require.Len(t, plan.Days, 7)
	assert.Empty(t, plan.Skipped)
	expected := []struct {
		hours string
		rule  string
	}{
		{"2024-07-07 20:25-23:00", "weekday"},
		{"2024-07-08 20:25-23:00", "weekday"},
		{"2024-07-09 20:25-23:00", "weekday"},
		{"2024-07-10 20:25-23:00", "weekday"},
		{"2024-07-11 20:25-23:00", "weekday"},
		{"2024-07-12 20:50-21:20", "rest_eve"},
		{"2024-07-13 21:10-23:59", "after_rest_day"},
	}
	for i, d := range plan.Days {
		require.NoError(t, d.Err)
		assert.Equal(t, expected[i].hours, schedule(t, d.Hours))
		assert.Equal(t, expected[i].rule, d.Rule)
	}
}

func TestHoursCommands_RecomputeWindow(t *testing.T) {
	t.Run("初回は3週間分を書き込み、2回目は書き込まない", func(t *testing.T) {
		store := memstore.New()
		sut := newHoursCommands(t, store, stubOracle{})

		first, err := sut.RecomputeWindow(context.Background())
		require.NoError(t, err)
		assert.Equal(t, commands.RecomputeResult{Written: 21}, *first)
		assert.NotNil(t, store.Hours(at(7, 0, 0)), "window starts at the previous Sunday")
		assert.NotNil(t, store.Hours(at(27, 0, 0)))
		assert.Nil(t, store.Hours(at(28, 0, 0)))

		second, err := sut.RecomputeWindow(context.Background())
		require.NoError(t, err)
		assert.Equal(t, commands.RecomputeResult{Unchanged: 21}, *second)
		assert.Equal(t, 21, store.HoursWrites)
	})

	t.Run("保存値と異なる日だけ上書き", func(t *testing.T) {
		store := memstore.New()
		sut := newHoursCommands(t, store, stubOracle{})
		_, err := sut.RecomputeWindow(context.Background())
		require.NoError(t, err)

		stale, err := hours.Open(at(9, 0, 0), hours.NewTimeOfDay(20, 0), hours.NewTimeOfDay(23, 0))
		require.NoError(t, err)
		store.PutHours(stale)

		res, err := sut.RecomputeWindow(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Written)
		assert.Equal(t, "2024-07-09 20:25-23:00", store.Hours(at(9, 0, 0)).String())
	})

	t.Run("計算できない日は飛ばして週の残りは続行", func(t *testing.T) {
		store := memstore.New()
		sut := newHoursCommands(t, store, stubOracle{failing: map[string]bool{"2024-07-10": true}})

		res, err := sut.RecomputeWindow(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 20, res.Written)
		assert.Equal(t, 1, res.Failed)
		assert.Nil(t, store.Hours(at(10, 0, 0)))
		assert.Equal(t, "2024-07-11 20:25-23:00", store.Hours(at(11, 0, 0)).String())
	})
}

func TestHoursCommands_RecomputeWindow_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := commandsmock.NewMockMetrics(ctrl)
	metrics.EXPECT().DailyHoursWritten(21)

	sut := commands.NewHoursCommands(memstore.New(), stubOracle{}, hours.NewDecider(hours.DefaultRules()), metrics,
		clock.NewMockClock(at(9, 15, 0)), la)

	_, err := sut.RecomputeWindow(context.Background())
	require.NoError(t, err)
}
