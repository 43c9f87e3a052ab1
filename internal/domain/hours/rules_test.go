//go:build unit

package hours_test

import (
	"testing"
	"time"

	"mikvah-scheduler/internal/domain/calendar"
	"mikvah-scheduler/internal/domain/hours"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var la = mustLoad("America/Los_Angeles")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// eventsOn builds oracle output with candle lighting at 19:32:40 and
// nightfall at 20:21:10 unless overridden.
func eventsOn(y int, m time.Month, d int, mutate ...func(*calendar.Events)) calendar.Events {
	day := time.Date(y, m, d, 0, 0, 0, 0, la)
	e := calendar.Events{
		Date:           day,
		CandleLighting: time.Date(y, m, d, 19, 32, 40, 0, la),
		Nightfall:      time.Date(y, m, d, 20, 21, 10, 0, la),
	}
	for _, fn := range mutate {
		fn(&e)
	}
	return e
}

func TestDecider_Decide(t *testing.T) {
	weekLatest := hours.NewTimeOfDay(20, 25)
	decider := hours.NewDecider(hours.DefaultRules())

	tests := []struct {
		name    string
		events  calendar.Events
		rule    string
		closed  bool
		opening string
		closing string
	}{
		{
			name:    "平日は週の最遅日没後",
			events:  eventsOn(2024, time.July, 9),
			rule:    "weekday",
			opening: "20:25",
			closing: "23:00",
		},
		{
			name:    "金曜日はキャンドルライティング1時間後から30分",
			events:  eventsOn(2024, time.July, 12),
			rule:    "rest_eve",
			opening: "20:35",
			closing: "21:05",
		},
		{
			name: "祝日前夜",
			events: eventsOn(2024, time.June, 11, func(e *calendar.Events) {
				e.NextDayHoliday = calendar.Shavuos
			}),
			rule:    "rest_eve",
			opening: "20:35",
			closing: "21:05",
		},
		{
			name:   "ヨム・キプール前夜は休館",
			events: eventsOn(2025, time.October, 1, func(e *calendar.Events) { e.NextDayHoliday = calendar.YomKippur }),
			rule:   "fast_eve",
			closed: true,
		},
		{
			name:   "ティシャ・ベアブ前夜は休館",
			events: eventsOn(2024, time.August, 12, func(e *calendar.Events) { e.NextDayHoliday = calendar.TishaBAv }),
			rule:   "fast_eve",
			closed: true,
		},
		{
			name: "ヨム・キプール明けは日没1時間後",
			events: eventsOn(2024, time.October, 12, func(e *calendar.Events) {
				e.Holiday = calendar.YomKippur
			}),
			rule:    "after_yom_kippur",
			opening: "21:25",
			closing: "23:59",
		},
		{
			name:    "プーリム前夜は週の最遅日没1時間後",
			events:  eventsOn(2025, time.March, 13, func(e *calendar.Events) { e.NextDayHoliday = calendar.Purim }),
			rule:    "purim_eve",
			opening: "21:25",
			closing: "23:59",
		},
		{
			name:    "ティシャ・ベアブ明け",
			events:  eventsOn(2024, time.August, 13, func(e *calendar.Events) { e.Holiday = calendar.TishaBAv }),
			rule:    "after_tisha_bav",
			opening: "21:25",
			closing: "23:59",
		},
		{
			name:    "土曜日は日没45分後",
			events:  eventsOn(2024, time.July, 13),
			rule:    "after_rest_day",
			opening: "21:10",
			closing: "23:59",
		},
		{
			name: "祝日明け",
			events: eventsOn(2024, time.June, 13, func(e *calendar.Events) {
				e.Holiday = calendar.Shavuos
			}),
			rule:    "after_rest_day",
			opening: "21:10",
			closing: "23:59",
		},
		{
			name: "金曜日の断食前夜は休館が優先",
			events: eventsOn(2024, time.October, 11, func(e *calendar.Events) {
				e.NextDayHoliday = calendar.YomKippur
			}),
			rule:   "fast_eve",
			closed: true,
		},
		{
			name: "祝日二日目の夜は前夜扱いが優先",
			events: eventsOn(2024, time.June, 12, func(e *calendar.Events) {
				e.Holiday = calendar.Shavuos
				e.NextDayHoliday = calendar.Shavuos
			}),
			rule:    "rest_eve",
			opening: "20:35",
			closing: "21:05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, rule, err := decider.Decide(hours.DayContext{Events: tt.events, WeekLatestNightfall: weekLatest})
			require.NoError(t, err)
			assert.Equal(t, tt.rule, rule)
			assert.Equal(t, tt.events.Date, h.Day())
			assert.Equal(t, tt.closed, h.IsClosed())

			if tt.closed {
				_, ok := h.Opening()
				assert.False(t, ok)
				return
			}
			opening, _ := h.Opening()
			closing, _ := h.Closing()
			assert.Equal(t, tt.opening, opening.String())
			assert.Equal(t, tt.closing, closing.String())
		})
	}

	t.Run("冬の平日は21:30まで", func(t *testing.T) {
		h, rule, err := decider.Decide(hours.DayContext{
			Events:              eventsOn(2024, time.December, 10),
			WeekLatestNightfall: hours.NewTimeOfDay(17, 15),
		})
		require.NoError(t, err)
		assert.Equal(t, "weekday", rule)
		opening, _ := h.Opening()
		closing, _ := h.Closing()
		assert.Equal(t, "17:15", opening.String())
		assert.Equal(t, "21:30", closing.String())
	})
}

func TestDecider_CustomChain(t *testing.T) {
	decider := hours.NewDecider([]hours.Rule{
		{
			Name:    "never",
			Applies: func(hours.DayContext) bool { return false },
		},
	})

	_, _, err := decider.Decide(hours.DayContext{Events: eventsOn(2024, time.July, 9)})
	assert.Error(t, err)
}

func TestLatestNightfall(t *testing.T) {
	t.Run("秒単位で最大値を取り5分単位に切り上げ", func(t *testing.T) {
		week := []calendar.Events{
			eventsOn(2024, time.July, 7, func(e *calendar.Events) { e.Nightfall = time.Date(2024, 7, 7, 20, 24, 10, 0, la) }),
			eventsOn(2024, time.July, 8, func(e *calendar.Events) { e.Nightfall = time.Date(2024, 7, 8, 20, 24, 50, 0, la) }),
			eventsOn(2024, time.July, 9, func(e *calendar.Events) { e.Nightfall = time.Date(2024, 7, 9, 20, 23, 59, 0, la) }),
		}
		got, ok := hours.LatestNightfall(week)
		require.True(t, ok)
		assert.Equal(t, "20:25", got.String())
	})

	t.Run("5分ちょうどは据え置き", func(t *testing.T) {
		week := []calendar.Events{
			eventsOn(2024, time.July, 7, func(e *calendar.Events) { e.Nightfall = time.Date(2024, 7, 7, 20, 25, 30, 0, la) }),
		}
		got, ok := hours.LatestNightfall(week)
		require.True(t, ok)
		assert.Equal(t, "20:25", got.String())
	})

	t.Run("空の週", func(t *testing.T) {
		_, ok := hours.LatestNightfall(nil)
		assert.False(t, ok)
	})
}

func TestDecider_ComputeWeek(t *testing.T) {
	decider := hours.NewDecider(hours.DefaultRules())

	sunday := time.Date(2024, time.July, 7, 0, 0, 0, 0, la)
	week := make([]calendar.Events, 0, 7)
	for i := 0; i < 7; i++ {
		d := sunday.AddDate(0, 0, i)
		week = append(week, eventsOn(d.Year(), d.Month(), d.Day(), func(e *calendar.Events) {
			e.Nightfall = time.Date(d.Year(), d.Month(), d.Day(), 20, 20, i*7, 0, la)
		}))
	}

	days := decider.ComputeWeek(week)
	require.Len(t, days, 7)

	// 最遅は土曜日の20:20:42、分が5の倍数なので20:20
	for i, d := range days {
		require.NoError(t, d.Err)
		assert.Equal(t, week[i].Date, d.Date)
	}
	assert.Equal(t, "weekday", days[0].Rule)
	sundayOpening, _ := days[0].Hours.Opening()
	assert.Equal(t, "20:20", sundayOpening.String())
	assert.Equal(t, "rest_eve", days[5].Rule)
	assert.Equal(t, "after_rest_day", days[6].Rule)

	assert.Nil(t, decider.ComputeWeek(nil))
}
