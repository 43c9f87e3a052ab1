//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/tests/common/memstore"
	commandsmock "mikvah-scheduler/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testLayouts(t *testing.T) []slot.RoomLayout {
	t.Helper()
	shower, err := slot.NewRoomLayout(slot.RoomShower, 30*time.Minute, []int{0})
	require.NoError(t, err)
	bath, err := slot.NewRoomLayout(slot.RoomBath, 75*time.Minute, []int{0, 0})
	require.NoError(t, err)
	return []slot.RoomLayout{shower, bath}
}

// seedHours stores Wed 07-10 open 20:25-23:00, Thu 07-11 closed and Fri 07-12 open.
func seedHours(t *testing.T, store *memstore.Store) {
	t.Helper()
	wed, err := hours.Open(at(10, 0, 0), hours.NewTimeOfDay(20, 25), hours.NewTimeOfDay(23, 0))
	require.NoError(t, err)
	fri, err := hours.Open(at(12, 0, 0), hours.NewTimeOfDay(20, 50), hours.NewTimeOfDay(21, 20))
	require.NoError(t, err)
	store.PutHours(wed)
	store.PutHours(hours.Closed(at(11, 0, 0)))
	store.PutHours(fri)
}

func newSlotCommands(t *testing.T, store *memstore.Store, oracle stubOracle, horizon int) commands.SlotCommands {
	t.Helper()
	ctrl := gomock.NewController(t)
	metrics := commandsmock.NewMockMetrics(ctrl)
	metrics.EXPECT().SlotsGenerated(gomock.Any(), gomock.Any()).AnyTimes()
	return commands.NewSlotCommands(store, oracle, testLayouts(t), horizon, metrics, clock.NewMockClock(at(9, 15, 0)), la)
}

func startsOf(slots []*slot.Slot, roomType slot.RoomType) []string {
	out := []string{}
	for _, s := range slots {
		if s.RoomType() == roomType {
			out = append(out, s.StartAt().Format("01-02 15:04"))
		}
	}
	return out
}

func TestSlotCommands_GenerateHorizon(t *testing.T) {
	t.Run("営業日のみ生成し、閉館日と安息日前夜は飛ばす", func(t *testing.T) {
		store := memstore.New()
		seedHours(t, store)
		sut := newSlotCommands(t, store, stubOracle{}, 4)

		res, err := sut.GenerateHorizon(context.Background())

		require.NoError(t, err)
		assert.Equal(t, commands.GenerateResult{Created: 9, Skipped: 6}, *res)
		assert.Equal(t, []string{"07-10 20:25", "07-10 20:55", "07-10 21:25", "07-10 21:55", "07-10 22:25"},
			startsOf(store.Slots(), slot.RoomShower))
		assert.Equal(t, []string{"07-10 20:25", "07-10 20:25", "07-10 21:40", "07-10 21:40"},
			startsOf(store.Slots(), slot.RoomBath))
	})

	t.Run("既に枠がある日は再生成しない", func(t *testing.T) {
		store := memstore.New()
		seedHours(t, store)
		sut := newSlotCommands(t, store, stubOracle{}, 4)

		_, err := sut.GenerateHorizon(context.Background())
		require.NoError(t, err)
		res, err := sut.GenerateHorizon(context.Background())

		require.NoError(t, err)
		assert.Zero(t, res.Created)
		assert.Len(t, store.Slots(), 9)
	})

	t.Run("一部だけ枠がある部屋はその日を丸ごと飛ばす", func(t *testing.T) {
		store := memstore.New()
		seedHours(t, store)
		store.AddSlot(at(10, 21, 55), slot.RoomShower)
		sut := newSlotCommands(t, store, stubOracle{}, 2)

		res, err := sut.GenerateHorizon(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 4, res.Created)
		assert.Equal(t, []string{"07-10 21:55"}, startsOf(store.Slots(), slot.RoomShower))
		assert.Len(t, startsOf(store.Slots(), slot.RoomBath), 4)
	})

	t.Run("今日は対象外", func(t *testing.T) {
		store := memstore.New()
		today, err := hours.Open(at(9, 0, 0), hours.NewTimeOfDay(20, 25), hours.NewTimeOfDay(23, 0))
		require.NoError(t, err)
		store.PutHours(today)
		sut := newSlotCommands(t, store, stubOracle{}, 1)

		res, err := sut.GenerateHorizon(context.Background())

		require.NoError(t, err)
		assert.Zero(t, res.Created)
		assert.Empty(t, store.Slots())
	})

	t.Run("天文計算に失敗した日は失敗として数える", func(t *testing.T) {
		store := memstore.New()
		seedHours(t, store)
		sut := newSlotCommands(t, store, stubOracle{failing: map[string]bool{"2024-07-10": true}}, 1)

		res, err := sut.GenerateHorizon(context.Background())

		require.NoError(t, err)
		assert.Equal(t, commands.GenerateResult{Failed: 2}, *res)
		assert.Empty(t, store.Slots())
	})
}
