package slot

import (
	"sort"
	"time"
)

// RoomLayout describes the rooms of one type: every room runs back-to-back
// appointments of Duration starting Offsets[i] minutes after opening.
// Repeated offsets are separate rooms sharing the same start times.
type RoomLayout struct {
	RoomType RoomType
	Duration time.Duration
	Offsets  []int
}

func NewRoomLayout(roomType RoomType, duration time.Duration, offsets []int) (RoomLayout, error) {
	if !roomType.IsValid() {
		return RoomLayout{}, ErrInvalidRoomType
	}
	if duration <= 0 || len(offsets) == 0 {
		return RoomLayout{}, ErrInvalidLayout
	}
	for _, o := range offsets {
		if o < 0 {
			return RoomLayout{}, ErrInvalidLayout
		}
	}
	return RoomLayout{RoomType: roomType, Duration: duration, Offsets: append([]int(nil), offsets...)}, nil
}

// Plan lists the start times of a day. A slot is emitted while it ends at
// or before closing. Results are sorted by start time.
func Plan(opening, closing time.Time, layout RoomLayout) []time.Time {
	if layout.Duration <= 0 || !opening.Before(closing) {
		return nil
	}
	var starts []time.Time
	for _, offset := range layout.Offsets {
		for start := opening.Add(time.Duration(offset) * time.Minute); !start.Add(layout.Duration).After(closing); start = start.Add(layout.Duration) {
			starts = append(starts, start)
		}
	}
	sort.SliceStable(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts
}
