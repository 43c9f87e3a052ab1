package request

import (
	"strings"
	"time"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/pkg/ptr"
	"mikvah-scheduler/internal/usecase/commands"
)

type ReserveRequest struct {
	Time     time.Time `json:"time" binding:"required"`
	RoomType string    `json:"room_type" binding:"required"`
	Notes    *string   `json:"notes,omitempty"`
}

func (r ReserveRequest) ToParams() (commands.ReserveParams, error) {
	roomType, err := slot.ParseRoomType(r.RoomType)
	if err != nil {
		return commands.ReserveParams{}, err
	}
	return commands.ReserveParams{Time: r.Time, RoomType: roomType, Notes: trimNotes(r.Notes)}, nil
}

type EditRequest struct {
	Time  *time.Time `json:"time,omitempty"`
	Notes *string    `json:"notes,omitempty"`
}

func (r EditRequest) ToParams() commands.EditParams {
	return commands.EditParams{Time: r.Time, Notes: trimNotes(r.Notes)}
}

type DailyListQuery struct {
	Date *string `form:"date"`
}

// Day parses the requested date in loc, defaulting to today.
func (q DailyListQuery) Day(today time.Time, loc *time.Location) (time.Time, error) {
	date := ptr.Or(q.Date, today.Format(time.DateOnly))
	return time.ParseInLocation(time.DateOnly, date, loc)
}

type WeekPreviewQuery struct {
	Sunday string `form:"sunday" binding:"required"`
}

func (q WeekPreviewQuery) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, q.Sunday, loc)
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	return &trimmed
}
