package response

import (
	"time"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type AppointmentResponse struct {
	ID       int64     `json:"id"`
	StartAt  time.Time `json:"startAt"`
	RoomType string    `json:"roomType"`
	Notes    *string   `json:"notes,omitempty"`
	Paid     bool      `json:"paid"`
}

func FromSlot(s *slot.Slot, loc *time.Location) *AppointmentResponse {
	return &AppointmentResponse{
		ID:       s.ID(),
		StartAt:  s.StartAt().In(loc),
		RoomType: s.RoomType().String(),
		Notes:    s.Notes(),
		Paid:     s.ChargeID() != nil,
	}
}

type CancelResponse struct {
	Canceled bool    `json:"canceled"`
	RefundID *string `json:"refundId,omitempty"`
}

func FromCancelResult(r *commands.CancelResult) *CancelResponse {
	return &CancelResponse{Canceled: r.Canceled, RefundID: r.RefundID}
}

type AvailableTimeResponse struct {
	StartAt  time.Time `json:"startAt"`
	RoomType string    `json:"roomType"`
}

type DayHoursResponse struct {
	Date    string  `json:"date"`
	Weekday string  `json:"weekday"`
	Closed  bool    `json:"closed"`
	Opening *string `json:"opening,omitempty"`
	Closing *string `json:"closing,omitempty"`
}

type AttendantEntryResponse struct {
	FirstName string  `json:"firstName"`
	Time      string  `json:"time"`
	RoomType  string  `json:"roomType"`
	Notes     *string `json:"notes,omitempty"`
}

type AdminEntryResponse struct {
	SlotID    int64     `json:"slotId"`
	Title     string    `json:"title"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	StartAt   time.Time `json:"startAt"`
	Time      string    `json:"time"`
	RoomType  string    `json:"roomType"`
	Notes     *string   `json:"notes,omitempty"`
}

func FromAvailableTimes(v []*queries.AvailableTime) ([]*AvailableTimeResponse, error) {
	return copyList[AvailableTimeResponse](v)
}

func FromDayHours(v []*queries.DayHoursView) ([]*DayHoursResponse, error) {
	return copyList[DayHoursResponse](v)
}

func FromAttendantList(v []*queries.AttendantEntry) ([]*AttendantEntryResponse, error) {
	return copyList[AttendantEntryResponse](v)
}

func FromAdminList(v []*queries.AdminEntry) ([]*AdminEntryResponse, error) {
	return copyList[AdminEntryResponse](v)
}

// copyList projects views onto response DTOs with matching field names.
func copyList[T, S any](src []*S) ([]*T, error) {
	out := make([]*T, 0, len(src))
	if err := copier.Copy(&out, src); err != nil {
		return nil, err
	}
	return out, nil
}
