package queries

import "time"

// AvailableTime is one bookable (start, room type) pair.
type AvailableTime struct {
	StartAt  time.Time `json:"start_at"`
	RoomType string    `json:"room_type"`
}

// DayHoursView is a stored DailyHours row rendered for display.
type DayHoursView struct {
	Date    string  `json:"date"`
	Weekday string  `json:"weekday"`
	Closed  bool    `json:"closed"`
	Opening *string `json:"opening,omitempty"`
	Closing *string `json:"closing,omitempty"`
}

// ReservedSlotView is a reserved slot joined with its holder.
type ReservedSlotView struct {
	SlotID    int64     `json:"slot_id"`
	StartAt   time.Time `json:"start_at"`
	RoomType  string    `json:"room_type"`
	Notes     *string   `json:"notes,omitempty"`
	Title     string    `json:"title"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// AttendantEntry is one line of the attendant's daily list.
type AttendantEntry struct {
	FirstName string  `json:"first_name"`
	Time      string  `json:"time"`
	RoomType  string  `json:"room_type"`
	Notes     *string `json:"notes,omitempty"`
}

// AdminEntry is one line of the admin daily list.
type AdminEntry struct {
	SlotID    int64     `json:"slot_id"`
	Title     string    `json:"title"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	StartAt   time.Time `json:"start_at"`
	Time      string    `json:"time"`
	RoomType  string    `json:"room_type"`
	Notes     *string   `json:"notes,omitempty"`
}
