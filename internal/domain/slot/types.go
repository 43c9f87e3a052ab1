package slot

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRoomType  = errors.New("invalid room type")
	ErrInvalidLayout    = errors.New("room layout requires a positive duration and at least one offset")
	ErrAlreadyReserved  = errors.New("slot is already reserved")
	ErrNotReserved      = errors.New("slot has no reservation")
	ErrNotesTooLong     = errors.New("notes exceed maximum length")
	ErrInvalidSlotState = errors.New("slot fields are inconsistent")
)

const MaxNotesLength = 1000

type RoomType string

const (
	RoomShower RoomType = "SHOWER"
	RoomBath   RoomType = "BATH"
)

func (r RoomType) String() string { return string(r) }

func (r RoomType) IsValid() bool {
	switch r {
	case RoomShower, RoomBath:
		return true
	default:
		return false
	}
}

// ParseRoomType accepts any letter case.
func ParseRoomType(s string) (RoomType, error) {
	r := RoomType(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRoomType
	}
	return r, nil
}
