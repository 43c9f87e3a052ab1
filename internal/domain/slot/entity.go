package slot

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a bookable appointment in one physical room. A nil user means
// the slot is available.
type Slot struct {
	id       int64
	startAt  time.Time
	roomType RoomType
	userID   *uuid.UUID
	chargeID *string
	notes    *string
}

func New(startAt time.Time, roomType RoomType) (*Slot, error) {
	if !roomType.IsValid() {
		return nil, ErrInvalidRoomType
	}
	return &Slot{startAt: startAt, roomType: roomType}, nil
}

func Reconstruct(id int64, startAt time.Time, roomType RoomType, userID *uuid.UUID, chargeID, notes *string) (*Slot, error) {
	if !roomType.IsValid() {
		return nil, ErrInvalidRoomType
	}
	if userID == nil && chargeID != nil {
		return nil, ErrInvalidSlotState
	}
	return &Slot{
		id:       id,
		startAt:  startAt,
		roomType: roomType,
		userID:   userID,
		chargeID: chargeID,
		notes:    notes,
	}, nil
}

func (s *Slot) ID() int64          { return s.id }
func (s *Slot) StartAt() time.Time { return s.startAt }
func (s *Slot) RoomType() RoomType { return s.roomType }
func (s *Slot) UserID() *uuid.UUID { return s.userID }
func (s *Slot) ChargeID() *string  { return s.chargeID }
func (s *Slot) Notes() *string     { return s.notes }
func (s *Slot) IsAvailable() bool  { return s.userID == nil }
func (s *Slot) IsOwnedBy(id uuid.UUID) bool {
	return s.userID != nil && *s.userID == id
}

func validNotes(notes *string) error {
	if notes != nil && len(*notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Reserve assigns the slot. chargeID is nil for members.
func (s *Slot) Reserve(userID uuid.UUID, chargeID, notes *string) error {
	if !s.IsAvailable() {
		return ErrAlreadyReserved
	}
	if err := validNotes(notes); err != nil {
		return err
	}
	s.userID = &userID
	s.chargeID = chargeID
	s.notes = notes
	return nil
}

// Release clears the reservation and returns the charge that was attached.
func (s *Slot) Release() (*string, error) {
	if s.IsAvailable() {
		return nil, ErrNotReserved
	}
	charge := s.chargeID
	s.userID = nil
	s.chargeID = nil
	s.notes = nil
	return charge, nil
}

func (s *Slot) UpdateNotes(notes *string) error {
	if s.IsAvailable() {
		return ErrNotReserved
	}
	if err := validNotes(notes); err != nil {
		return err
	}
	s.notes = notes
	return nil
}

// MoveTo transfers the reservation to target and frees s.
func (s *Slot) MoveTo(target *Slot, notes *string) error {
	if s.IsAvailable() {
		return ErrNotReserved
	}
	if err := target.Reserve(*s.userID, s.chargeID, notes); err != nil {
		return err
	}
	_, err := s.Release()
	return err
}
