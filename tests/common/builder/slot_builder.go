//go:build unit || e2e

package builder

import (
	"time"

	"mikvah-scheduler/internal/domain/slot"

	"github.com/google/uuid"
)

type SlotBuilder struct {
	ID       int64
	StartAt  time.Time
	RoomType slot.RoomType
	UserID   *uuid.UUID
	ChargeID *string
	Notes    *string
}

func NewSlotBuilder() *SlotBuilder {
	return &SlotBuilder{
		ID:       1,
		StartAt:  time.Date(2024, time.July, 10, 3, 25, 0, 0, time.UTC),
		RoomType: slot.RoomShower,
	}
}

func (b *SlotBuilder) WithID(id int64) *SlotBuilder {
	b.ID = id
	return b
}

func (b *SlotBuilder) At(t time.Time) *SlotBuilder {
	b.StartAt = t
	return b
}

func (b *SlotBuilder) WithRoomType(r slot.RoomType) *SlotBuilder {
	b.RoomType = r
	return b
}

func (b *SlotBuilder) ReservedBy(userID uuid.UUID) *SlotBuilder {
	b.UserID = &userID
	return b
}

func (b *SlotBuilder) Paid(chargeID string) *SlotBuilder {
	b.ChargeID = &chargeID
	return b
}

func (b *SlotBuilder) WithNotes(notes string) *SlotBuilder {
	b.Notes = &notes
	return b
}

func (b *SlotBuilder) MustBuild() *slot.Slot {
	s, err := slot.Reconstruct(b.ID, b.StartAt, b.RoomType, b.UserID, b.ChargeID, b.Notes)
	if err != nil {
		panic(err)
	}
	return s
}
