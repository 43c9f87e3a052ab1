package history

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one line of the append-only reservation log. PaymentRef holds
// the charge id on MADE and the refund id on CANCELED, when there is one.
type Entry struct {
	id         int64
	slotID     int64
	userID     uuid.UUID
	createdAt  time.Time
	action     Action
	paymentRef *string
}

func NewEntry(slotID int64, userID uuid.UUID, action Action, paymentRef *string, at time.Time) (*Entry, error) {
	if slotID <= 0 {
		return nil, ErrMissingSlot
	}
	if !action.IsValid() {
		return nil, ErrInvalidAction
	}
	return &Entry{
		slotID:     slotID,
		userID:     userID,
		createdAt:  at,
		action:     action,
		paymentRef: paymentRef,
	}, nil
}

func Made(slotID int64, userID uuid.UUID, chargeID *string, at time.Time) (*Entry, error) {
	return NewEntry(slotID, userID, ActionMade, chargeID, at)
}

func Canceled(slotID int64, userID uuid.UUID, refundID *string, at time.Time) (*Entry, error) {
	return NewEntry(slotID, userID, ActionCanceled, refundID, at)
}

func Reconstruct(id, slotID int64, userID uuid.UUID, action Action, paymentRef *string, createdAt time.Time) *Entry {
	return &Entry{
		id:         id,
		slotID:     slotID,
		userID:     userID,
		createdAt:  createdAt,
		action:     action,
		paymentRef: paymentRef,
	}
}

func (e *Entry) ID() int64            { return e.id }
func (e *Entry) SlotID() int64        { return e.slotID }
func (e *Entry) UserID() uuid.UUID    { return e.userID }
func (e *Entry) CreatedAt() time.Time { return e.createdAt }
func (e *Entry) Action() Action       { return e.action }
func (e *Entry) PaymentRef() *string  { return e.paymentRef }
