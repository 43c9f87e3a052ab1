package commands

import (
	"context"
	"time"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -source=ports.go -destination=../../../tests/mock/commands/ports_mock.go -package=commandsmock

var (
	ErrNoAvailability   = errs.New("no availability")
	ErrTooLateToday     = errs.New("too late to book for today")
	ErrPaymentFailed    = errs.New("payment failed")
	ErrForbidden        = errs.New("forbidden")
	ErrSlotNotFound     = errs.New("appointment slot not found")
	ErrTransientStorage = errs.New("transient storage failure")
	ErrInvalidRequest   = errs.New("invalid request")
)

// CardDeclinedError carries a reason the gateway considers safe to show the customer.
type CardDeclinedError struct {
	Reason string
}

func (e *CardDeclinedError) Error() string {
	return "card declined: " + e.Reason
}

// Fee is the flat price charged to non-members.
type Fee struct {
	AmountCents         int64
	Currency            string
	StatementDescriptor string
}

type ChargeRequest struct {
	CustomerRef         string
	AmountCents         int64
	Currency            string
	StatementDescriptor string
}

type PaymentGateway interface {
	// Charge returns the gateway's charge id.
	Charge(ctx context.Context, req ChargeRequest) (string, error)
	// Refund returns the gateway's refund id.
	Refund(ctx context.Context, chargeID string) (string, error)
}

type NotificationKind string

const (
	NotificationConfirmation NotificationKind = "appointment_confirmation"
	NotificationCancellation NotificationKind = "appointment_cancellation"
)

type Notification struct {
	Kind     NotificationKind
	UserID   uuid.UUID
	Email    string
	Name     string
	SlotID   int64
	StartAt  time.Time
	RoomType slot.RoomType
	Refunded bool
}

// Notifier is fire-and-forget: callers log a returned error and move on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) error { return nil }

// AvailabilityInvalidator drops cached availability after a booking write.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context) error
}

type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context) error { return nil }

type Metrics interface {
	BookingOutcome(operation, outcome string)
	DailyHoursWritten(n int)
	SlotsGenerated(roomType slot.RoomType, n int)
}

type NopMetrics struct{}

func (NopMetrics) BookingOutcome(string, string)     {}
func (NopMetrics) DailyHoursWritten(int)             {}
func (NopMetrics) SlotsGenerated(slot.RoomType, int) {}
