package commands

import (
	"context"
	"log/slog"
	"time"

	"mikvah-scheduler/internal/domain/history"
	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/infra"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/commands/booking_mock.go -package=commandsmock

const (
	opReserve = "reserve"
	opCancel  = "cancel"
	opEdit    = "edit"
)

type ReserveParams struct {
	Time     time.Time
	RoomType slot.RoomType
	Notes    *string
}

// EditParams: nil fields are left unchanged.
type EditParams struct {
	Time  *time.Time
	Notes *string
}

type CancelResult struct {
	Canceled bool
	RefundID *string
}

type BookingCommands interface {
	Reserve(ctx context.Context, u *user.User, p ReserveParams) (*slot.Slot, error)
	Cancel(ctx context.Context, actor *user.User, slotID int64) (*CancelResult, error)
	Edit(ctx context.Context, actor *user.User, slotID int64, p EditParams) (*slot.Slot, error)
}

type bookingCommandsImpl struct {
	uow         shared.UnitOfWork
	payment     PaymentGateway
	notifier    Notifier
	invalidator AvailabilityInvalidator
	metrics     Metrics
	clock       clock.Clock
	loc         *time.Location
	fee         Fee
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	payment PaymentGateway,
	notifier Notifier,
	invalidator AvailabilityInvalidator,
	metrics Metrics,
	clk clock.Clock,
	loc *time.Location,
	fee Fee,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:         uow,
		payment:     payment,
		notifier:    notifier,
		invalidator: invalidator,
		metrics:     metrics,
		clock:       clk,
		loc:         loc,
		fee:         fee,
	}
}

func (b *bookingCommandsImpl) Reserve(ctx context.Context, u *user.User, p ReserveParams) (*slot.Slot, error) {
	if err := validateNotes(p.Notes); err != nil {
		return nil, b.finish(opReserve, err)
	}
	if !p.RoomType.IsValid() {
		return nil, b.finish(opReserve, errs.Mark(slot.ErrInvalidRoomType, ErrInvalidRequest))
	}

	var (
		reserved *slot.Slot
		chargeID *string
	)
	err := b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := b.checkSameDayCutoff(ctx, tx, p.Time); err != nil {
			return err
		}

		s, err := tx.Slots().FindFirstAvailable(ctx, p.Time, p.RoomType)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrNoAvailability
			}
			return err
		}

		// a retried attempt reuses the charge from the first one
		if !u.IsMember() && chargeID == nil {
			id, err := b.charge(ctx, u)
			if err != nil {
				return err
			}
			chargeID = &id
		}

		if err := s.Reserve(u.ID(), chargeID, p.Notes); err != nil {
			return errs.Mark(err, ErrInvalidRequest)
		}
		if err := tx.Slots().Save(ctx, s); err != nil {
			return err
		}
		entry, err := history.Made(s.ID(), u.ID(), chargeID, b.clock.Now())
		if err != nil {
			return err
		}
		if _, err := tx.History().Append(ctx, entry); err != nil {
			return err
		}
		reserved = s
		return nil
	})
	if err != nil {
		if chargeID != nil {
			b.compensate(ctx, *chargeID)
		}
		return nil, b.finish(opReserve, err)
	}

	slog.Info("appointment reserved",
		"slot_id", reserved.ID(),
		"user_id", u.ID(),
		"start_at", reserved.StartAt(),
		"room_type", reserved.RoomType(),
		"charged", chargeID != nil)

	b.afterCommit(ctx, Notification{
		Kind:     NotificationConfirmation,
		UserID:   u.ID(),
		Email:    u.Email().Value(),
		Name:     u.FullName(),
		SlotID:   reserved.ID(),
		StartAt:  reserved.StartAt(),
		RoomType: reserved.RoomType(),
	})
	b.metrics.BookingOutcome(opReserve, outcomeOf(nil))
	return reserved, nil
}

func (b *bookingCommandsImpl) Cancel(ctx context.Context, actor *user.User, slotID int64) (*CancelResult, error) {
	var (
		result   CancelResult
		refundID *string
		released *slot.Slot
		owner    *user.User
	)
	err := b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = CancelResult{}
		owner = nil

		s, err := tx.Slots().FindByID(ctx, slotID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		if s.IsAvailable() {
			return nil
		}
		if !s.IsOwnedBy(actor.ID()) && !actor.IsAdmin() {
			return ErrForbidden
		}
		if err := b.checkSameDayCutoff(ctx, tx, s.StartAt()); err != nil {
			return err
		}

		ownerID := *s.UserID()
		charge, err := s.Release()
		if err != nil {
			return err
		}
		// refund failures never block the cancellation
		if charge != nil && refundID == nil {
			id, err := b.payment.Refund(ctx, *charge)
			if err != nil {
				slog.Warn("refund failed, canceling without refund",
					"slot_id", slotID,
					"charge_id", *charge,
					"error", err.Error())
			} else {
				refundID = &id
			}
		}

		if err := tx.Slots().Save(ctx, s); err != nil {
			return err
		}
		entry, err := history.Canceled(s.ID(), actor.ID(), refundID, b.clock.Now())
		if err != nil {
			return err
		}
		if _, err := tx.History().Append(ctx, entry); err != nil {
			return err
		}

		owner = b.lookupOwner(ctx, tx, ownerID, actor)
		released = s
		result = CancelResult{Canceled: true, RefundID: refundID}
		return nil
	})
	if err != nil {
		if refundID != nil {
			slog.Error("refund issued but cancellation was rolled back",
				"slot_id", slotID,
				"refund_id", *refundID)
		}
		return nil, b.finish(opCancel, err)
	}
	if !result.Canceled {
		b.metrics.BookingOutcome(opCancel, "noop")
		return &result, nil
	}

	slog.Info("appointment canceled",
		"slot_id", slotID,
		"actor_id", actor.ID(),
		"refunded", refundID != nil)

	if owner != nil {
		b.afterCommit(ctx, Notification{
			Kind:     NotificationCancellation,
			UserID:   owner.ID(),
			Email:    owner.Email().Value(),
			Name:     owner.FullName(),
			SlotID:   released.ID(),
			StartAt:  released.StartAt(),
			RoomType: released.RoomType(),
			Refunded: refundID != nil,
		})
	} else {
		b.invalidate(ctx)
	}
	b.metrics.BookingOutcome(opCancel, outcomeOf(nil))
	return &result, nil
}

func (b *bookingCommandsImpl) Edit(ctx context.Context, actor *user.User, slotID int64, p EditParams) (*slot.Slot, error) {
	if !actor.IsAdmin() {
		return nil, b.finish(opEdit, ErrForbidden)
	}
	if err := validateNotes(p.Notes); err != nil {
		return nil, b.finish(opEdit, err)
	}

	var (
		edited *slot.Slot
		owner  *user.User
		moved  bool
	)
	err := b.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Slots().FindByID(ctx, slotID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if s.IsAvailable() {
			return ErrSlotNotFound
		}

		if p.Time == nil {
			moved = false
			edited = s
			if p.Notes == nil {
				return nil
			}
			if err := s.UpdateNotes(p.Notes); err != nil {
				return errs.Mark(err, ErrInvalidRequest)
			}
			return tx.Slots().Save(ctx, s)
		}

		target, err := tx.Slots().FindFirstAvailable(ctx, *p.Time, s.RoomType())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrNoAvailability
			}
			return err
		}

		ownerID := *s.UserID()
		chargeID := s.ChargeID()
		notes := s.Notes()
		if p.Notes != nil {
			notes = p.Notes
		}
		if err := s.MoveTo(target, notes); err != nil {
			return errs.Mark(err, ErrInvalidRequest)
		}

		now := b.clock.Now()
		if err := tx.Slots().Save(ctx, target); err != nil {
			return err
		}
		made, err := history.Made(target.ID(), ownerID, chargeID, now)
		if err != nil {
			return err
		}
		if _, err := tx.History().Append(ctx, made); err != nil {
			return err
		}
		if err := tx.Slots().Save(ctx, s); err != nil {
			return err
		}
		canceled, err := history.Canceled(s.ID(), ownerID, nil, now)
		if err != nil {
			return err
		}
		if _, err := tx.History().Append(ctx, canceled); err != nil {
			return err
		}

		owner = b.lookupOwner(ctx, tx, ownerID, actor)
		edited = target
		moved = true
		return nil
	})
	if err != nil {
		return nil, b.finish(opEdit, err)
	}

	if moved {
		slog.Info("appointment moved",
			"from_slot_id", slotID,
			"to_slot_id", edited.ID(),
			"actor_id", actor.ID())
		if owner != nil {
			b.afterCommit(ctx, Notification{
				Kind:     NotificationConfirmation,
				UserID:   owner.ID(),
				Email:    owner.Email().Value(),
				Name:     owner.FullName(),
				SlotID:   edited.ID(),
				StartAt:  edited.StartAt(),
				RoomType: edited.RoomType(),
			})
		} else {
			b.invalidate(ctx)
		}
	}
	b.metrics.BookingOutcome(opEdit, outcomeOf(nil))
	return edited, nil
}

// checkSameDayCutoff rejects a booking change for today once today's opening has passed.
func (b *bookingCommandsImpl) checkSameDayCutoff(ctx context.Context, tx shared.Tx, at time.Time) error {
	now := b.clock.Now().In(b.loc)
	today := clock.Midnight(now, b.loc)
	if !clock.Midnight(at, b.loc).Equal(today) {
		return nil
	}

	h, err := tx.Hours().FindByDay(ctx, today)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return err
	}
	opening, ok := h.OpeningAt()
	if !ok {
		return nil
	}
	if now.After(opening) {
		return ErrTooLateToday
	}
	return nil
}

func (b *bookingCommandsImpl) charge(ctx context.Context, u *user.User) (string, error) {
	ref := u.PaymentCustomerRef()
	if ref == nil || *ref == "" {
		return "", errs.Mark(errs.New("user has no payment method on file"), ErrPaymentFailed)
	}
	id, err := b.payment.Charge(ctx, ChargeRequest{
		CustomerRef:         *ref,
		AmountCents:         b.fee.AmountCents,
		Currency:            b.fee.Currency,
		StatementDescriptor: b.fee.StatementDescriptor,
	})
	if err != nil {
		return "", errs.Mark(err, ErrPaymentFailed)
	}
	return id, nil
}

// compensate refunds a charge whose reservation did not commit.
func (b *bookingCommandsImpl) compensate(ctx context.Context, chargeID string) {
	refundID, err := b.payment.Refund(context.WithoutCancel(ctx), chargeID)
	if err != nil {
		slog.Error("failed to refund charge of aborted reservation",
			"charge_id", chargeID,
			"error", err.Error())
		return
	}
	slog.Warn("refunded charge of aborted reservation",
		"charge_id", chargeID,
		"refund_id", refundID)
}

func (b *bookingCommandsImpl) lookupOwner(ctx context.Context, tx shared.Tx, ownerID uuid.UUID, actor *user.User) *user.User {
	if actor.ID() == ownerID {
		return actor
	}
	owner, err := tx.Users().FindByID(ctx, ownerID)
	if err != nil {
		slog.Warn("failed to load slot owner for notification",
			"user_id", ownerID,
			"error", err.Error())
		return nil
	}
	return owner
}

func (b *bookingCommandsImpl) afterCommit(ctx context.Context, n Notification) {
	if err := b.notifier.Notify(ctx, n); err != nil {
		slog.Warn("failed to send notification",
			"kind", n.Kind,
			"slot_id", n.SlotID,
			"error", err.Error())
	}
	b.invalidate(ctx)
}

func (b *bookingCommandsImpl) invalidate(ctx context.Context) {
	if err := b.invalidator.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate availability cache", "error", err.Error())
	}
}

// finish records the outcome and maps storage aborts to ErrTransientStorage.
func (b *bookingCommandsImpl) finish(operation string, err error) error {
	if err != nil && errs.Is(err, shared.ErrTransactionAborted) {
		err = errs.Mark(err, ErrTransientStorage)
	}
	b.metrics.BookingOutcome(operation, outcomeOf(err))
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errs.Is(err, ErrNoAvailability):
		return "no_availability"
	case errs.Is(err, ErrTooLateToday):
		return "too_late_today"
	case errs.Is(err, ErrPaymentFailed):
		return "payment_failed"
	case errs.Is(err, ErrForbidden):
		return "forbidden"
	case errs.Is(err, ErrSlotNotFound):
		return "not_found"
	case errs.Is(err, ErrInvalidRequest):
		return "invalid"
	case errs.Is(err, ErrTransientStorage):
		return "transient"
	default:
		return "error"
	}
}

func validateNotes(notes *string) error {
	if notes != nil && len(*notes) > slot.MaxNotesLength {
		return errs.Mark(slot.ErrNotesTooLong, ErrInvalidRequest)
	}
	return nil
}
