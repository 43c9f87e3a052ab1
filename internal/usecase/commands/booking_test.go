//go:build unit

package commands_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"mikvah-scheduler/internal/domain/history"
	"mikvah-scheduler/internal/domain/hours"
	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/pkg/ptr"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/tests/common/builder"
	"mikvah-scheduler/tests/common/memstore"
	commandsmock "mikvah-scheduler/tests/mock/commands"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var la = mustLoad("America/Los_Angeles")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.July, day, hour, minute, 0, 0, la)
}

var fee = commands.Fee{AmountCents: 3600, Currency: "usd", StatementDescriptor: "Appointment"}

type BookingCommandsTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	store       *memstore.Store
	payment     *commandsmock.MockPaymentGateway
	notifier    *commandsmock.MockNotifier
	invalidator *commandsmock.MockAvailabilityInvalidator
	metrics     *commandsmock.MockMetrics
	clock       *clock.MockClock
	sut         commands.BookingCommands

	member    *user.User
	nonMember *user.User
	admin     *user.User
}

func TestBookingCommandsSuite(t *testing.T) {
	suite.Run(t, new(BookingCommandsTestSuite))
}

// Tuesday 2024-07-09 15:00; today opens 20:25.
func (s *BookingCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = memstore.New()
	s.payment = commandsmock.NewMockPaymentGateway(s.ctrl)
	s.notifier = commandsmock.NewMockNotifier(s.ctrl)
	s.invalidator = commandsmock.NewMockAvailabilityInvalidator(s.ctrl)
	s.metrics = commandsmock.NewMockMetrics(s.ctrl)
	s.clock = clock.NewMockClock(at(9, 15, 0))

	s.metrics.EXPECT().BookingOutcome(gomock.Any(), gomock.Any()).AnyTimes()

	s.sut = commands.NewBookingCommands(s.store, s.payment, s.notifier, s.invalidator, s.metrics, s.clock, la, fee)

	s.member = builder.NewUserBuilder().AsMember().MustBuildDomain()
	s.nonMember = builder.NewUserBuilder().WithEmail("guest@example.com").MustBuildDomain()
	s.admin = builder.NewUserBuilder().WithRole("admin").WithEmail("admin@example.com").MustBuildDomain()
	for _, u := range []*user.User{s.member, s.nonMember, s.admin} {
		s.store.AddUser(u)
	}

	today, err := hours.Open(at(9, 0, 0), hours.NewTimeOfDay(20, 25), hours.NewTimeOfDay(23, 0))
	s.Require().NoError(err)
	s.store.PutHours(today)
}

func (s *BookingCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BookingCommandsTestSuite) expectSideEffects() {
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
	s.invalidator.EXPECT().Invalidate(gomock.Any()).Return(nil)
}

// reserveAs books the first shower slot at start for u.
func (s *BookingCommandsTestSuite) reserveAs(u *user.User, start time.Time) *slot.Slot {
	s.expectSideEffects()
	reserved, err := s.sut.Reserve(context.Background(), u, commands.ReserveParams{Time: start, RoomType: slot.RoomShower})
	s.Require().NoError(err)
	return reserved
}

// ================================================================================
// Reserve
// ================================================================================

func (s *BookingCommandsTestSuite) TestReserve_Member() {
	first := s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)

	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n commands.Notification) error {
			s.Equal(commands.NotificationConfirmation, n.Kind)
			s.Equal(s.member.ID(), n.UserID)
			s.Equal("test@example.com", n.Email)
			s.Equal(first, n.SlotID)
			return nil
		})
	s.invalidator.EXPECT().Invalidate(gomock.Any()).Return(nil)

	reserved, err := s.sut.Reserve(context.Background(), s.member, commands.ReserveParams{
		Time:     at(10, 20, 50),
		RoomType: slot.RoomShower,
		Notes:    ptr.Of("first visit"),
	})

	s.Require().NoError(err)
	s.Equal(first, reserved.ID(), "lowest id wins")
	stored := s.store.Slot(first)
	s.True(stored.IsOwnedBy(s.member.ID()))
	s.Nil(stored.ChargeID())
	s.Equal("first visit", *stored.Notes())

	entries := s.store.History()
	s.Require().Len(entries, 1)
	s.Equal(history.ActionMade, entries[0].Action())
	s.Equal(first, entries[0].SlotID())
	s.Equal(s.member.ID(), entries[0].UserID())
	s.Nil(entries[0].PaymentRef())
}

func (s *BookingCommandsTestSuite) TestReserve_NonMemberIsCharged() {
	id := s.store.AddSlot(at(10, 21, 20), slot.RoomBath)

	s.payment.EXPECT().Charge(gomock.Any(), commands.ChargeRequest{
		CustomerRef:         "cus_test",
		AmountCents:         3600,
		Currency:            "usd",
		StatementDescriptor: "Appointment",
	}).Return("ch_1", nil)
	s.expectSideEffects()

	_, err := s.sut.Reserve(context.Background(), s.nonMember, commands.ReserveParams{Time: at(10, 21, 20), RoomType: slot.RoomBath})

	s.Require().NoError(err)
	s.Equal("ch_1", *s.store.Slot(id).ChargeID())
	s.Equal("ch_1", *s.store.History()[0].PaymentRef())
}

func (s *BookingCommandsTestSuite) TestReserve_Rejections() {
	tests := []struct {
		name      string
		now       time.Time
		params    commands.ReserveParams
		u         func() *user.User
		expectErr error
	}{
		{
			name:      "空き枠なし",
			params:    commands.ReserveParams{Time: at(10, 22, 0), RoomType: slot.RoomShower},
			u:         func() *user.User { return s.nonMember },
			expectErr: commands.ErrNoAvailability,
		},
		{
			name:      "部屋種別違い",
			params:    commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomBath},
			u:         func() *user.User { return s.nonMember },
			expectErr: commands.ErrNoAvailability,
		},
		{
			name:      "当日の開館後",
			now:       at(9, 20, 30),
			params:    commands.ReserveParams{Time: at(9, 21, 0), RoomType: slot.RoomShower},
			u:         func() *user.User { return s.nonMember },
			expectErr: commands.ErrTooLateToday,
		},
		{
			name:      "メモが長すぎる",
			params:    commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomShower, Notes: ptr.Of(strings.Repeat("a", slot.MaxNotesLength+1))},
			u:         func() *user.User { return s.nonMember },
			expectErr: commands.ErrInvalidRequest,
		},
		{
			name:      "不明な部屋種別",
			params:    commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomType("SAUNA")},
			u:         func() *user.User { return s.nonMember },
			expectErr: commands.ErrInvalidRequest,
		},
		{
			name:   "支払い方法なし",
			params: commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomShower},
			u: func() *user.User {
				return builder.NewUserBuilder().WithoutPaymentCustomer().MustBuildDomain()
			},
			expectErr: commands.ErrPaymentFailed,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
			s.store.AddSlot(at(9, 21, 0), slot.RoomShower)
			if !tt.now.IsZero() {
				s.clock.Set(tt.now)
			}

			_, err := s.sut.Reserve(context.Background(), tt.u(), tt.params)

			s.Require().Error(err)
			s.True(errs.Is(err, tt.expectErr), "got %v", err)
			s.Empty(s.store.History())
			for _, sl := range s.store.Slots() {
				s.True(sl.IsAvailable())
			}
		})
	}
}

func (s *BookingCommandsTestSuite) TestReserve_TodayBeforeOpening() {
	id := s.store.AddSlot(at(9, 20, 50), slot.RoomShower)
	s.expectSideEffects()

	_, err := s.sut.Reserve(context.Background(), s.member, commands.ReserveParams{Time: at(9, 20, 50), RoomType: slot.RoomShower})

	s.Require().NoError(err)
	s.False(s.store.Slot(id).IsAvailable())
}

func (s *BookingCommandsTestSuite) TestReserve_CardDeclined() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.payment.EXPECT().Charge(gomock.Any(), gomock.Any()).
		Return("", &commands.CardDeclinedError{Reason: "Your card has insufficient funds."})

	_, err := s.sut.Reserve(context.Background(), s.nonMember, commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomShower})

	s.True(errs.Is(err, commands.ErrPaymentFailed))
	var declined *commands.CardDeclinedError
	s.Require().True(errors.As(err, &declined))
	s.Equal("Your card has insufficient funds.", declined.Reason)
	s.Empty(s.store.History())
}

func (s *BookingCommandsTestSuite) TestReserve_AbortedCommitRefundsCharge() {
	id := s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.store.AbortNext = true

	gomock.InOrder(
		s.payment.EXPECT().Charge(gomock.Any(), gomock.Any()).Return("ch_9", nil),
		s.payment.EXPECT().Refund(gomock.Any(), "ch_9").Return("re_9", nil),
	)

	_, err := s.sut.Reserve(context.Background(), s.nonMember, commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomShower})

	s.True(errs.Is(err, commands.ErrTransientStorage))
	s.True(s.store.Slot(id).IsAvailable())
	s.Empty(s.store.History())
}

func (s *BookingCommandsTestSuite) TestReserve_ConcurrentCallersGetDistinctSlots() {
	a := s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	b := s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	other := builder.NewUserBuilder().AsMember().MustBuildDomain()

	first := s.reserveAs(s.member, at(10, 20, 50))
	second := s.reserveAs(other, at(10, 20, 50))
	_, err := s.sut.Reserve(context.Background(), s.admin, commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomShower})

	s.Equal(a, first.ID())
	s.Equal(b, second.ID())
	s.True(errs.Is(err, commands.ErrNoAvailability))
}

func (s *BookingCommandsTestSuite) TestReserve_NotificationFailureIsIgnored() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))
	s.invalidator.EXPECT().Invalidate(gomock.Any()).Return(errors.New("redis down"))

	_, err := s.sut.Reserve(context.Background(), s.member, commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomShower})

	s.NoError(err)
}

// ================================================================================
// Cancel
// ================================================================================

func (s *BookingCommandsTestSuite) TestCancel_NothingToCancel() {
	free := s.store.AddSlot(at(10, 20, 50), slot.RoomShower)

	for name, id := range map[string]int64{"存在しない枠": 999, "予約なしの枠": free} {
		s.Run(name, func() {
			res, err := s.sut.Cancel(context.Background(), s.member, id)
			s.Require().NoError(err)
			s.False(res.Canceled)
			s.Nil(res.RefundID)
		})
	}
	s.Empty(s.store.History())
}

func (s *BookingCommandsTestSuite) TestCancel_ByOwnerWithRefund() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.payment.EXPECT().Charge(gomock.Any(), gomock.Any()).Return("ch_1", nil)
	reserved := s.reserveAs(s.nonMember, at(10, 20, 50))

	s.payment.EXPECT().Refund(gomock.Any(), "ch_1").Return("re_1", nil)
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n commands.Notification) error {
			s.Equal(commands.NotificationCancellation, n.Kind)
			s.True(n.Refunded)
			return nil
		})
	s.invalidator.EXPECT().Invalidate(gomock.Any()).Return(nil)

	res, err := s.sut.Cancel(context.Background(), s.nonMember, reserved.ID())

	s.Require().NoError(err)
	s.True(res.Canceled)
	s.Equal("re_1", *res.RefundID)

	stored := s.store.Slot(reserved.ID())
	s.True(stored.IsAvailable())
	s.Nil(stored.ChargeID())
	s.Nil(stored.Notes())

	entries := s.store.History()
	s.Require().Len(entries, 2)
	s.Equal(history.ActionCanceled, entries[1].Action())
	s.Equal("re_1", *entries[1].PaymentRef())
}

func (s *BookingCommandsTestSuite) TestCancel_RefundFailureStillCancels() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.payment.EXPECT().Charge(gomock.Any(), gomock.Any()).Return("ch_1", nil)
	reserved := s.reserveAs(s.nonMember, at(10, 20, 50))

	s.payment.EXPECT().Refund(gomock.Any(), "ch_1").Return("", errors.New("gateway timeout"))
	s.expectSideEffects()

	res, err := s.sut.Cancel(context.Background(), s.nonMember, reserved.ID())

	s.Require().NoError(err)
	s.True(res.Canceled)
	s.Nil(res.RefundID)
	s.True(s.store.Slot(reserved.ID()).IsAvailable())
	s.Nil(s.store.History()[1].PaymentRef())
}

func (s *BookingCommandsTestSuite) TestCancel_AbortedCommitAfterRefund() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.payment.EXPECT().Charge(gomock.Any(), gomock.Any()).Return("ch_1", nil)
	reserved := s.reserveAs(s.nonMember, at(10, 20, 50))

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	s.T().Cleanup(func() { slog.SetDefault(prev) })

	s.store.AbortNext = true
	s.payment.EXPECT().Refund(gomock.Any(), "ch_1").Return("re_1", nil).Times(1)

	res, err := s.sut.Cancel(context.Background(), s.nonMember, reserved.ID())

	s.Nil(res)
	s.True(errs.Is(err, commands.ErrTransientStorage))

	// the refund went out but the slot is still held against the refunded charge
	stored := s.store.Slot(reserved.ID())
	s.False(stored.IsAvailable())
	s.Require().NotNil(stored.ChargeID())
	s.Equal("ch_1", *stored.ChargeID())
	s.Len(s.store.History(), 1)

	s.Contains(logs.String(), `"level":"ERROR"`)
	s.Contains(logs.String(), "refund issued but cancellation was rolled back")
	s.Contains(logs.String(), `"refund_id":"re_1"`)
}

func (s *BookingCommandsTestSuite) TestCancel_OtherUsersSlot() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	reserved := s.reserveAs(s.member, at(10, 20, 50))

	s.Run("本人でも管理者でもない", func() {
		_, err := s.sut.Cancel(context.Background(), s.nonMember, reserved.ID())
		s.True(errs.Is(err, commands.ErrForbidden))
		s.False(s.store.Slot(reserved.ID()).IsAvailable())
	})

	s.Run("管理者は取消できて本人に通知", func() {
		s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n commands.Notification) error {
				s.Equal(s.member.ID(), n.UserID)
				s.False(n.Refunded)
				return nil
			})
		s.invalidator.EXPECT().Invalidate(gomock.Any()).Return(nil)

		res, err := s.sut.Cancel(context.Background(), s.admin, reserved.ID())
		s.Require().NoError(err)
		s.True(res.Canceled)
		s.Equal(s.admin.ID(), s.store.History()[1].UserID())
	})
}

func (s *BookingCommandsTestSuite) TestCancel_TooLateToday() {
	s.store.AddSlot(at(9, 21, 0), slot.RoomShower)
	reserved := s.reserveAs(s.member, at(9, 21, 0))
	s.clock.Set(at(9, 20, 40))

	_, err := s.sut.Cancel(context.Background(), s.member, reserved.ID())

	s.True(errs.Is(err, commands.ErrTooLateToday))
	s.False(s.store.Slot(reserved.ID()).IsAvailable())
}

// ================================================================================
// Edit
// ================================================================================

func (s *BookingCommandsTestSuite) TestEdit_Rejections() {
	free := s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	s.store.AddSlot(at(10, 21, 20), slot.RoomShower)
	s.payment.EXPECT().Charge(gomock.Any(), gomock.Any()).Return("ch_1", nil)
	reserved := s.reserveAs(s.nonMember, at(10, 21, 20))
	historyBefore := len(s.store.History())

	tests := []struct {
		name      string
		actor     *user.User
		slotID    int64
		params    commands.EditParams
		expectErr error
	}{
		{name: "管理者以外", actor: s.nonMember, slotID: reserved.ID(), params: commands.EditParams{Notes: ptr.Of("x")}, expectErr: commands.ErrForbidden},
		{name: "存在しない枠", actor: s.admin, slotID: 999, params: commands.EditParams{Notes: ptr.Of("x")}, expectErr: commands.ErrSlotNotFound},
		{name: "予約なしの枠", actor: s.admin, slotID: free, params: commands.EditParams{Notes: ptr.Of("x")}, expectErr: commands.ErrSlotNotFound},
		{name: "変更先に空きなし", actor: s.admin, slotID: reserved.ID(), params: commands.EditParams{Time: ptr.Of(at(10, 22, 0))}, expectErr: commands.ErrNoAvailability},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.sut.Edit(context.Background(), tt.actor, tt.slotID, tt.params)
			s.True(errs.Is(err, tt.expectErr), "got %v", err)

			original := s.store.Slot(reserved.ID())
			s.True(original.IsOwnedBy(s.nonMember.ID()))
			s.Nil(original.Notes())
			s.Len(s.store.History(), historyBefore)
		})
	}
}

func (s *BookingCommandsTestSuite) TestEdit_NotesOnly() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	reserved := s.reserveAs(s.member, at(10, 20, 50))

	edited, err := s.sut.Edit(context.Background(), s.admin, reserved.ID(), commands.EditParams{Notes: ptr.Of("needs assistance")})

	s.Require().NoError(err)
	s.Equal(reserved.ID(), edited.ID())
	s.Equal("needs assistance", *s.store.Slot(reserved.ID()).Notes())
	s.Len(s.store.History(), 1)
}

func (s *BookingCommandsTestSuite) TestEdit_MoveToNewTime() {
	s.store.AddSlot(at(10, 20, 50), slot.RoomShower)
	target := s.store.AddSlot(at(11, 21, 20), slot.RoomShower)
	s.payment.EXPECT().Charge(gomock.Any(), gomock.Any()).Return("ch_1", nil)

	s.expectSideEffects()
	original, err := s.sut.Reserve(context.Background(), s.nonMember, commands.ReserveParams{
		Time: at(10, 20, 50), RoomType: slot.RoomShower, Notes: ptr.Of("keep me"),
	})
	s.Require().NoError(err)

	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n commands.Notification) error {
			s.Equal(commands.NotificationConfirmation, n.Kind)
			s.Equal(s.nonMember.ID(), n.UserID)
			s.Equal(target, n.SlotID)
			return nil
		})
	s.invalidator.EXPECT().Invalidate(gomock.Any()).Return(nil)

	moved, err := s.sut.Edit(context.Background(), s.admin, original.ID(), commands.EditParams{Time: ptr.Of(at(11, 21, 20))})

	s.Require().NoError(err)
	s.Equal(target, moved.ID())

	newSlot := s.store.Slot(target)
	s.True(newSlot.IsOwnedBy(s.nonMember.ID()))
	s.Equal("ch_1", *newSlot.ChargeID())
	s.Equal("keep me", *newSlot.Notes())
	s.True(s.store.Slot(original.ID()).IsAvailable())

	entries := s.store.History()
	s.Require().Len(entries, 3)
	s.Equal(history.ActionMade, entries[1].Action())
	s.Equal(target, entries[1].SlotID())
	s.Equal("ch_1", *entries[1].PaymentRef())
	s.Equal(history.ActionCanceled, entries[2].Action())
	s.Equal(original.ID(), entries[2].SlotID())
	s.Equal(s.nonMember.ID(), entries[2].UserID())
}

func TestBookingCommands_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memstore.New()
	metrics := commandsmock.NewMockMetrics(ctrl)
	sut := commands.NewBookingCommands(store, commandsmock.NewMockPaymentGateway(ctrl), commands.NopNotifier{},
		commands.NopInvalidator{}, metrics, clock.NewMockClock(at(9, 15, 0)), la, fee)
	admin := builder.NewUserBuilder().WithRole("admin").MustBuildDomain()

	gomock.InOrder(
		metrics.EXPECT().BookingOutcome("reserve", "no_availability"),
		metrics.EXPECT().BookingOutcome("cancel", "noop"),
		metrics.EXPECT().BookingOutcome("edit", "not_found"),
	)

	_, _ = sut.Reserve(context.Background(), admin, commands.ReserveParams{Time: at(10, 20, 50), RoomType: slot.RoomShower})
	_, _ = sut.Cancel(context.Background(), admin, 1)
	_, _ = sut.Edit(context.Background(), admin, 1, commands.EditParams{})
}
