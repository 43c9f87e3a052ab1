//go:build e2e

package appointment_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/domain/user"
	"mikvah-scheduler/internal/handler/dto/request"
	"mikvah-scheduler/internal/handler/dto/response"
	"mikvah-scheduler/tests/common/authtest"
	"mikvah-scheduler/tests/common/builder"
	"mikvah-scheduler/tests/common/dbtest"
	"mikvah-scheduler/tests/common/httptest"
	"mikvah-scheduler/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	appointmentsURL = "/api/appointments"
	availableURL    = "/api/appointments/available"
	hoursURL        = "/api/hours"
	attendantURL    = "/api/attendant/daily-list"
	adminListURL    = "/api/admin/daily-list"
)

type AppointmentSuite struct {
	e2e.SharedSuite
	loc *time.Location
}

func (s *AppointmentSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	loc, err := s.Config.Facility.Location()
	s.Require().NoError(err)
	s.loc = loc
}

func (s *AppointmentSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestAppointmentSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(AppointmentSuite))
}

// startIn returns 8:25 PM facility time, days from today.
func (s *AppointmentSuite) startIn(days int) time.Time {
	y, m, d := time.Now().In(s.loc).AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 20, 25, 0, 0, s.loc)
}

func (s *AppointmentSuite) createUser(t *testing.T, b *builder.UserBuilder) (*user.User, string) {
	t.Helper()
	u := b.MustBuildDomain()
	dbtest.CreateTestUser(t, s.DB, u)
	return u, authtest.NewJWTHelper(t, s.Config.JWT).TokenFor(t, u)
}

func (s *AppointmentSuite) reserve(t *testing.T, token string, startAt time.Time, roomType string) *response.AppointmentResponse {
	t.Helper()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, appointmentsURL,
		request.ReserveRequest{Time: startAt, RoomType: roomType}, token)
	var res response.AppointmentResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &res)
	return &res
}

// =============================================================================
// TestReserve
// =============================================================================

func (s *AppointmentSuite) TestReserve() {
	s.Run("会員は課金なしで予約できる", func() {
		t := s.T()
		member, token := s.createUser(t, builder.NewUserBuilder().WithEmail("member@example.com").AsMember())
		startAt := s.startIn(2)
		slotID := dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)

		res := s.reserve(t, token, startAt, "shower")

		require.Equal(t, slotID, res.ID)
		require.False(t, res.Paid)
		require.True(t, res.StartAt.Equal(startAt))
		require.Equal(t, int32(0), s.Gateway.Charges.Load())
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "appointment_slots", "id = $1 AND user_id = $2", slotID, member.ID()))
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "reservation_history", "slot_id = $1 AND action = 'MADE'", slotID))
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "notification_jobs", "topic = 'appointment_confirmation'"))
	})

	s.Run("非会員は課金される", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder().WithEmail("guest@example.com"))
		startAt := s.startIn(3)
		slotID := dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomBath)

		res := s.reserve(t, token, startAt, "BATH")

		require.True(t, res.Paid)
		require.Equal(t, int32(1), s.Gateway.Charges.Load())
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "reservation_history", "slot_id = $1 AND payment_ref IS NOT NULL", slotID))
	})

	s.Run("同時刻の枠は順に埋まる", func() {
		t := s.T()
		startAt := s.startIn(2)
		first := dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		second := dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		_, tokenA := s.createUser(t, builder.NewUserBuilder().WithEmail("a@example.com").AsMember())
		_, tokenB := s.createUser(t, builder.NewUserBuilder().WithEmail("b@example.com").AsMember())
		_, tokenC := s.createUser(t, builder.NewUserBuilder().WithEmail("c@example.com").AsMember())

		got := []int64{s.reserve(t, tokenA, startAt, "shower").ID, s.reserve(t, tokenB, startAt, "shower").ID}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, appointmentsURL,
			request.ReserveRequest{Time: startAt, RoomType: "shower"}, tokenC)

		require.ElementsMatch(t, []int64{first, second}, got)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "No availability")
	})

	s.Run("カード拒否は402で枠は空いたまま", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder().WithEmail("declined@example.com"))
		startAt := s.startIn(2)
		slotID := dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		s.Gateway.Decline.Store(true)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, appointmentsURL,
			request.ReserveRequest{Time: startAt, RoomType: "shower"}, token)

		httptest.AssertErrorResponse(t, w, http.StatusPaymentRequired, "Card declined")
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "appointment_slots", "id = $1 AND user_id IS NULL", slotID))
		require.Equal(t, 0, dbtest.CountRows(t, s.DB, "reservation_history", ""))
	})

	s.Run("未認証は401", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, appointmentsURL,
			request.ReserveRequest{Time: s.startIn(2), RoomType: "shower"}, "")

		httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "Access token required")
	})
}

// =============================================================================
// TestCancel
// =============================================================================

func (s *AppointmentSuite) TestCancel() {
	s.Run("有料予約のキャンセルは返金される", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder().WithEmail("owner@example.com"))
		startAt := s.startIn(2)
		dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		reserved := s.reserve(t, token, startAt, "shower")

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf("%s/%d", appointmentsURL, reserved.ID), nil, token)

		var res response.CancelResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		require.True(t, res.Canceled)
		require.NotNil(t, res.RefundID)
		require.Equal(t, int32(1), s.Gateway.Refunds.Load())
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "appointment_slots", "id = $1 AND user_id IS NULL AND charge_id IS NULL", reserved.ID))
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "reservation_history", "slot_id = $1 AND action = 'CANCELED'", reserved.ID))
	})

	s.Run("他人の予約は403", func() {
		t := s.T()
		_, ownerToken := s.createUser(t, builder.NewUserBuilder().WithEmail("owner@example.com").AsMember())
		_, otherToken := s.createUser(t, builder.NewUserBuilder().WithEmail("other@example.com").AsMember())
		startAt := s.startIn(2)
		dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		reserved := s.reserve(t, ownerToken, startAt, "shower")

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf("%s/%d", appointmentsURL, reserved.ID), nil, otherToken)

		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Forbidden")
	})

	s.Run("管理者は誰の予約でもキャンセルできる", func() {
		t := s.T()
		_, ownerToken := s.createUser(t, builder.NewUserBuilder().WithEmail("owner@example.com").AsMember())
		_, adminToken := s.createUser(t, builder.NewUserBuilder().WithEmail("admin@example.com").WithRole("admin"))
		startAt := s.startIn(2)
		dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		reserved := s.reserve(t, ownerToken, startAt, "shower")

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete, fmt.Sprintf("%s/%d", appointmentsURL, reserved.ID), nil, adminToken)

		var res response.CancelResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		require.True(t, res.Canceled)
		require.Nil(t, res.RefundID)
	})
}

// =============================================================================
// TestSchedule
// =============================================================================

func (s *AppointmentSuite) TestAvailable() {
	s.Run("予約済みの枠は表示されない", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder().AsMember())
		shower := s.startIn(2)
		bath := s.startIn(3)
		dbtest.CreateTestSlot(t, s.DB, shower, slot.RoomShower)
		dbtest.CreateTestSlot(t, s.DB, bath, slot.RoomBath)
		dbtest.CreateTestSlot(t, s.DB, s.startIn(-1), slot.RoomShower)
		dbtest.CreateTestSlot(t, s.DB, s.startIn(12), slot.RoomShower)
		s.reserve(t, token, shower, "shower")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, availableURL, nil, "")

		var got []response.AvailableTimeResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		want := []response.AvailableTimeResponse{{StartAt: bath, RoomType: "BATH"}}
		if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(0)); diff != "" {
			t.Errorf("available mismatch (-want +got):\n%s", diff)
		}
	})
	s.Run("予約するとキャッシュが破棄される", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder().AsMember())
		startAt := s.startIn(2)
		dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)

		var before []response.AvailableTimeResponse
		httptest.AssertSuccessResponse(t, httptest.PerformRequest(t, s.Router, http.MethodGet, availableURL, nil, ""), http.StatusOK, &before)
		require.Len(t, before, 1)
		require.True(t, s.Redis.Exists("mikvah:available-times"))

		s.reserve(t, token, startAt, "shower")
		require.False(t, s.Redis.Exists("mikvah:available-times"))

		var after []response.AvailableTimeResponse
		httptest.AssertSuccessResponse(t, httptest.PerformRequest(t, s.Router, http.MethodGet, availableURL, nil, ""), http.StatusOK, &after)
		require.Empty(t, after)
	})
}

func (s *AppointmentSuite) TestMetrics() {
	s.Run("予約の結果が記録される", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder().AsMember())
		startAt := s.startIn(2)
		dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		s.reserve(t, token, startAt, "shower")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, s.Config.Metrics.Path, nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `mikvah_bookings_total{operation="reserve",outcome="success"}`)
	})
}

func (s *AppointmentSuite) TestWeekHours() {
	s.Run("今週の営業時間", func() {
		t := s.T()
		today := time.Now().In(s.loc)
		dbtest.CreateTestHours(t, s.DB, today, "20:25", "23:00")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, hoursURL, nil, "")

		var got []response.DayHoursResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Len(t, got, 1)
		require.Equal(t, today.Format(time.DateOnly), got[0].Date)
		require.Equal(t, "20:25", *got[0].Opening)
		require.Equal(t, "23:00", *got[0].Closing)
	})
}

func (s *AppointmentSuite) TestDailyLists() {
	s.Run("受付係は当日の一覧を見られる", func() {
		t := s.T()
		member, token := s.createUser(t, builder.NewUserBuilder().WithEmail("leah@example.com").AsMember())
		_, operatorToken := s.createUser(t, builder.NewUserBuilder().WithEmail("op@example.com").WithRole("operator"))
		startAt := time.Now().In(s.loc).Add(time.Hour).Truncate(time.Minute)
		if startAt.Day() != time.Now().In(s.loc).Day() {
			t.Skip("too close to midnight for a same-day appointment")
		}
		dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomShower)
		s.reserve(t, token, startAt, "shower")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, attendantURL, nil, operatorToken)

		var got []response.AttendantEntryResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Len(t, got, 1)
		require.Equal(t, member.FirstName(), got[0].FirstName)
		require.Equal(t, "shower", got[0].RoomType)
		require.Equal(t, startAt.Format("3:04 PM"), got[0].Time)
	})

	s.Run("閲覧者は受付一覧を見られない", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder())

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, attendantURL, nil, token)

		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Insufficient permissions")
	})

	s.Run("管理者は指定日の一覧を見られる", func() {
		t := s.T()
		member, token := s.createUser(t, builder.NewUserBuilder().WithEmail("leah@example.com").AsMember())
		_, adminToken := s.createUser(t, builder.NewUserBuilder().WithEmail("admin@example.com").WithRole("admin"))
		startAt := s.startIn(4)
		dbtest.CreateTestSlot(t, s.DB, startAt, slot.RoomBath)
		reserved := s.reserve(t, token, startAt, "bath")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			adminListURL+"?date="+startAt.Format(time.DateOnly), nil, adminToken)

		var got []response.AdminEntryResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Len(t, got, 1)
		require.Equal(t, reserved.ID, got[0].SlotID)
		require.Equal(t, member.Email().Value(), got[0].Email)
		require.Equal(t, member.Phone(), got[0].Phone)
		require.Equal(t, "8:25 PM", got[0].Time)
	})

	s.Run("管理者は予約を移動できる", func() {
		t := s.T()
		_, token := s.createUser(t, builder.NewUserBuilder().WithEmail("leah@example.com").AsMember())
		_, adminToken := s.createUser(t, builder.NewUserBuilder().WithEmail("admin@example.com").WithRole("admin"))
		from := s.startIn(4)
		to := from.Add(time.Hour)
		dbtest.CreateTestSlot(t, s.DB, from, slot.RoomShower)
		target := dbtest.CreateTestSlot(t, s.DB, to, slot.RoomShower)
		reserved := s.reserve(t, token, from, "shower")

		w := httptest.PerformRequest(t, s.Router, http.MethodPatch,
			fmt.Sprintf("/api/admin/appointments/%d", reserved.ID), request.EditRequest{Time: &to}, adminToken)

		var res response.AppointmentResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		require.Equal(t, target, res.ID)
		require.Equal(t, 1, dbtest.CountRows(t, s.DB, "appointment_slots", "id = $1 AND user_id IS NULL", reserved.ID))
	})
}
