package api

import (
	"net/http"
	"time"

	reqdto "mikvah-scheduler/internal/handler/dto/request"
	resdto "mikvah-scheduler/internal/handler/dto/response"
	"mikvah-scheduler/internal/handler/httperr"
	"mikvah-scheduler/internal/handler/middleware"
	"mikvah-scheduler/internal/pkg/clock"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the attendant and administrator screens.
type AdminHandler struct {
	bookings commands.BookingCommands
	hours    commands.HoursCommands
	q        queries.ScheduleQueries
	clock    clock.Clock
	loc      *time.Location
}

func NewAdminHandler(
	bookings commands.BookingCommands,
	hours commands.HoursCommands,
	q queries.ScheduleQueries,
	clk clock.Clock,
	loc *time.Location,
) *AdminHandler {
	return &AdminHandler{bookings: bookings, hours: hours, q: q, clock: clk, loc: loc}
}

// @Summary Attendant daily list
// @Description Today's reserved appointments with first name, time, room type and notes
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.AttendantEntryResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /attendant/daily-list [get]
func (h *AdminHandler) AttendantList(c *gin.Context) {
	entries, err := h.q.AttendantList(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load daily list", nil)
		return
	}
	res, err := resdto.FromAttendantList(entries)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Admin daily list
// @Description Reserved appointments of a day with full contact details
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day as YYYY-MM-DD (default today)"
// @Success 200 {array} resdto.AdminEntryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/daily-list [get]
func (h *AdminHandler) AdminList(c *gin.Context) {
	var query reqdto.DailyListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	day, err := query.Day(clock.Today(h.clock, h.loc), h.loc)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}

	entries, err := h.q.AdminList(c.Request.Context(), day)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load daily list", nil)
		return
	}
	res, err := resdto.FromAdminList(entries)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Edit appointment
// @Description Move an appointment to another time of the same room type and/or replace its notes
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body reqdto.EditRequest true "Edit request"
// @Success 200 {object} resdto.AppointmentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/appointments/{id} [patch]
func (h *AdminHandler) Edit(c *gin.Context) {
	id, ok := slotIDParam(c)
	if !ok {
		return
	}
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httperr.Abort(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req reqdto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	edited, err := h.bookings.Edit(c.Request.Context(), u, id, req.ToParams())
	if err != nil {
		abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlot(edited, h.loc))
}

// @Summary Preview week hours
// @Description Compute the hours of the week starting on the given Sunday without storing them
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param sunday query string true "Sunday as YYYY-MM-DD"
// @Success 200 {object} resdto.WeekPreviewResponse
// @Failure 400 {object} map[string]string
// @Router /admin/hours/preview [get]
func (h *AdminHandler) PreviewWeek(c *gin.Context) {
	var query reqdto.WeekPreviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	sunday, err := query.Day(h.loc)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}
	if sunday.Weekday() != time.Sunday {
		httperr.Abort(c, http.StatusBadRequest, "Date must be a Sunday")
		return
	}
	c.JSON(http.StatusOK, resdto.FromWeekPlan(h.hours.ComputeWeek(sunday)))
}
