package api

import (
	"net/http"
	"strconv"
	"time"

	reqdto "mikvah-scheduler/internal/handler/dto/request"
	resdto "mikvah-scheduler/internal/handler/dto/response"
	"mikvah-scheduler/internal/handler/httperr"
	"mikvah-scheduler/internal/handler/middleware"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/commands"
	"mikvah-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	bookings commands.BookingCommands
	q        queries.ScheduleQueries
	loc      *time.Location
}

func NewAppointmentHandler(bookings commands.BookingCommands, q queries.ScheduleQueries, loc *time.Location) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings, q: q, loc: loc}
}

// @Summary Current week hours
// @Description Opening and closing times of the current Sunday-anchored week
// @Tags hours
// @Produce json
// @Success 200 {array} resdto.DayHoursResponse
// @Failure 500 {object} map[string]string
// @Router /hours [get]
func (h *AppointmentHandler) WeekHours(c *gin.Context) {
	week, err := h.q.CurrentWeekHours(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load hours", nil)
		return
	}
	res, err := resdto.FromDayHours(week)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Available appointment times
// @Description Distinct open start times per room type for the coming days
// @Tags appointments
// @Produce json
// @Success 200 {array} resdto.AvailableTimeResponse
// @Failure 500 {object} map[string]string
// @Router /appointments/available [get]
func (h *AppointmentHandler) Available(c *gin.Context) {
	times, err := h.q.AvailableTimes(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load availability", nil)
		return
	}
	res, err := resdto.FromAvailableTimes(times)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Reserve appointment
// @Description Reserve the first free slot at the given time and room type. Non-members are charged the flat fee.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ReserveRequest true "Reserve request"
// @Success 201 {object} resdto.AppointmentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 402 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /appointments [post]
func (h *AppointmentHandler) Reserve(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httperr.Abort(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req reqdto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	params, err := req.ToParams()
	if err != nil {
		abortWithBookingError(c, err)
		return
	}

	reserved, err := h.bookings.Reserve(c.Request.Context(), u, params)
	if err != nil {
		abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromSlot(reserved, h.loc))
}

// @Summary Cancel appointment
// @Description Release an appointment. Owners cancel their own, admins any. Paid appointments are refunded when possible.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} resdto.CancelResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := slotIDParam(c)
	if !ok {
		return
	}
	u, ok := middleware.CurrentUser(c)
	if !ok {
		httperr.Abort(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.bookings.Cancel(c.Request.Context(), u, id)
	if err != nil {
		abortWithBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCancelResult(result))
}

func slotIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err == nil && id <= 0 {
		err = errs.Newf("non-positive id %d", id)
	}
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return 0, false
	}
	return id, true
}
