package api

import (
	"errors"
	"log/slog"
	"net/http"

	"mikvah-scheduler/internal/domain/slot"
	"mikvah-scheduler/internal/handler/httperr"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// abortWithBookingError maps booking failures onto HTTP statuses. The
// declined card check comes first since that error also carries the payment mark.
func abortWithBookingError(c *gin.Context, err error) {
	var declined *commands.CardDeclinedError
	switch {
	case errors.As(err, &declined):
		httperr.AbortWithError(c, http.StatusPaymentRequired, err, "Card declined", gin.H{"reason": declined.Reason})
	case errs.Is(err, commands.ErrPaymentFailed):
		httperr.AbortWithError(c, http.StatusPaymentRequired, err, "Payment failed", nil)
	case errs.Is(err, commands.ErrNoAvailability):
		httperr.AbortWithError(c, http.StatusConflict, err, "No availability at the requested time", nil)
	case errs.Is(err, commands.ErrTooLateToday):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Too late to book for today", nil)
	case errs.Is(err, commands.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Forbidden", nil)
	case errs.Is(err, commands.ErrSlotNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Appointment not found", nil)
	case errs.Is(err, commands.ErrTransientStorage):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Temporarily unavailable, please retry", nil)
	case errs.Is(err, commands.ErrInvalidRequest), errs.Is(err, slot.ErrInvalidRoomType):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", gin.H{"reason": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "unexpected booking failure",
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, 12))
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
