package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mikvah-scheduler/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last public error when a handler recorded one
// without writing a body. Anything else becomes a bare 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		public := c.Errors.ByType(gin.ErrorTypePublic)
		if last := public.Last(); last != nil {
			if resp, ok := last.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}

		slog.ErrorContext(c.Request.Context(), "unhandled request error",
			"request_id", GetRequestID(c),
			"errors", c.Errors.String())
		c.JSON(http.StatusInternalServerError, httperr.NewResponse(http.StatusInternalServerError, "Internal server error", nil))
	}
}

func CustomRecovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "recovered from panic",
			"error", recovered,
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
			"stack", string(debug.Stack()))

		c.AbortWithStatusJSON(http.StatusInternalServerError,
			httperr.NewResponse(http.StatusInternalServerError, "Internal server error", nil))
	})
}
