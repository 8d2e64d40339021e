package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/middleware"
	"stayhub/internal/service"
	"stayhub/internal/session"
	"stayhub/pkg/response"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the envelope for err. Conflicts carry the blocking
// reservations; internal errors hide their message.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(status, response.ErrorWithData(status, err.Error(), gin.H{"conflicts": conflict.Conflicts}))
		return
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, response.Error(status, "Internal server error"))
		return
	}
	c.JSON(status, response.Error(status, err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// requireSession returns the caller's session or answers 401.
func requireSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return nil, false
	}
	return sess, true
}
