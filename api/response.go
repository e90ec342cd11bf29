package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// envelope is the shape of every response body.
type envelope struct {
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Message       string `json:"message"`
	Data          any    `json:"data"`
	Success       bool   `json:"success"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		StatusCode:    status,
		StatusMessage: http.StatusText(status),
		Message:       message,
		Data:          data,
		Success:       status < http.StatusBadRequest,
	})
}

// respondError writes the caller-safe message for err. Causes are logged,
// never returned.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	message := domain.PublicMessage(err)
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	entry := log.WithError(err).WithFields(logrus.Fields{
		"status":     status,
		"request_id": c.GetString(requestIDKey),
		"path":       c.FullPath(),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}

	respond(c, status, message, nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrMissingTraceID),
		errors.Is(err, domain.ErrTransactionIDMissing),
		errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyTicketed),
		errors.Is(err, domain.ErrTicketInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrFetchFailed),
		errors.Is(err, domain.ErrSearchFailed),
		errors.Is(err, domain.ErrBookingFailed),
		errors.Is(err, domain.ErrAuthentication),
		errors.Is(err, domain.ErrTokenExpired):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
