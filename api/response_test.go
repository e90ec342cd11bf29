package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.Validation("bad"), http.StatusBadRequest},
		{"missing trace", domain.NewError(domain.ErrMissingTraceID, "search again", nil), http.StatusBadRequest},
		{"missing txn", domain.ErrTransactionIDMissing, http.StatusBadRequest},
		{"payment failed", domain.NewError(domain.ErrPaymentFailed, "declined", nil), http.StatusBadRequest},
		{"not found", fmt.Errorf("load: %w", domain.ErrNotFound), http.StatusNotFound},
		{"already ticketed", domain.ErrAlreadyTicketed, http.StatusConflict},
		{"in progress", domain.ErrTicketInProgress, http.StatusConflict},
		{"lcc", domain.NewError(domain.ErrNotSupported, "lcc", nil), http.StatusNotImplemented},
		{"timeout under fetch", &domain.FetchFailedError{Variant: domain.FetchFareQuote, Err: domain.NewError(domain.ErrUpstreamTimeout, "", nil)}, http.StatusGatewayTimeout},
		{"fetch", &domain.FetchFailedError{Variant: domain.FetchSSR}, http.StatusBadGateway},
		{"search", domain.NewError(domain.ErrSearchFailed, "", nil), http.StatusBadGateway},
		{"booking", domain.NewError(domain.ErrBookingFailed, "", nil), http.StatusBadGateway},
		{"auth", domain.NewError(domain.ErrAuthentication, "", nil), http.StatusBadGateway},
		{"token rejected twice", domain.NewError(domain.ErrTokenExpired, "", nil), http.StatusBadGateway},
		{"upstream", domain.ErrUpstream, http.StatusBadGateway},
		{"unknown", errors.New("pg: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondError_HidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, logger.Discard(), errors.New("dial tcp 10.0.0.5:5432: refused"))

	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	assert.Equal(t, "Internal Server Error", env.StatusMessage)
	assert.Equal(t, "internal server error", env.Message)
	assert.False(t, env.Success)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}
