package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/provider"
	"github.com/Domenick1991/flightbroker/internal/service/booking"
	"github.com/Domenick1991/flightbroker/internal/service/fares"
	"github.com/Domenick1991/flightbroker/internal/service/payment"
	"github.com/Domenick1991/flightbroker/internal/service/search"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearchUseCase struct {
	mock.Mock
}

func (m *MockSearchUseCase) Search(ctx context.Context, query search.Query, clientIP string) (*search.Result, error) {
	args := m.Called(ctx, query, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

type MockFareUseCase struct {
	mock.Mock
}

func (m *MockFareUseCase) FareRule(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*provider.FareRuleResult, error) {
	args := m.Called(ctx, session, resultIndex, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.FareRuleResult), args.Error(1)
}

func (m *MockFareUseCase) FareQuote(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*provider.FareQuoteResult, error) {
	args := m.Called(ctx, session, resultIndex, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.FareQuoteResult), args.Error(1)
}

func (m *MockFareUseCase) SSR(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*fares.SSROptions, error) {
	args := m.Called(ctx, session, resultIndex, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fares.SSROptions), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Book(ctx context.Context, input booking.BookInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Details(ctx context.Context, pnr, clientIP string) (*booking.Details, error) {
	args := m.Called(ctx, pnr, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Details), args.Error(1)
}

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) Initiate(ctx context.Context, input payment.InitiateInput) (json.RawMessage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockPaymentUseCase) VerifyStatus(ctx context.Context, merchantTransactionID, clientIP string) (*payment.StatusResult, error) {
	args := m.Called(ctx, merchantTransactionID, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.StatusResult), args.Error(1)
}

type MockTicketUseCase struct {
	mock.Mock
}

func (m *MockTicketUseCase) Issue(ctx context.Context, merchantTransactionID, clientIP string) (*domain.Booking, error) {
	args := m.Called(ctx, merchantTransactionID, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockTicketUseCase) IssueNonLCCTicket(ctx context.Context, b *domain.Booking, clientIP string) (*domain.Booking, error) {
	args := m.Called(ctx, b, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockTicketUseCase) IssueLCCTicket(ctx context.Context, b *domain.Booking, clientIP string) (*domain.Booking, error) {
	args := m.Called(ctx, b, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type decodedEnvelope struct {
	StatusCode    int             `json:"statusCode"`
	StatusMessage string          `json:"statusMessage"`
	Message       string          `json:"message"`
	Data          json.RawMessage `json:"data"`
	Success       bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) decodedEnvelope {
	t.Helper()
	var env decodedEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
