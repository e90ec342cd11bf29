package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/kafka"
	"github.com/Domenick1991/flightbroker/internal/logger"
	"github.com/Domenick1991/flightbroker/internal/phonepe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) TransitionPaymentStatus(ctx context.Context, bookingID int64, from []domain.PaymentStatus, to domain.PaymentStatus) (*domain.Booking, bool, error) {
	args := m.Called(ctx, bookingID, from, to)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Bool(1), args.Error(2)
}

func (m *MockBookingRepository) MarkTicketed(ctx context.Context, bookingID int64, itinerary domain.FlightItinerary) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, itinerary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Append(ctx context.Context, payment *domain.PaymentResponse) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByBookingID(ctx context.Context, bookingID int64) ([]domain.PaymentResponse, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentResponse), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) MerchantID() string {
	return m.Called().String(0)
}

func (m *MockGateway) Pay(ctx context.Context, req phonepe.PayRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockGateway) Status(ctx context.Context, merchantTransactionID string) (*phonepe.StatusResponse, error) {
	args := m.Called(ctx, merchantTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phonepe.StatusResponse), args.Error(1)
}

type MockTicketIssuer struct {
	mock.Mock
}

func (m *MockTicketIssuer) Issue(ctx context.Context, merchantTransactionID, clientIP string) (*domain.Booking, error) {
	args := m.Called(ctx, merchantTransactionID, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type fixture struct {
	bookings *MockBookingRepository
	payments *MockPaymentRepository
	gateway  *MockGateway
	issuer   *MockTicketIssuer
	producer *MockProducer
	service  *PaymentService
}

func newFixture() *fixture {
	f := &fixture{
		bookings: &MockBookingRepository{},
		payments: &MockPaymentRepository{},
		gateway:  &MockGateway{},
		issuer:   &MockTicketIssuer{},
		producer: &MockProducer{},
	}
	f.service = &PaymentService{
		bookings:     f.bookings,
		payments:     f.payments,
		gateway:      f.gateway,
		issuer:       f.issuer,
		producer:     f.producer,
		paymentTopic: "payment_events",
		cfg: config.PaymentConfig{
			Amount:      100,
			RedirectURL: "https://app/redirect",
			CallbackURL: "https://api/callback",
		},
		log: logger.Discard(),
	}
	return f
}

func storedBooking() *domain.Booking {
	return &domain.Booking{
		UserID:        "user-1",
		PNR:           "ABC123",
		BookingID:     55,
		ResultIndex:   "OB1",
		PaymentStatus: domain.PaymentStatusInitiated,
	}
}

var initiatedOnly = []domain.PaymentStatus{domain.PaymentStatusInitiated}

// bookingStore keeps one booking in memory and applies payment transitions
// the way the Postgres repository does.
type bookingStore struct {
	*MockBookingRepository
	booking     domain.Booking
	transitions []domain.PaymentStatus
}

func (b *bookingStore) GetByBookingID(_ context.Context, bookingID int64) (*domain.Booking, error) {
	if bookingID != b.booking.BookingID {
		return nil, domain.ErrNotFound
	}
	out := b.booking
	return &out, nil
}

func (b *bookingStore) TransitionPaymentStatus(_ context.Context, bookingID int64, from []domain.PaymentStatus, to domain.PaymentStatus) (*domain.Booking, bool, error) {
	if bookingID != b.booking.BookingID {
		return nil, false, nil
	}
	for _, st := range from {
		if b.booking.PaymentStatus == st {
			b.booking.PaymentStatus = to
			b.transitions = append(b.transitions, to)
			out := b.booking
			return &out, true, nil
		}
	}
	return nil, false, nil
}

func successStatus() *phonepe.StatusResponse {
	return &phonepe.StatusResponse{
		Success: true,
		Code:    domain.PaymentCodeSuccess,
		Message: "Your payment is successful.",
		Data:    domain.PaymentData{MerchantTransactionID: "55", TransactionID: "T1", Amount: 100, State: "COMPLETED"},
	}
}

func TestPaymentService_Initiate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reply := json.RawMessage(`{"success":true,"data":{"instrumentResponse":{"redirectInfo":{"url":"https://pay"}}}}`)

	f.bookings.On("GetByPNR", ctx, "ABC123").Return(storedBooking(), nil).Once()
	f.gateway.On("MerchantID").Return("MERCHANT")
	f.gateway.On("Pay", ctx, phonepe.PayRequest{
		MerchantID:            "MERCHANT",
		MerchantTransactionID: "55",
		MerchantUserID:        "user-1",
		Amount:                100,
		RedirectURL:           "https://app/redirect",
		CallbackURL:           "https://api/callback",
		PaymentInstrument:     phonepe.PaymentInstrument{Type: "PAY_PAGE"},
	}).Return(reply, nil).Once()

	raw, err := f.service.Initiate(ctx, InitiateInput{PNR: "ABC123", ResultIndex: "OB1", UserID: "user-1"})
	require.NoError(t, err)
	assert.JSONEq(t, string(reply), string(raw))
	f.gateway.AssertExpectations(t)
}

func TestPaymentService_Initiate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   InitiateInput
		booking *domain.Booking
		lookErr error
		expErr  error
	}{
		{name: "missing pnr", input: InitiateInput{UserID: "user-1"}, expErr: domain.ErrValidation},
		{name: "missing user", input: InitiateInput{PNR: "ABC123"}, expErr: domain.ErrValidation},
		{name: "unknown pnr", input: InitiateInput{PNR: "ABC123", UserID: "user-1"}, lookErr: domain.ErrNotFound, expErr: domain.ErrNotFound},
		{name: "other user", input: InitiateInput{PNR: "ABC123", UserID: "user-2"}, booking: storedBooking(), expErr: domain.ErrNotFound},
		{name: "result index mismatch", input: InitiateInput{PNR: "ABC123", ResultIndex: "OB9", UserID: "user-1"}, booking: storedBooking(), expErr: domain.ErrValidation},
		{
			name:  "already paid",
			input: InitiateInput{PNR: "ABC123", UserID: "user-1"},
			booking: func() *domain.Booking {
				b := storedBooking()
				b.PaymentStatus = domain.PaymentStatusSuccess
				return b
			}(),
			expErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.booking != nil {
				f.bookings.On("GetByPNR", mock.Anything, "ABC123").Return(tt.booking, nil).Once()
			} else if tt.lookErr != nil {
				f.bookings.On("GetByPNR", mock.Anything, "ABC123").Return(nil, tt.lookErr).Once()
			}

			_, err := f.service.Initiate(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.expErr)
			f.gateway.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_VerifyStatus_MissingTransactionID(t *testing.T) {
	f := newFixture()

	_, err := f.service.VerifyStatus(context.Background(), "  ", "ip")
	assert.ErrorIs(t, err, domain.ErrTransactionIDMissing)
	f.gateway.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
}

func TestPaymentService_VerifyStatus_SuccessIssuesExactlyOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	paid := storedBooking()
	paid.PaymentStatus = domain.PaymentStatusSuccess
	ticketed := storedBooking()
	ticketed.PaymentStatus = domain.PaymentStatusSuccess

	f.bookings.On("GetByBookingID", ctx, int64(55)).Return(storedBooking(), nil).Twice()
	f.bookings.On("GetByBookingID", ctx, int64(55)).Return(paid, nil).Once()
	f.gateway.On("Status", ctx, "55").Return(successStatus(), nil).Twice()
	f.payments.On("Append", ctx, mock.MatchedBy(func(p *domain.PaymentResponse) bool {
		return p.BookingID == 55 && p.UserID == "user-1" && p.Code == domain.PaymentCodeSuccess && p.Data.TransactionID == "T1"
	})).Return(nil).Twice()
	f.producer.On("Publish", ctx, "payment_events", "55", mock.MatchedBy(func(e kafka.PaymentEvent) bool {
		return e.Type == kafka.EventPaymentVerified
	})).Return(nil).Twice()
	f.bookings.On("TransitionPaymentStatus", ctx, int64(55), initiatedOnly, domain.PaymentStatusSuccess).Return(paid, true, nil).Once()
	f.bookings.On("TransitionPaymentStatus", ctx, int64(55), initiatedOnly, domain.PaymentStatusSuccess).Return(nil, false, nil).Once()
	f.issuer.On("Issue", ctx, "55", "ip").Return(ticketed, nil).Once()

	first, err := f.service.VerifyStatus(ctx, "55", "ip")
	require.NoError(t, err)
	assert.True(t, first.Ticketed)
	assert.Equal(t, domain.PaymentStatusSuccess, first.Booking.PaymentStatus)

	second, err := f.service.VerifyStatus(ctx, "55", "ip")
	require.NoError(t, err)
	assert.False(t, second.Ticketed)
	assert.Equal(t, domain.PaymentStatusSuccess, second.Booking.PaymentStatus)

	f.issuer.AssertNumberOfCalls(t, "Issue", 1)
	f.payments.AssertNumberOfCalls(t, "Append", 2)
}

func TestPaymentService_VerifyStatus_FailureRecordsAndDoesNotIssue(t *testing.T) {
	tests := []struct {
		name       string
		status     *phonepe.StatusResponse
		expMsg     string
		markFailed bool
	}{
		{
			name:       "declined",
			status:     &phonepe.StatusResponse{Success: false, Code: "PAYMENT_ERROR", Message: "Payment Failed"},
			expMsg:     "Payment Failed",
			markFailed: true,
		},
		{
			name:   "pending stays initiated",
			status: &phonepe.StatusResponse{Success: true, Code: domain.PaymentCodePending, Message: "Your payment is in pending state."},
			expMsg: "Your payment is in pending state.",
		},
		{
			name:       "declined by bank",
			status:     &phonepe.StatusResponse{Success: false, Code: domain.PaymentCodeDeclined, Message: "Payment declined"},
			expMsg:     "Payment declined",
			markFailed: true,
		},
		{
			name:       "timed out",
			status:     &phonepe.StatusResponse{Success: false, Code: domain.PaymentCodeTimedOut},
			expMsg:     "payment was not successful",
			markFailed: true,
		},
		{
			name:   "success code without success flag",
			status: &phonepe.StatusResponse{Success: false, Code: domain.PaymentCodeSuccess},
			expMsg: "payment was not successful",
		},
		{
			name:   "bad request",
			status: &phonepe.StatusResponse{Success: true, Code: "BAD_REQUEST", Message: "checksum mismatch"},
			expMsg: "checksum mismatch",
		},
		{
			name:   "transaction not found",
			status: &phonepe.StatusResponse{Success: false, Code: "TRANSACTION_NOT_FOUND", Message: "No transaction found"},
			expMsg: "No transaction found",
		},
		{
			name:   "authorization failed",
			status: &phonepe.StatusResponse{Success: false, Code: "AUTHORIZATION_FAILED"},
			expMsg: "payment was not successful",
		},
		{
			name:   "gateway internal error",
			status: &phonepe.StatusResponse{Success: false, Code: "INTERNAL_SERVER_ERROR"},
			expMsg: "payment was not successful",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()

			f.bookings.On("GetByBookingID", ctx, int64(55)).Return(storedBooking(), nil).Once()
			f.gateway.On("Status", ctx, "55").Return(tt.status, nil).Once()
			f.payments.On("Append", ctx, mock.MatchedBy(func(p *domain.PaymentResponse) bool {
				return p.BookingID == 55 && p.Code == tt.status.Code
			})).Return(nil).Once()
			f.producer.On("Publish", ctx, "payment_events", "55", mock.Anything).Return(nil).Once()
			if tt.markFailed {
				f.bookings.On("TransitionPaymentStatus", ctx, int64(55), initiatedOnly, domain.PaymentStatusFailed).Return(storedBooking(), true, nil).Once()
			}

			res, err := f.service.VerifyStatus(ctx, "55", "ip")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, domain.ErrPaymentFailed)
			assert.Equal(t, tt.expMsg, domain.PublicMessage(err))

			f.payments.AssertExpectations(t)
			f.bookings.AssertExpectations(t)
			f.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
			if !tt.markFailed {
				f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPaymentService_VerifyStatus_UnknownTransaction(t *testing.T) {
	t.Run("non numeric id", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()
		f.gateway.On("Status", ctx, "abc").Return(&phonepe.StatusResponse{Code: "PAYMENT_ERROR", Message: "Payment Failed"}, nil).Once()

		_, err := f.service.VerifyStatus(ctx, "abc", "ip")
		assert.ErrorIs(t, err, domain.ErrPaymentFailed)
		f.payments.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("success without booking", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()
		f.bookings.On("GetByBookingID", ctx, int64(77)).Return(nil, domain.ErrNotFound).Once()
		f.gateway.On("Status", ctx, "77").Return(successStatus(), nil).Once()

		_, err := f.service.VerifyStatus(ctx, "77", "ip")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.payments.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		f.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentService_VerifyStatus_GatewayUnavailable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bookings.On("GetByBookingID", ctx, int64(55)).Return(storedBooking(), nil).Once()
	f.gateway.On("Status", ctx, "55").Return(nil, domain.NewError(domain.ErrUpstreamTimeout, "payment gateway status timed out", nil)).Once()

	_, err := f.service.VerifyStatus(ctx, "55", "ip")
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
	f.payments.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestPaymentService_VerifyStatus_IssueFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	paid := storedBooking()
	paid.PaymentStatus = domain.PaymentStatusSuccess

	f.bookings.On("GetByBookingID", ctx, int64(55)).Return(storedBooking(), nil).Once()
	f.gateway.On("Status", ctx, "55").Return(successStatus(), nil).Once()
	f.payments.On("Append", ctx, mock.Anything).Return(nil).Once()
	f.producer.On("Publish", ctx, "payment_events", "55", mock.Anything).Return(errors.New("broker down")).Once()
	f.bookings.On("TransitionPaymentStatus", ctx, int64(55), initiatedOnly, domain.PaymentStatusSuccess).Return(paid, true, nil).Once()
	f.issuer.On("Issue", ctx, "55", "ip").Return(nil, domain.NewError(domain.ErrUpstream, "Ticket failed with status 500", nil)).Once()

	_, err := f.service.VerifyStatus(ctx, "55", "ip")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "ticket issuance failed")
}

func TestPaymentService_VerifyStatus_AppendFailureStops(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByBookingID", ctx, int64(55)).Return(storedBooking(), nil).Once()
	f.gateway.On("Status", ctx, "55").Return(successStatus(), nil).Once()
	f.payments.On("Append", ctx, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := f.service.VerifyStatus(ctx, "55", "ip")
	require.Error(t, err)
	f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_VerifyStatus_LookupErrorThenSuccessTransitionsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := &bookingStore{MockBookingRepository: f.bookings, booking: *storedBooking()}
	f.service.bookings = store

	paid := storedBooking()
	paid.PaymentStatus = domain.PaymentStatusSuccess

	f.gateway.On("Status", ctx, "55").Return(&phonepe.StatusResponse{Success: false, Code: "TRANSACTION_NOT_FOUND"}, nil).Once()
	f.gateway.On("Status", ctx, "55").Return(successStatus(), nil).Once()
	f.payments.On("Append", ctx, mock.Anything).Return(nil).Twice()
	f.producer.On("Publish", ctx, "payment_events", "55", mock.Anything).Return(nil).Twice()
	f.issuer.On("Issue", ctx, "55", "ip").Return(paid, nil).Once()

	_, err := f.service.VerifyStatus(ctx, "55", "ip")
	require.ErrorIs(t, err, domain.ErrPaymentFailed)
	assert.Equal(t, domain.PaymentStatusInitiated, store.booking.PaymentStatus)

	res, err := f.service.VerifyStatus(ctx, "55", "ip")
	require.NoError(t, err)
	assert.True(t, res.Ticketed)
	assert.Equal(t, []domain.PaymentStatus{domain.PaymentStatusSuccess}, store.transitions)
	f.issuer.AssertNumberOfCalls(t, "Issue", 1)
}

func TestPaymentService_VerifyStatus_DeclinedBookingStaysFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	store := &bookingStore{MockBookingRepository: f.bookings, booking: *storedBooking()}
	f.service.bookings = store

	f.gateway.On("Status", ctx, "55").Return(&phonepe.StatusResponse{Success: false, Code: domain.PaymentCodeDeclined}, nil).Once()
	f.gateway.On("Status", ctx, "55").Return(successStatus(), nil).Once()
	f.payments.On("Append", ctx, mock.Anything).Return(nil).Twice()
	f.producer.On("Publish", ctx, "payment_events", "55", mock.Anything).Return(nil).Twice()

	_, err := f.service.VerifyStatus(ctx, "55", "ip")
	require.ErrorIs(t, err, domain.ErrPaymentFailed)

	_, err = f.service.VerifyStatus(ctx, "55", "ip")
	require.ErrorIs(t, err, domain.ErrPaymentFailed)
	assert.Equal(t, "payment for this booking was already declined", domain.PublicMessage(err))

	assert.Equal(t, domain.PaymentStatusFailed, store.booking.PaymentStatus)
	assert.Equal(t, []domain.PaymentStatus{domain.PaymentStatusFailed}, store.transitions)
	f.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}
