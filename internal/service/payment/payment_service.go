package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/kafka"
	"github.com/Domenick1991/flightbroker/internal/phonepe"
	"github.com/Domenick1991/flightbroker/internal/repository"
	"github.com/sirupsen/logrus"
)

type PaymentUseCase interface {
	Initiate(ctx context.Context, input InitiateInput) (json.RawMessage, error)
	VerifyStatus(ctx context.Context, merchantTransactionID, clientIP string) (*StatusResult, error)
}

type Gateway interface {
	MerchantID() string
	Pay(ctx context.Context, req phonepe.PayRequest) (json.RawMessage, error)
	Status(ctx context.Context, merchantTransactionID string) (*phonepe.StatusResponse, error)
}

type TicketIssuer interface {
	Issue(ctx context.Context, merchantTransactionID, clientIP string) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type InitiateInput struct {
	PNR         string `json:"PNR"`
	ResultIndex string `json:"ResultIndex"`
	UserID      string `json:"-"`
}

// StatusResult describes one reconciled status check. Ticketed is true only
// for the check that moved the booking to Success and issued the ticket.
type StatusResult struct {
	Payment  *domain.PaymentResponse `json:"payment"`
	Booking  *domain.Booking         `json:"booking"`
	Ticketed bool                    `json:"ticketed"`
}

type PaymentService struct {
	bookings     repository.BookingRepository
	payments     repository.PaymentRepository
	gateway      Gateway
	issuer       TicketIssuer
	producer     Producer
	paymentTopic string
	cfg          config.PaymentConfig
	log          logrus.FieldLogger
}

type PaymentServiceOption func(*PaymentService)

func WithProducer(producer Producer, topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.producer = producer
		s.paymentTopic = topic
	}
}

func NewPaymentService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	gateway Gateway,
	issuer TicketIssuer,
	cfg config.PaymentConfig,
	log logrus.FieldLogger,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		bookings: bookings,
		payments: payments,
		gateway:  gateway,
		issuer:   issuer,
		cfg:      cfg,
		log:      log.WithField("component", "payment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initiate starts a pay-page transaction for the booking. The booking id is
// the merchant transaction id, which is how status checks find it again.
func (s *PaymentService) Initiate(ctx context.Context, input InitiateInput) (json.RawMessage, error) {
	pnr := strings.TrimSpace(input.PNR)
	if pnr == "" {
		return nil, domain.Validation("PNR required")
	}
	if input.UserID == "" {
		return nil, domain.Validation("user id required")
	}

	booking, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if booking.UserID != input.UserID {
		return nil, domain.NewError(domain.ErrNotFound, "booking not found", nil)
	}
	if input.ResultIndex != "" && input.ResultIndex != booking.ResultIndex {
		return nil, domain.Validation("ResultIndex does not match the booking")
	}
	if booking.PaymentStatus == domain.PaymentStatusSuccess {
		return nil, domain.Validation("booking is already paid")
	}

	txnID := strconv.FormatInt(booking.BookingID, 10)
	raw, err := s.gateway.Pay(ctx, phonepe.PayRequest{
		MerchantID:            s.gateway.MerchantID(),
		MerchantTransactionID: txnID,
		MerchantUserID:        input.UserID,
		Amount:                s.cfg.Amount,
		RedirectURL:           s.cfg.RedirectURL,
		CallbackURL:           s.cfg.CallbackURL,
		PaymentInstrument:     phonepe.PaymentInstrument{Type: phonepe.InstrumentPayPage},
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"pnr": pnr, "booking_id": booking.BookingID, "amount": s.cfg.Amount}).Info("payment initiated")
	return raw, nil
}

// VerifyStatus asks the gateway for the transaction state, records the
// answer and, on success, issues the ticket. Only the check that wins the
// transition to Success issues; repeated checks return the stored booking.
func (s *PaymentService) VerifyStatus(ctx context.Context, merchantTransactionID, clientIP string) (*StatusResult, error) {
	txnID := strings.TrimSpace(merchantTransactionID)
	if txnID == "" {
		return nil, domain.NewError(domain.ErrTransactionIDMissing, "", nil)
	}

	booking, err := s.lookup(ctx, txnID)
	if err != nil {
		return nil, err
	}

	status, err := s.gateway.Status(ctx, txnID)
	if err != nil {
		return nil, err
	}

	payment := &domain.PaymentResponse{
		Success: status.Success,
		Code:    status.Code,
		Message: status.Message,
		Data:    status.Data,
	}
	log := s.log.WithFields(logrus.Fields{"merchant_transaction_id": txnID, "code": status.Code})

	if booking != nil {
		payment.UserID = booking.UserID
		payment.BookingID = booking.BookingID
		if err := s.payments.Append(ctx, payment); err != nil {
			log.WithError(err).Error("payment response not recorded")
			return nil, fmt.Errorf("record payment response for %s: %w", txnID, err)
		}
		s.publish(ctx, payment)
	}

	if !payment.Succeeded() {
		if booking != nil && payment.Declined() {
			if _, _, err := s.bookings.TransitionPaymentStatus(ctx, booking.BookingID,
				[]domain.PaymentStatus{domain.PaymentStatusInitiated}, domain.PaymentStatusFailed); err != nil {
				log.WithError(err).Error("could not mark payment failed")
			}
		}
		log.Warn("payment not successful")
		msg := status.Message
		if msg == "" {
			msg = "payment was not successful"
		}
		return nil, domain.NewError(domain.ErrPaymentFailed, msg, nil)
	}

	if booking == nil {
		log.Error("successful payment has no matching booking")
		return nil, domain.NewError(domain.ErrNotFound, "no booking matches this transaction", nil)
	}

	updated, won, err := s.bookings.TransitionPaymentStatus(ctx, booking.BookingID,
		[]domain.PaymentStatus{domain.PaymentStatusInitiated}, domain.PaymentStatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("mark booking %d paid: %w", booking.BookingID, err)
	}
	if !won {
		return s.alreadyReconciled(ctx, payment, booking.BookingID, log)
	}

	log.WithField("booking_id", updated.BookingID).Info("payment verified, issuing ticket")
	ticketed, err := s.issuer.Issue(ctx, txnID, clientIP)
	if err != nil {
		log.WithError(err).Error("payment verified but ticket issuance failed")
		return nil, fmt.Errorf("payment verified, ticket issuance failed: %w", err)
	}
	return &StatusResult{Payment: payment, Booking: ticketed, Ticketed: true}, nil
}

// alreadyReconciled answers a successful check that lost the transition.
// A booking already marked Failed stays Failed.
func (s *PaymentService) alreadyReconciled(ctx context.Context, payment *domain.PaymentResponse, bookingID int64, log logrus.FieldLogger) (*StatusResult, error) {
	current, err := s.bookings.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.PaymentStatus == domain.PaymentStatusFailed {
		log.WithField("booking_id", bookingID).Error("gateway reports success for a declined booking")
		return nil, domain.NewError(domain.ErrPaymentFailed, "payment for this booking was already declined", nil)
	}
	log.Info("payment already reconciled, ticket not reissued")
	return &StatusResult{Payment: payment, Booking: current}, nil
}

// lookup finds the booking a transaction id refers to, or nil if none does.
func (s *PaymentService) lookup(ctx context.Context, txnID string) (*domain.Booking, error) {
	bookingID, err := strconv.ParseInt(txnID, 10, 64)
	if err != nil {
		return nil, nil
	}
	booking, err := s.bookings.GetByBookingID(ctx, bookingID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return booking, err
}

func (s *PaymentService) publish(ctx context.Context, payment *domain.PaymentResponse) {
	if s.producer == nil || s.paymentTopic == "" {
		return
	}
	event := kafka.NewPaymentEvent(payment)
	if err := s.producer.Publish(ctx, s.paymentTopic, strconv.FormatInt(payment.BookingID, 10), event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": event.Type, "booking_id": payment.BookingID}).Warn("failed to publish payment event")
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
