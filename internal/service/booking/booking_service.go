package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/kafka"
	"github.com/Domenick1991/flightbroker/internal/provider"
	"github.com/Domenick1991/flightbroker/internal/repository"
	"github.com/Domenick1991/flightbroker/internal/service/auth"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.Booking, error)
	Details(ctx context.Context, pnr, clientIP string) (*Details, error)
}

type TokenProvider interface {
	EnsureToken(ctx context.Context, clientIP string) (domain.AuthToken, error)
	Refresh(ctx context.Context, clientIP string, stale domain.AuthToken) (domain.AuthToken, error)
}

type BookingProvider interface {
	Book(ctx context.Context, req provider.BookRequest) (*provider.BookResult, error)
	GetBookingDetails(ctx context.Context, req provider.BookingDetailsRequest) (*provider.BookingDetailsResult, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookInput struct {
	Session     domain.SearchSession
	ResultIndex string             `json:"ResultIndex"`
	Passengers  []domain.Passenger `json:"Passengers"`
	UserID      string
	ClientIP    string
}

// Details is the stored booking, the provider's live itinerary and the
// payment checks recorded against it.
type Details struct {
	Booking   *domain.Booking          `json:"booking"`
	Itinerary domain.FlightItinerary   `json:"itinerary"`
	Payments  []domain.PaymentResponse `json:"payments"`
}

type BookingService struct {
	bookings     repository.BookingRepository
	payments     repository.PaymentRepository
	tokens       TokenProvider
	provider     BookingProvider
	producer     Producer
	bookingTopic string
	now          func() time.Time
	log          logrus.FieldLogger
}

type BookingServiceOption func(*BookingService)

// WithProducer enables booking_created events. Without it nothing is published.
func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	tokens TokenProvider,
	provider BookingProvider,
	log logrus.FieldLogger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		payments: payments,
		tokens:   tokens,
		provider: provider,
		now:      time.Now,
		log:      log.WithField("component", "booking"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) Book(ctx context.Context, input BookInput) (*domain.Booking, error) {
	input.ResultIndex = strings.TrimSpace(input.ResultIndex)
	if input.ResultIndex == "" {
		return nil, domain.Validation("ResultIndex required")
	}
	if len(input.Passengers) == 0 {
		return nil, domain.Validation("at least one passenger is required")
	}
	if input.UserID == "" {
		return nil, domain.Validation("user id required")
	}
	if !input.Session.Valid(s.now()) {
		return nil, domain.NewError(domain.ErrMissingTraceID, "search session expired, please search again", nil)
	}

	log := s.log.WithFields(logrus.Fields{"trace_id": input.Session.TraceID, "result_index": input.ResultIndex})

	req := provider.BookRequest{
		ResultIndex: input.ResultIndex,
		Passengers:  input.Passengers,
		EndUserIP:   input.ClientIP,
		TraceID:     input.Session.TraceID,
	}
	res, err := auth.WithToken(ctx, s.tokens, input.ClientIP, func(tokenID string) (*provider.BookResult, error) {
		req.TokenID = tokenID
		return s.provider.Book(ctx, req)
	})
	if errors.Is(err, domain.ErrAuthentication) {
		return nil, err
	}
	if err != nil {
		log.WithError(err).Error("provider booking call failed")
		return nil, domain.NewError(domain.ErrBookingFailed, "booking could not be completed", err)
	}
	if !res.Error.OK() {
		log.WithFields(logrus.Fields{
			"error_code":    res.Error.ErrorCode,
			"error_message": res.Error.ErrorMessage,
		}).Warn("provider rejected booking")
		msg := res.Error.ErrorMessage
		if msg == "" {
			msg = "booking was rejected by the airline"
		}
		return nil, domain.NewError(domain.ErrBookingFailed, msg, nil)
	}

	booking, err := s.fromProvider(input, res.Response)
	if err != nil {
		log.WithError(err).Error("provider booking response incomplete")
		return nil, err
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"pnr":        booking.PNR,
			"booking_id": booking.BookingID,
		}).Error("booking confirmed by provider but not stored")
		return nil, fmt.Errorf("store booking %s: %w", booking.PNR, err)
	}

	log.WithFields(logrus.Fields{
		"pnr":         booking.PNR,
		"booking_id":  booking.BookingID,
		"net_payable": booking.NetPayable.String(),
	}).Info("booking created")

	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

// fromProvider builds the booking to store. NetPayable always comes from the
// provider's fare, never from the request.
func (s *BookingService) fromProvider(input BookInput, detail *provider.BookDetail) (*domain.Booking, error) {
	if detail == nil {
		return nil, domain.NewError(domain.ErrBookingFailed, "booking could not be completed", nil)
	}
	itinerary := detail.FlightItinerary

	pnr := detail.PNR
	if pnr == "" {
		pnr = itinerary.PNR
	}
	bookingID := detail.BookingID
	if bookingID == 0 {
		bookingID = itinerary.BookingID
	}
	if pnr == "" || bookingID == 0 {
		return nil, domain.NewError(domain.ErrBookingFailed, "booking could not be completed", nil)
	}

	return &domain.Booking{
		UserID:         input.UserID,
		PNR:            pnr,
		BookingID:      bookingID,
		ResultIndex:    input.ResultIndex,
		TraceID:        input.Session.TraceID,
		Status:         detail.Status,
		SSRDenied:      detail.SSRDenied,
		IsPriceChanged: detail.IsPriceChanged,
		IsTimeChanged:  detail.IsTimeChanged,
		PaymentStatus:  domain.PaymentStatusInitiated,
		NetPayable:     itinerary.Fare.NetPayable(),
		Itinerary:      itinerary,
	}, nil
}

func (s *BookingService) Details(ctx context.Context, pnr, clientIP string) (*Details, error) {
	pnr = strings.TrimSpace(pnr)
	if pnr == "" {
		return nil, domain.Validation("PNR required")
	}

	booking, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}

	req := provider.BookingDetailsRequest{
		EndUserIP: clientIP,
		BookingID: booking.BookingID,
		PNR:       booking.PNR,
	}
	res, err := auth.WithToken(ctx, s.tokens, clientIP, func(tokenID string) (*provider.BookingDetailsResult, error) {
		req.TokenID = tokenID
		return s.provider.GetBookingDetails(ctx, req)
	})
	if errors.Is(err, domain.ErrAuthentication) {
		return nil, err
	}
	if err != nil {
		s.log.WithError(err).WithField("pnr", pnr).Error("booking details fetch failed")
		return nil, &domain.FetchFailedError{Variant: domain.FetchBookingDetails, Message: "could not fetch booking details", Err: err}
	}
	if !res.Error.OK() {
		s.log.WithFields(logrus.Fields{
			"pnr":           pnr,
			"error_code":    res.Error.ErrorCode,
			"error_message": res.Error.ErrorMessage,
		}).Warn("provider rejected booking details")
		return nil, &domain.FetchFailedError{Variant: domain.FetchBookingDetails, Message: "could not fetch booking details"}
	}

	payments, err := s.payments.ListByBookingID(ctx, booking.BookingID)
	if err != nil {
		return nil, fmt.Errorf("list payments of booking %d: %w", booking.BookingID, err)
	}

	return &Details{Booking: booking, Itinerary: res.FlightItinerary, Payments: payments}, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking)
	if err := s.producer.Publish(ctx, s.bookingTopic, strconv.FormatInt(booking.BookingID, 10), event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": eventType, "booking_id": booking.BookingID}).Warn("failed to publish booking event")
	}
}

var _ BookingUseCase = (*BookingService)(nil)
