package ticket

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/kafka"
	"github.com/Domenick1991/flightbroker/internal/provider"
	"github.com/Domenick1991/flightbroker/internal/repository"
	"github.com/Domenick1991/flightbroker/internal/service/auth"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultLockTTL = 2 * time.Minute

type TicketUseCase interface {
	Issue(ctx context.Context, merchantTransactionID, clientIP string) (*domain.Booking, error)
	IssueNonLCCTicket(ctx context.Context, booking *domain.Booking, clientIP string) (*domain.Booking, error)
	IssueLCCTicket(ctx context.Context, booking *domain.Booking, clientIP string) (*domain.Booking, error)
}

type TokenProvider interface {
	EnsureToken(ctx context.Context, clientIP string) (domain.AuthToken, error)
	Refresh(ctx context.Context, clientIP string, stale domain.AuthToken) (domain.AuthToken, error)
}

type Ticketer interface {
	Ticket(ctx context.Context, req provider.TicketRequest) (*provider.TicketResult, error)
}

type Lock interface {
	AcquireTicketLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error)
	ReleaseTicketLock(ctx context.Context, bookingID int64) error
}

// Mailer delivers the e-ticket to the lead passenger.
type Mailer interface {
	SendTicket(ctx context.Context, notice domain.TicketNotice) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type TicketService struct {
	bookings     repository.BookingRepository
	tokens       TokenProvider
	provider     Ticketer
	lock         Lock
	mailer       Mailer
	producer     Producer
	bookingTopic string
	lockTTL      time.Duration
	log          logrus.FieldLogger
}

type TicketServiceOption func(*TicketService)

func WithProducer(producer Producer, topic string) TicketServiceOption {
	return func(s *TicketService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

func WithLockTTL(ttl time.Duration) TicketServiceOption {
	return func(s *TicketService) {
		s.lockTTL = ttl
	}
}

func NewTicketService(
	bookings repository.BookingRepository,
	tokens TokenProvider,
	provider Ticketer,
	lock Lock,
	mailer Mailer,
	log logrus.FieldLogger,
	opts ...TicketServiceOption,
) *TicketService {
	s := &TicketService{
		bookings: bookings,
		tokens:   tokens,
		provider: provider,
		lock:     lock,
		mailer:   mailer,
		lockTTL:  defaultLockTTL,
		log:      log.WithField("component", "ticket"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue tickets the paid booking whose BookingId is merchantTransactionID,
// choosing the LCC or non-LCC flow from the stored itinerary.
func (s *TicketService) Issue(ctx context.Context, merchantTransactionID, clientIP string) (*domain.Booking, error) {
	txnID := strings.TrimSpace(merchantTransactionID)
	if txnID == "" {
		return nil, domain.NewError(domain.ErrTransactionIDMissing, "", nil)
	}
	bookingID, err := strconv.ParseInt(txnID, 10, 64)
	if err != nil {
		return nil, domain.Validation("merchantTransactionId must be a booking id")
	}

	booking, err := s.bookings.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != domain.PaymentStatusSuccess {
		return nil, domain.Validation("booking is not paid")
	}

	if booking.Itinerary.IsLCC {
		return s.IssueLCCTicket(ctx, booking, clientIP)
	}
	return s.IssueNonLCCTicket(ctx, booking, clientIP)
}

func (s *TicketService) IssueNonLCCTicket(ctx context.Context, booking *domain.Booking, clientIP string) (*domain.Booking, error) {
	if booking.Ticketed() {
		return nil, domain.ErrAlreadyTicketed
	}
	log := s.log.WithFields(logrus.Fields{"booking_id": booking.BookingID, "pnr": booking.PNR, "trace_id": booking.TraceID})

	if s.lock != nil {
		acquired, err := s.lock.AcquireTicketLock(ctx, booking.BookingID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, domain.ErrTicketInProgress
		}
		defer func() {
			if err := s.lock.ReleaseTicketLock(context.WithoutCancel(ctx), booking.BookingID); err != nil {
				log.WithError(err).Warn("ticket lock not released")
			}
		}()

		// The row may have been ticketed by the previous lock holder.
		fresh, err := s.bookings.GetByBookingID(ctx, booking.BookingID)
		if err != nil {
			return nil, err
		}
		if fresh.Ticketed() {
			return nil, domain.ErrAlreadyTicketed
		}
		booking = fresh
	}

	req := provider.TicketRequest{
		EndUserIP:   clientIP,
		TraceID:     booking.TraceID,
		ResultIndex: booking.ResultIndex,
		PNR:         booking.PNR,
		BookingID:   booking.BookingID,
		Passport:    passports(booking.Itinerary.Passenger),
	}
	res, err := auth.WithToken(ctx, s.tokens, clientIP, func(tokenID string) (*provider.TicketResult, error) {
		req.TokenID = tokenID
		return s.provider.Ticket(ctx, req)
	})
	if errors.Is(err, domain.ErrAuthentication) {
		return nil, err
	}
	if err != nil {
		log.WithError(err).Error("provider ticket call failed")
		return nil, domain.NewError(domain.ErrUpstream, "ticket could not be issued", err)
	}
	if !res.Error.OK() {
		log.WithFields(logrus.Fields{
			"error_code":    res.Error.ErrorCode,
			"error_message": res.Error.ErrorMessage,
		}).Error("provider rejected ticket")
		msg := res.Error.ErrorMessage
		if msg == "" {
			msg = "ticket could not be issued"
		}
		return nil, domain.NewError(domain.ErrUpstream, msg, nil)
	}

	itinerary := booking.Itinerary
	if res.Response != nil && res.Response.FlightItinerary.PNR != "" {
		itinerary = res.Response.FlightItinerary
	}

	ticketed, err := s.bookings.MarkTicketed(ctx, booking.BookingID, itinerary)
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyTicketed) {
			log.WithError(err).Error("ticket issued but booking not updated")
		}
		return nil, err
	}
	log.Info("ticket issued")

	s.notify(ctx, ticketed, log)
	s.publish(ctx, ticketed)
	return ticketed, nil
}

// IssueLCCTicket is the low-cost carrier flow. LCC bookings are ticketed by
// a different provider call that is not integrated.
func (s *TicketService) IssueLCCTicket(_ context.Context, booking *domain.Booking, _ string) (*domain.Booking, error) {
	s.log.WithFields(logrus.Fields{"booking_id": booking.BookingID, "pnr": booking.PNR}).Warn("LCC ticketing requested")
	return nil, domain.NewError(domain.ErrNotSupported, "ticketing for low-cost carriers is not supported yet", nil)
}

// notify emails the lead passenger. A mail failure leaves the ticket issued.
func (s *TicketService) notify(ctx context.Context, booking *domain.Booking, log logrus.FieldLogger) {
	if s.mailer == nil {
		return
	}
	notice, ok := NewNotice(booking)
	if !ok {
		log.Warn("lead passenger has no email, ticket email skipped")
		return
	}
	if err := s.mailer.SendTicket(ctx, notice); err != nil {
		log.WithError(err).Error("ticket email not sent")
	}
}

func (s *TicketService) publish(ctx context.Context, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(kafka.EventTicketIssued, booking)
	if err := s.producer.Publish(ctx, s.bookingTopic, strconv.FormatInt(booking.BookingID, 10), event); err != nil {
		s.log.WithError(err).WithField("booking_id", booking.BookingID).Warn("failed to publish ticket event")
	}
}

// NewNotice builds the ticket email for the first stored passenger.
func NewNotice(booking *domain.Booking) (domain.TicketNotice, bool) {
	lead, ok := booking.Itinerary.LeadPassenger()
	if !ok || lead.Email == "" {
		return domain.TicketNotice{}, false
	}
	it := booking.Itinerary
	return domain.TicketNotice{
		EventID:       uuid.NewString(),
		To:            lead.Email,
		PassengerName: strings.TrimSpace(lead.FirstName + " " + lead.LastName),
		PNR:           booking.PNR,
		BookingID:     booking.BookingID,
		Origin:        it.Origin,
		Destination:   it.Destination,
		AirlineCode:   it.AirlineCode,
		NetPayable:    booking.NetPayable,
		Currency:      it.Fare.Currency,
		Passengers:    it.Passenger,
		Segments:      it.Segments,
	}, true
}

func passports(passengers []domain.Passenger) []provider.PassportDetail {
	out := make([]provider.PassportDetail, 0, len(passengers))
	for _, p := range passengers {
		out = append(out, provider.PassportDetail{
			PaxID:          p.PaxID,
			PassportNo:     p.PassportNo,
			PassportExpiry: p.PassportExpiry,
			DateOfBirth:    p.DateOfBirth,
		})
	}
	return out
}

var _ TicketUseCase = (*TicketService)(nil)
