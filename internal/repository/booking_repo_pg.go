package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Booking, error)
	// TransitionPaymentStatus moves the booking to `to` only if its current
	// status is one of `from`. ok is false when no row matched.
	TransitionPaymentStatus(ctx context.Context, bookingID int64, from []domain.PaymentStatus, to domain.PaymentStatus) (booking *domain.Booking, ok bool, err error)
	MarkTicketed(ctx context.Context, bookingID int64, itinerary domain.FlightItinerary) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, pnr, booking_id, result_index, trace_id, status, ssr_denied,
	is_price_changed, is_time_changed, payment_status, net_payable, itinerary, ticketed_at, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	itinerary, err := json.Marshal(booking.Itinerary)
	if err != nil {
		return fmt.Errorf("marshal itinerary: %w", err)
	}
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = domain.PaymentStatusInitiated
	}

	return r.db.QueryRow(ctx, `INSERT INTO bookings (user_id, pnr, booking_id, result_index, trace_id, status,
			ssr_denied, is_price_changed, is_time_changed, payment_status, net_payable, itinerary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.PNR, booking.BookingID, booking.ResultIndex, booking.TraceID, booking.Status,
		booking.SSRDenied, booking.IsPriceChanged, booking.IsTimeChanged, string(booking.PaymentStatus),
		booking.NetPayable, itinerary).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1 ORDER BY created_at DESC LIMIT 1`, pnr)
	return scanBooking(row)
}

func (r *PGBookingRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=$1`, bookingID)
	return scanBooking(row)
}

func (r *PGBookingRepository) TransitionPaymentStatus(ctx context.Context, bookingID int64, from []domain.PaymentStatus, to domain.PaymentStatus) (*domain.Booking, bool, error) {
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now()
		WHERE booking_id=$2 AND payment_status = ANY($3)
		RETURNING `+bookingColumns, string(to), bookingID, allowed)
	b, err := scanBooking(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *PGBookingRepository) MarkTicketed(ctx context.Context, bookingID int64, itinerary domain.FlightItinerary) (*domain.Booking, error) {
	payload, err := json.Marshal(itinerary)
	if err != nil {
		return nil, fmt.Errorf("marshal itinerary: %w", err)
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings SET ticketed_at=now(), itinerary=$1, updated_at=now()
		WHERE booking_id=$2 AND ticketed_at IS NULL
		RETURNING `+bookingColumns, payload, bookingID)
	b, err := scanBooking(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAlreadyTicketed
	}
	return b, err
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b         domain.Booking
		status    string
		itinerary []byte
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.PNR, &b.BookingID, &b.ResultIndex, &b.TraceID, &b.Status, &b.SSRDenied,
		&b.IsPriceChanged, &b.IsTimeChanged, &status, &b.NetPayable, &itinerary, &b.TicketedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	b.PaymentStatus = domain.PaymentStatus(status)
	if err := json.Unmarshal(itinerary, &b.Itinerary); err != nil {
		return nil, fmt.Errorf("decode itinerary of booking %d: %w", b.BookingID, err)
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
