package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository is append-only: status checks are never upserted.
type PaymentRepository interface {
	Append(ctx context.Context, payment *domain.PaymentResponse) error
	ListByBookingID(ctx context.Context, bookingID int64) ([]domain.PaymentResponse, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Append(ctx context.Context, payment *domain.PaymentResponse) error {
	data, err := json.Marshal(payment.Data)
	if err != nil {
		return fmt.Errorf("marshal payment data: %w", err)
	}
	return r.db.QueryRow(ctx, `INSERT INTO payment_responses (user_id, booking_id, success, code, message, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		payment.UserID, payment.BookingID, payment.Success, payment.Code, payment.Message, data).
		Scan(&payment.ID, &payment.CreatedAt)
}

func (r *PGPaymentRepository) ListByBookingID(ctx context.Context, bookingID int64) ([]domain.PaymentResponse, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, booking_id, success, code, message, data, created_at
		FROM payment_responses WHERE booking_id=$1 ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.PaymentResponse, 0)
	for rows.Next() {
		var (
			p    domain.PaymentResponse
			data []byte
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.BookingID, &p.Success, &p.Code, &p.Message, &data, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &p.Data); err != nil {
			return nil, fmt.Errorf("decode payment %d: %w", p.ID, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
