package kafka

import (
	"time"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	EventBookingCreated  = "booking_created"
	EventPaymentVerified = "payment_verified"
	EventPaymentFailed   = "payment_failed"
	EventTicketIssued    = "ticket_issued"
)

type BookingEvent struct {
	Type          string               `json:"type"`
	BookingID     int64                `json:"booking_id"`
	PNR           string               `json:"pnr"`
	UserID        string               `json:"user_id"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	NetPayable    decimal.Decimal      `json:"net_payable"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.BookingID,
		PNR:           b.PNR,
		UserID:        b.UserID,
		PaymentStatus: b.PaymentStatus,
		NetPayable:    b.NetPayable,
		OccurredAt:    time.Now().UTC(),
	}
}

type PaymentEvent struct {
	Type                  string    `json:"type"`
	BookingID             int64     `json:"booking_id"`
	UserID                string    `json:"user_id"`
	MerchantTransactionID string    `json:"merchant_transaction_id"`
	Code                  string    `json:"code"`
	Success               bool      `json:"success"`
	OccurredAt            time.Time `json:"occurred_at"`
}

func NewPaymentEvent(p *domain.PaymentResponse) PaymentEvent {
	eventType := EventPaymentFailed
	if p.Succeeded() {
		eventType = EventPaymentVerified
	}
	return PaymentEvent{
		Type:                  eventType,
		BookingID:             p.BookingID,
		UserID:                p.UserID,
		MerchantTransactionID: p.Data.MerchantTransactionID,
		Code:                  p.Code,
		Success:               p.Success,
		OccurredAt:            time.Now().UTC(),
	}
}
