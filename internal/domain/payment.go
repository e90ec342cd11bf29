package domain

import (
	"encoding/json"
	"time"
)

const (
	PaymentCodeSuccess = "PAYMENT_SUCCESS"
	PaymentCodePending = "PAYMENT_PENDING"

	PaymentCodeError    = "PAYMENT_ERROR"
	PaymentCodeDeclined = "PAYMENT_DECLINED"
	PaymentCodeTimedOut = "TIMED_OUT"
)

type PaymentData struct {
	MerchantID            string          `json:"merchantId"`
	MerchantTransactionID string          `json:"merchantTransactionId"`
	TransactionID         string          `json:"transactionId"`
	Amount                int64           `json:"amount"`
	State                 string          `json:"state"`
	ResponseCode          string          `json:"responseCode"`
	PaymentInstrument     json.RawMessage `json:"paymentInstrument,omitempty"`
	FeesContext           json.RawMessage `json:"feesContext,omitempty"`
}

// PaymentResponse is one payment status check as reported by the gateway.
// It is an audit log entry: every check appends a new row.
type PaymentResponse struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id"`
	BookingID int64       `json:"booking_id"`
	Success   bool        `json:"success"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Data      PaymentData `json:"data"`
	CreatedAt time.Time   `json:"created_at"`
}

// Succeeded is the only rule deciding a successful payment.
func (p PaymentResponse) Succeeded() bool {
	return p.Code == PaymentCodeSuccess && p.Success
}

// Declined reports whether the gateway settled the transaction as failed.
// Lookup and authorization errors say nothing about the payment itself.
func (p PaymentResponse) Declined() bool {
	switch p.Code {
	case PaymentCodeError, PaymentCodeDeclined, PaymentCodeTimedOut:
		return !p.Success
	default:
		return false
	}
}
