package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "Initiated"
	PaymentStatusSuccess   PaymentStatus = "Success"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

type PaxType int

const (
	PaxAdult  PaxType = 1
	PaxChild  PaxType = 2
	PaxInfant PaxType = 3
)

type Ticket struct {
	TicketID          int64  `json:"TicketId"`
	TicketNumber      string `json:"TicketNumber"`
	IssueDate         string `json:"IssueDate"`
	ValidatingAirline string `json:"ValidatingAirline"`
	Remarks           string `json:"Remarks"`
	Status            string `json:"Status"`
}

// Passenger is a traveller as sent to the provider in a booking request and
// echoed back inside the itinerary.
type Passenger struct {
	PaxID          int64   `json:"PaxId,omitempty"`
	Title          string  `json:"Title"`
	FirstName      string  `json:"FirstName"`
	LastName       string  `json:"LastName"`
	PaxType        PaxType `json:"PaxType"`
	DateOfBirth    string  `json:"DateOfBirth,omitempty"`
	Gender         int     `json:"Gender"`
	PassportNo     string  `json:"PassportNo,omitempty"`
	PassportExpiry string  `json:"PassportExpiry,omitempty"`
	AddressLine1   string  `json:"AddressLine1,omitempty"`
	AddressLine2   string  `json:"AddressLine2,omitempty"`
	City           string  `json:"City,omitempty"`
	CountryCode    string  `json:"CountryCode,omitempty"`
	CountryName    string  `json:"CountryName,omitempty"`
	Nationality    string  `json:"Nationality,omitempty"`
	ContactNo      string  `json:"ContactNo,omitempty"`
	Email          string  `json:"Email,omitempty"`
	IsLeadPax      bool    `json:"IsLeadPax"`
	FFAirlineCode  string  `json:"FFAirlineCode,omitempty"`
	FFNumber       string  `json:"FFNumber,omitempty"`
	Fare           *Fare   `json:"Fare,omitempty"`
	Ticket         *Ticket `json:"Ticket,omitempty"`
}

// FlightItinerary is the provider's view of a booked itinerary.
type FlightItinerary struct {
	BookingID             int64           `json:"BookingId"`
	PNR                   string          `json:"PNR"`
	IsDomestic            bool            `json:"IsDomestic"`
	Source                int             `json:"Source"`
	Origin                string          `json:"Origin"`
	Destination           string          `json:"Destination"`
	AirlineCode           string          `json:"AirlineCode"`
	ValidatingAirlineCode string          `json:"ValidatingAirlineCode"`
	AirlineRemark         string          `json:"AirlineRemark"`
	IsLCC                 bool            `json:"IsLCC"`
	NonRefundable         bool            `json:"NonRefundable"`
	FareType              string          `json:"FareType"`
	Fare                  Fare            `json:"Fare"`
	Passenger             []Passenger     `json:"Passenger"`
	Segments              []Segment       `json:"Segments"`
	FareRules             []FareRule      `json:"FareRules"`
	Status                int             `json:"Status"`
	InvoiceNo             string          `json:"InvoiceNo"`
	InvoiceAmount         decimal.Decimal `json:"InvoiceAmount"`
	LastTicketDate        string          `json:"LastTicketDate"`
}

// LeadPassenger returns the first stored passenger, the one who receives
// the ticket email.
func (it FlightItinerary) LeadPassenger() (Passenger, bool) {
	if len(it.Passenger) == 0 {
		return Passenger{}, false
	}
	return it.Passenger[0], true
}

// Booking is persisted once per successful provider booking. PNR and
// BookingID together are its external identity.
type Booking struct {
	ID             int64           `json:"id"`
	UserID         string          `json:"user_id"`
	PNR            string          `json:"pnr"`
	BookingID      int64           `json:"booking_id"`
	ResultIndex    string          `json:"result_index"`
	TraceID        string          `json:"-"`
	Status         int             `json:"status"`
	SSRDenied      bool            `json:"ssr_denied"`
	IsPriceChanged bool            `json:"is_price_changed"`
	IsTimeChanged  bool            `json:"is_time_changed"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	NetPayable     decimal.Decimal `json:"net_payable"`
	Itinerary      FlightItinerary `json:"itinerary"`
	TicketedAt     *time.Time      `json:"ticketed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (b *Booking) Ticketed() bool {
	return b.TicketedAt != nil
}
