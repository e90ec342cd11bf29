package domain

import "github.com/shopspring/decimal"

// TicketNotice is everything the mailer needs to render and send the
// e-ticket to the lead passenger.
type TicketNotice struct {
	EventID       string          `json:"event_id"`
	To            string          `json:"to"`
	PassengerName string          `json:"passenger_name"`
	PNR           string          `json:"pnr"`
	BookingID     int64           `json:"booking_id"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	AirlineCode   string          `json:"airline_code"`
	NetPayable    decimal.Decimal `json:"net_payable"`
	Currency      string          `json:"currency"`
	Passengers    []Passenger     `json:"passengers"`
	Segments      []Segment       `json:"segments"`
}
