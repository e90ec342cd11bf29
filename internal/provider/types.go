package provider

import (
	"strings"

	"github.com/Domenick1991/flightbroker/internal/domain"
)

// Error is the provider's in-band error. ErrorCode 0 means success.
type Error struct {
	ErrorCode    int    `json:"ErrorCode"`
	ErrorMessage string `json:"ErrorMessage"`
}

func (e Error) OK() bool {
	return e.ErrorCode == 0
}

// TokenRejected reports whether the provider refused the TokenId itself,
// which is the only way a stale token is discovered. The provider reuses
// error codes for TraceId expiry, so the message decides.
func (e Error) TokenRejected() bool {
	msg := strings.ToLower(e.ErrorMessage)
	return e.ErrorCode != 0 && strings.Contains(msg, "token") &&
		(strings.Contains(msg, "expired") || strings.Contains(msg, "invalid"))
}

type AuthenticateRequest struct {
	ClientID  string `json:"ClientId"`
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
	EndUserIP string `json:"EndUserIp"`
}

type Member struct {
	FirstName      string `json:"FirstName"`
	LastName       string `json:"LastName"`
	Email          string `json:"Email"`
	MemberID       int64  `json:"MemberId"`
	AgencyID       int64  `json:"AgencyId"`
	LoginName      string `json:"LoginName"`
	IsPrimaryAgent bool   `json:"isPrimaryAgent"`
}

type AuthenticateResponse struct {
	Status  int    `json:"Status"`
	TokenID string `json:"TokenId"`
	Error   *Error `json:"Error"`
	Member  Member `json:"Member"`
}

type SearchSegment struct {
	Origin                 string `json:"Origin"`
	Destination            string `json:"Destination"`
	FlightCabinClass       int    `json:"FlightCabinClass"`
	PreferredDepartureTime string `json:"PreferredDepartureTime"`
	PreferredArrivalTime   string `json:"PreferredArrivalTime"`
}

type SearchRequest struct {
	EndUserIP         string          `json:"EndUserIp"`
	TokenID           string          `json:"TokenId"`
	AdultCount        int             `json:"AdultCount"`
	ChildCount        int             `json:"ChildCount"`
	InfantCount       int             `json:"InfantCount"`
	DirectFlight      bool            `json:"DirectFlight"`
	OneStopFlight     bool            `json:"OneStopFlight"`
	JourneyType       int             `json:"JourneyType"`
	PreferredAirlines []string        `json:"PreferredAirlines"`
	Segments          []SearchSegment `json:"Segments"`
	Sources           []string        `json:"Sources"`
}

type SearchResult struct {
	ResponseStatus int                     `json:"ResponseStatus"`
	Error          Error                   `json:"Error"`
	TraceID        string                  `json:"TraceId"`
	Origin         string                  `json:"Origin"`
	Destination    string                  `json:"Destination"`
	Results        [][]domain.FlightResult `json:"Results"`
}

type searchResponse struct {
	Response *SearchResult `json:"Response"`
}

// ResultRequest addresses one priced itinerary of an earlier search.
type ResultRequest struct {
	EndUserIP   string `json:"EndUserIp"`
	TokenID     string `json:"TokenId"`
	TraceID     string `json:"TraceId"`
	ResultIndex string `json:"ResultIndex"`
}

type FareRuleResult struct {
	ResponseStatus int               `json:"ResponseStatus"`
	Error          Error             `json:"Error"`
	TraceID        string            `json:"TraceId"`
	FareRules      []domain.FareRule `json:"FareRules"`
}

type fareRuleResponse struct {
	Response *FareRuleResult `json:"Response"`
}

type FareQuoteResult struct {
	ResponseStatus int                 `json:"ResponseStatus"`
	Error          Error               `json:"Error"`
	TraceID        string              `json:"TraceId"`
	IsPriceChanged bool                `json:"IsPriceChanged"`
	Results        domain.FlightResult `json:"Results"`
}

type fareQuoteResponse struct {
	Response *FareQuoteResult `json:"Response"`
}

type SSRResult struct {
	ResponseStatus int                     `json:"ResponseStatus"`
	Error          Error                   `json:"Error"`
	TraceID        string                  `json:"TraceId"`
	Meal           []domain.Meal           `json:"Meal"`
	SeatPreference []domain.SeatPreference `json:"SeatPreference,omitempty"`
	MealDynamic    [][]domain.MealDynamic  `json:"MealDynamic,omitempty"`
	Baggage        [][]domain.Baggage      `json:"Baggage,omitempty"`
	SeatDynamic    []domain.SeatDynamic    `json:"SeatDynamic"`
}

type ssrResponse struct {
	Response *SSRResult `json:"Response"`
}

type BookRequest struct {
	ResultIndex string             `json:"ResultIndex"`
	Passengers  []domain.Passenger `json:"Passengers"`
	EndUserIP   string             `json:"EndUserIp"`
	TokenID     string             `json:"TokenId"`
	TraceID     string             `json:"TraceId"`
}

type BookDetail struct {
	PNR             string                 `json:"PNR"`
	BookingID       int64                  `json:"BookingId"`
	SSRDenied       bool                   `json:"SSRDenied"`
	SSRMessage      string                 `json:"SSRMessage"`
	Status          int                    `json:"Status"`
	IsPriceChanged  bool                   `json:"IsPriceChanged"`
	IsTimeChanged   bool                   `json:"IsTimeChanged"`
	FlightItinerary domain.FlightItinerary `json:"FlightItinerary"`
}

type BookResult struct {
	ResponseStatus int         `json:"ResponseStatus"`
	Error          Error       `json:"Error"`
	TraceID        string      `json:"TraceId"`
	Response       *BookDetail `json:"Response"`
}

type bookResponse struct {
	Response *BookResult `json:"Response"`
}

type PassportDetail struct {
	PaxID          int64  `json:"PaxId"`
	PassportNo     string `json:"PassportNo"`
	PassportExpiry string `json:"PassportExpiry"`
	DateOfBirth    string `json:"DateOfBirth"`
}

type TicketRequest struct {
	EndUserIP   string           `json:"EndUserIp"`
	TokenID     string           `json:"TokenId"`
	TraceID     string           `json:"TraceId"`
	ResultIndex string           `json:"ResultIndex"`
	PNR         string           `json:"PNR"`
	BookingID   int64            `json:"BookingId"`
	Passport    []PassportDetail `json:"Passport"`
}

type TicketDetail struct {
	PNR             string                 `json:"PNR"`
	BookingID       int64                  `json:"BookingId"`
	SSRDenied       bool                   `json:"SSRDenied"`
	SSRMessage      string                 `json:"SSRMessage"`
	IsPriceChanged  bool                   `json:"IsPriceChanged"`
	IsTimeChanged   bool                   `json:"IsTimeChanged"`
	TicketStatus    int                    `json:"TicketStatus"`
	Message         string                 `json:"Message"`
	FlightItinerary domain.FlightItinerary `json:"FlightItinerary"`
}

type TicketResult struct {
	ResponseStatus int           `json:"ResponseStatus"`
	Error          Error         `json:"Error"`
	TraceID        string        `json:"TraceId"`
	Response       *TicketDetail `json:"Response"`
}

type ticketResponse struct {
	Response *TicketResult `json:"Response"`
}

type BookingDetailsRequest struct {
	EndUserIP string `json:"EndUserIp"`
	TokenID   string `json:"TokenId"`
	BookingID int64  `json:"BookingId"`
	PNR       string `json:"PNR"`
}

type BookingDetailsResult struct {
	ResponseStatus  int                    `json:"ResponseStatus"`
	Error           Error                  `json:"Error"`
	TraceID         string                 `json:"TraceId"`
	FlightItinerary domain.FlightItinerary `json:"FlightItinerary"`
}

type bookingDetailsResponse struct {
	Response *BookingDetailsResult `json:"Response"`
}
