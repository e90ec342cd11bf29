package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Fare is the provider fare breakdown. Field names follow the provider wire
// format because itineraries are stored as returned.
type Fare struct {
	Currency             string          `json:"Currency"`
	BaseFare             decimal.Decimal `json:"BaseFare"`
	Tax                  decimal.Decimal `json:"Tax"`
	YQTax                decimal.Decimal `json:"YQTax"`
	AdditionalTxnFeeOfrd decimal.Decimal `json:"AdditionalTxnFeeOfrd"`
	AdditionalTxnFeePub  decimal.Decimal `json:"AdditionalTxnFeePub"`
	OtherCharges         decimal.Decimal `json:"OtherCharges"`
	Discount             decimal.Decimal `json:"Discount"`
	PublishedFare        decimal.Decimal `json:"PublishedFare"`
	CommissionEarned     decimal.Decimal `json:"CommissionEarned"`
	PLBEarned            decimal.Decimal `json:"PLBEarned"`
	IncentiveEarned      decimal.Decimal `json:"IncentiveEarned"`
	OfferedFare          decimal.Decimal `json:"OfferedFare"`
	TdsOnCommission      decimal.Decimal `json:"TdsOnCommission"`
	TdsOnPLB             decimal.Decimal `json:"TdsOnPLB"`
	TdsOnIncentive       decimal.Decimal `json:"TdsOnIncentive"`
	ServiceFee           decimal.Decimal `json:"ServiceFee"`
}

// TDS is the tax deducted at source across all three earning components.
func (f Fare) TDS() decimal.Decimal {
	return f.TdsOnCommission.Add(f.TdsOnPLB).Add(f.TdsOnIncentive)
}

// NetPayable is what the agency owes the provider for this fare.
func (f Fare) NetPayable() decimal.Decimal {
	return f.OfferedFare.Add(f.TDS())
}

type FareBreakdown struct {
	Currency       string          `json:"Currency"`
	PassengerType  int             `json:"PassengerType"`
	PassengerCount int             `json:"PassengerCount"`
	BaseFare       decimal.Decimal `json:"BaseFare"`
	Tax            decimal.Decimal `json:"Tax"`
	YQTax          decimal.Decimal `json:"YQTax"`
}

type Airport struct {
	AirportCode string `json:"AirportCode"`
	AirportName string `json:"AirportName"`
	Terminal    string `json:"Terminal,omitempty"`
	CityCode    string `json:"CityCode,omitempty"`
	CityName    string `json:"CityName"`
	CountryCode string `json:"CountryCode"`
	CountryName string `json:"CountryName,omitempty"`
}

type SegmentAirline struct {
	AirlineCode      string `json:"AirlineCode"`
	AirlineName      string `json:"AirlineName"`
	FlightNumber     string `json:"FlightNumber"`
	FareClass        string `json:"FareClass"`
	OperatingCarrier string `json:"OperatingCarrier"`
}

type SegmentOrigin struct {
	Airport Airport `json:"Airport"`
	DepTime string  `json:"DepTime"`
}

type SegmentDestination struct {
	Airport Airport `json:"Airport"`
	ArrTime string  `json:"ArrTime"`
}

type Segment struct {
	Baggage          string             `json:"Baggage"`
	CabinBaggage     string             `json:"CabinBaggage"`
	TripIndicator    int                `json:"TripIndicator"`
	SegmentIndicator int                `json:"SegmentIndicator"`
	Airline          SegmentAirline     `json:"Airline"`
	Origin           SegmentOrigin      `json:"Origin"`
	Destination      SegmentDestination `json:"Destination"`
	Duration         int                `json:"Duration"`
	GroundTime       int                `json:"GroundTime"`
	StopOver         bool               `json:"StopOver"`
	Craft            string             `json:"Craft"`
	Status           string             `json:"Status,omitempty"`
}

type FareRule struct {
	Origin          string `json:"Origin"`
	Destination     string `json:"Destination"`
	Airline         string `json:"Airline"`
	FareBasisCode   string `json:"FareBasisCode"`
	FareRuleDetail  string `json:"FareRuleDetail"`
	FareRestriction string `json:"FareRestriction"`
}

// FlightResult is one priced itinerary of a search or fare quote response.
// Segments holds one slice per leg.
type FlightResult struct {
	ResultIndex       string          `json:"ResultIndex"`
	Source            int             `json:"Source"`
	IsLCC             bool            `json:"IsLCC"`
	IsRefundable      bool            `json:"IsRefundable"`
	AirlineRemark     string          `json:"AirlineRemark"`
	Fare              Fare            `json:"Fare"`
	FareBreakdown     []FareBreakdown `json:"FareBreakdown"`
	Segments          [][]Segment     `json:"Segments"`
	LastTicketDate    string          `json:"LastTicketDate"`
	TicketAdvisory    string          `json:"TicketAdvisory"`
	FareRules         []FareRule      `json:"FareRules"`
	AirlineCode       string          `json:"AirlineCode"`
	ValidatingAirline string          `json:"ValidatingAirline"`
}

// FlightNumber identifies the flight(s) of the first leg, e.g. "AI101" or
// "AI101-AI865" for a connection.
func (r FlightResult) FlightNumber() string {
	if len(r.Segments) == 0 || len(r.Segments[0]) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Segments[0]))
	for _, s := range r.Segments[0] {
		parts = append(parts, s.Airline.AirlineCode+s.Airline.FlightNumber)
	}
	return strings.Join(parts, "-")
}
