package domain

import "github.com/shopspring/decimal"

type Meal struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

type SeatPreference struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

type MealDynamic struct {
	AirlineCode        string          `json:"AirlineCode"`
	FlightNumber       string          `json:"FlightNumber"`
	WayType            int             `json:"WayType"`
	Code               string          `json:"Code"`
	Description        int             `json:"Description"`
	AirlineDescription string          `json:"AirlineDescription"`
	Quantity           int             `json:"Quantity"`
	Currency           string          `json:"Currency"`
	Price              decimal.Decimal `json:"Price"`
	Origin             string          `json:"Origin"`
	Destination        string          `json:"Destination"`
}

type Baggage struct {
	AirlineCode  string          `json:"AirlineCode"`
	FlightNumber string          `json:"FlightNumber"`
	WayType      int             `json:"WayType"`
	Code         string          `json:"Code"`
	Description  int             `json:"Description"`
	Weight       int             `json:"Weight"`
	Currency     string          `json:"Currency"`
	Price        decimal.Decimal `json:"Price"`
	Origin       string          `json:"Origin"`
	Destination  string          `json:"Destination"`
}

type Seat struct {
	AirlineCode     string          `json:"AirlineCode"`
	FlightNumber    string          `json:"FlightNumber"`
	CraftType       string          `json:"CraftType"`
	Origin          string          `json:"Origin"`
	Destination     string          `json:"Destination"`
	AvailablityType int             `json:"AvailablityType"`
	Description     int             `json:"Description"`
	Code            string          `json:"Code"`
	RowNo           string          `json:"RowNo"`
	SeatNo          string          `json:"SeatNo"`
	SeatType        int             `json:"SeatType"`
	SeatWayType     int             `json:"SeatWayType"`
	Compartment     int             `json:"Compartment"`
	Deck            int             `json:"Deck"`
	Currency        string          `json:"Currency"`
	Price           decimal.Decimal `json:"Price"`
}

type RowSeats struct {
	Seats []Seat `json:"Seats"`
}

type SegmentSeat struct {
	RowSeats []RowSeats `json:"RowSeats"`
}

type SeatDynamic struct {
	SegmentSeat []SegmentSeat `json:"SegmentSeat"`
}
