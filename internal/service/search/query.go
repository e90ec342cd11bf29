package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbroker/internal/domain"
)

const (
	JourneyOneWay        = 1
	JourneyReturn        = 2
	JourneyMultiStop     = 3
	JourneyAdvanceSearch = 4
	JourneySpecialReturn = 5
)

const (
	CabinAll            = 1
	CabinFirst          = 6
	defaultTimeOfDay    = 1
	providerDateLayout  = "2006-01-02"
	providerClockSuffix = "T"
)

// timeOfDay maps the public TimeOfDay option to the preferred clock time
// sent to the provider. 5 is an early-morning window and intentionally
// sorts out of order.
var timeOfDay = map[int]string{
	1: "00:00:00",
	2: "08:00:00",
	3: "14:00:00",
	4: "19:00:00",
	5: "01:00:00",
}

// sourceLists resolves a named source list to provider source codes.
var sourceLists = map[string][]string{
	"normal":        {"GDS"},
	"splReturn":     {"SG", "6E", "G8"},
	"advanceSearch": {"GDS", "SG", "6E", "G8", "G9", "FZ", "IX", "AK", "LB"},
	"multiStop":     {"GDS"},
}

// Query is a flight search as entered by the user. Zero values take the
// documented defaults.
type Query struct {
	Origin              string `form:"Origin" json:"Origin"`
	Destination         string `form:"Destination" json:"Destination"`
	DepartureDate       string `form:"DepartureDate" json:"DepartureDate"`
	ArrivalDate         string `form:"ArrivalDate" json:"ArrivalDate"`
	ReturnDepartureDate string `form:"ReturnDepartureDate" json:"ReturnDepartureDate"`
	ReturnArrivalDate   string `form:"ReturnArrivalDate" json:"ReturnArrivalDate"`
	AdultCount          int    `form:"AdultCount" json:"AdultCount"`
	ChildCount          int    `form:"ChildCount" json:"ChildCount"`
	InfantCount         int    `form:"InfantCount" json:"InfantCount"`
	JourneyType         int    `form:"JourneyType" json:"JourneyType"`
	TimeOfDay           int    `form:"TimeOfDay" json:"TimeOfDay"`
	FlightCabinClass    int    `form:"FlightCabinClass" json:"FlightCabinClass"`
	ReturnCabinClass    int    `form:"ReturnCabinClass" json:"ReturnCabinClass"`
	DirectFlight        bool   `form:"DirectFlight" json:"DirectFlight"`
	OneStopFlight       bool   `form:"OneStopFlight" json:"OneStopFlight"`
	PreferredAirlines   string `form:"PreferredAirlines" json:"PreferredAirlines"`
	Sources             string `form:"Sources" json:"Sources"`
}

func (q *Query) applyDefaults() {
	if q.AdultCount == 0 {
		q.AdultCount = 1
	}
	if q.JourneyType == 0 {
		q.JourneyType = JourneyOneWay
	}
	if q.TimeOfDay == 0 {
		q.TimeOfDay = defaultTimeOfDay
	}
	if q.FlightCabinClass == 0 {
		q.FlightCabinClass = CabinAll
	}
	if q.ReturnCabinClass == 0 {
		q.ReturnCabinClass = q.FlightCabinClass
	}
	if q.JourneyType == JourneyReturn && q.ReturnArrivalDate == "" {
		q.ReturnArrivalDate = q.ReturnDepartureDate
	}
}

func (q Query) validate() error {
	var missing []string
	if strings.TrimSpace(q.DepartureDate) == "" {
		missing = append(missing, "DepartureDate")
	}
	if strings.TrimSpace(q.ArrivalDate) == "" {
		missing = append(missing, "ArrivalDate")
	}
	if len(missing) > 0 {
		return domain.Validation(strings.Join(missing, " and ") + " required")
	}
	if q.AdultCount < 0 || q.ChildCount < 0 || q.InfantCount < 0 {
		return domain.Validation("passenger counts must not be negative")
	}
	if q.InfantCount > q.AdultCount {
		return domain.Validation("InfantCount cannot exceed AdultCount")
	}
	if q.JourneyType < JourneyOneWay || q.JourneyType > JourneySpecialReturn {
		return domain.Validation(fmt.Sprintf("unsupported JourneyType %d", q.JourneyType))
	}
	if _, ok := timeOfDay[q.TimeOfDay]; !ok {
		return domain.Validation(fmt.Sprintf("unsupported TimeOfDay %d", q.TimeOfDay))
	}
	for _, cabin := range []int{q.FlightCabinClass, q.ReturnCabinClass} {
		if cabin < CabinAll || cabin > CabinFirst {
			return domain.Validation(fmt.Sprintf("unsupported cabin class %d", cabin))
		}
	}
	if q.JourneyType == JourneyReturn && strings.TrimSpace(q.ReturnDepartureDate) == "" {
		return domain.Validation("ReturnDepartureDate required for a return journey")
	}
	return nil
}

// preferredTime joins a date with the TimeOfDay clock, e.g.
// "2024-05-01T00:00:00". A full timestamp is cut back to its date.
func preferredTime(date string, tod int) (string, error) {
	date = strings.TrimSpace(date)
	if i := strings.Index(date, providerClockSuffix); i >= 0 {
		date = date[:i]
	}
	if _, err := time.Parse(providerDateLayout, date); err != nil {
		return "", domain.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}
	return date + providerClockSuffix + timeOfDay[tod], nil
}

// splitAirlines turns "AI, 6E" into ["AI","6E"]. Nil means no preference.
func splitAirlines(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			out = append(out, code)
		}
	}
	return out
}

func resolveSources(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	sources, ok := sourceLists[name]
	if !ok {
		return nil, domain.Validation(fmt.Sprintf("unknown source list %q", name))
	}
	out := make([]string, len(sources))
	copy(out, sources)
	return out, nil
}
