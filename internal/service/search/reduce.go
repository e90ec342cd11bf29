package search

import "github.com/Domenick1991/flightbroker/internal/domain"

// LowestFarePerFlight flattens the result directions and keeps, for every
// flight number, the entry with the lowest BaseFare. The first entry wins a
// tie and survivors keep their original order. Entries without segments
// have no flight number and are always kept.
func LowestFarePerFlight(results [][]domain.FlightResult) []domain.FlightResult {
	var flat []domain.FlightResult
	for _, direction := range results {
		flat = append(flat, direction...)
	}

	best := make(map[string]int, len(flat))
	for i, r := range flat {
		key := r.FlightNumber()
		if key == "" {
			continue
		}
		j, seen := best[key]
		if !seen || r.Fare.BaseFare.LessThan(flat[j].Fare.BaseFare) {
			best[key] = i
		}
	}

	out := make([]domain.FlightResult, 0, len(best))
	for i, r := range flat {
		key := r.FlightNumber()
		if key == "" || best[key] == i {
			out = append(out, r)
		}
	}
	return out
}
