package search

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/provider"
	"github.com/Domenick1991/flightbroker/internal/service/auth"
	"github.com/sirupsen/logrus"
)

type SearchUseCase interface {
	Search(ctx context.Context, query Query, clientIP string) (*Result, error)
}

type TokenProvider interface {
	EnsureToken(ctx context.Context, clientIP string) (domain.AuthToken, error)
	Refresh(ctx context.Context, clientIP string, stale domain.AuthToken) (domain.AuthToken, error)
}

type Searcher interface {
	Search(ctx context.Context, req provider.SearchRequest) (*provider.SearchResult, error)
}

// Result is the reduced flight list plus the session the caller must replay
// on the follow-up fare and booking calls.
type Result struct {
	Session domain.SearchSession  `json:"session"`
	Flights []domain.FlightResult `json:"flights"`
}

type SearchService struct {
	tokens     TokenProvider
	provider   Searcher
	sessionTTL time.Duration
	now        func() time.Time
	log        logrus.FieldLogger
}

type SearchServiceOption func(*SearchService)

func WithClock(now func() time.Time) SearchServiceOption {
	return func(s *SearchService) {
		s.now = now
	}
}

func NewSearchService(tokens TokenProvider, provider Searcher, sessionTTL time.Duration, log logrus.FieldLogger, opts ...SearchServiceOption) *SearchService {
	s := &SearchService{
		tokens:     tokens,
		provider:   provider,
		sessionTTL: sessionTTL,
		now:        time.Now,
		log:        log.WithField("component", "search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SearchService) Search(ctx context.Context, query Query, clientIP string) (*Result, error) {
	query.applyDefaults()
	if err := query.validate(); err != nil {
		return nil, err
	}
	req, err := buildRequest(query)
	if err != nil {
		return nil, err
	}

	req.EndUserIP = clientIP
	res, err := auth.WithToken(ctx, s.tokens, clientIP, func(tokenID string) (*provider.SearchResult, error) {
		req.TokenID = tokenID
		return s.provider.Search(ctx, req)
	})
	if errors.Is(err, domain.ErrAuthentication) {
		return nil, err
	}
	if err != nil {
		return nil, domain.NewError(domain.ErrSearchFailed, "flight search failed", err)
	}
	if !res.Error.OK() {
		s.log.WithFields(logrus.Fields{
			"error_code":    res.Error.ErrorCode,
			"error_message": res.Error.ErrorMessage,
			"trace_id":      res.TraceID,
		}).Warn("provider rejected search")
		msg := res.Error.ErrorMessage
		if msg == "" {
			msg = "flight search failed"
		}
		return nil, domain.NewError(domain.ErrSearchFailed, msg, nil)
	}

	out := &Result{Flights: LowestFarePerFlight(res.Results)}
	if res.TraceID != "" {
		out.Session = domain.NewSearchSession(res.TraceID, s.now(), s.sessionTTL)
	}

	s.log.WithFields(logrus.Fields{
		"trace_id": res.TraceID,
		"raw":      countResults(res.Results),
		"reduced":  len(out.Flights),
	}).Info("flight search completed")
	return out, nil
}

func buildRequest(q Query) (provider.SearchRequest, error) {
	depart, err := preferredTime(q.DepartureDate, q.TimeOfDay)
	if err != nil {
		return provider.SearchRequest{}, err
	}
	arrive, err := preferredTime(q.ArrivalDate, q.TimeOfDay)
	if err != nil {
		return provider.SearchRequest{}, err
	}
	sources, err := resolveSources(q.Sources)
	if err != nil {
		return provider.SearchRequest{}, err
	}

	segments := []provider.SearchSegment{{
		Origin:                 q.Origin,
		Destination:            q.Destination,
		FlightCabinClass:       q.FlightCabinClass,
		PreferredDepartureTime: depart,
		PreferredArrivalTime:   arrive,
	}}
	if q.JourneyType == JourneyReturn {
		retDepart, err := preferredTime(q.ReturnDepartureDate, q.TimeOfDay)
		if err != nil {
			return provider.SearchRequest{}, err
		}
		retArrive, err := preferredTime(q.ReturnArrivalDate, q.TimeOfDay)
		if err != nil {
			return provider.SearchRequest{}, err
		}
		segments = append(segments, provider.SearchSegment{
			Origin:                 q.Destination,
			Destination:            q.Origin,
			FlightCabinClass:       q.ReturnCabinClass,
			PreferredDepartureTime: retDepart,
			PreferredArrivalTime:   retArrive,
		})
	}

	return provider.SearchRequest{
		AdultCount:        q.AdultCount,
		ChildCount:        q.ChildCount,
		InfantCount:       q.InfantCount,
		DirectFlight:      q.DirectFlight,
		OneStopFlight:     q.OneStopFlight,
		JourneyType:       q.JourneyType,
		PreferredAirlines: splitAirlines(q.PreferredAirlines),
		Segments:          segments,
		Sources:           sources,
	}, nil
}

func countResults(results [][]domain.FlightResult) int {
	n := 0
	for _, r := range results {
		n += len(r)
	}
	return n
}

var _ SearchUseCase = (*SearchService)(nil)
