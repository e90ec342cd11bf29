package fares

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/provider"
	"github.com/Domenick1991/flightbroker/internal/service/auth"
	"github.com/sirupsen/logrus"
)

type FareUseCase interface {
	FareRule(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*provider.FareRuleResult, error)
	FareQuote(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*provider.FareQuoteResult, error)
	SSR(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*SSROptions, error)
}

type TokenProvider interface {
	EnsureToken(ctx context.Context, clientIP string) (domain.AuthToken, error)
	Refresh(ctx context.Context, clientIP string, stale domain.AuthToken) (domain.AuthToken, error)
}

type FareProvider interface {
	FareRule(ctx context.Context, req provider.ResultRequest) (*provider.FareRuleResult, error)
	FareQuote(ctx context.Context, req provider.ResultRequest) (*provider.FareQuoteResult, error)
	SSR(ctx context.Context, req provider.ResultRequest) (*provider.SSRResult, error)
}

// SSROptions are the special services (meals, seats, baggage) offered for
// one priced itinerary.
type SSROptions struct {
	Meal        []domain.Meal          `json:"Meal"`
	MealDynamic [][]domain.MealDynamic `json:"MealDynamic"`
	SeatDynamic []domain.SeatDynamic   `json:"SeatDynamic"`
	Baggage     [][]domain.Baggage     `json:"Baggage"`
}

type FareService struct {
	tokens   TokenProvider
	provider FareProvider
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewFareService(tokens TokenProvider, provider FareProvider, log logrus.FieldLogger) *FareService {
	return &FareService{
		tokens:   tokens,
		provider: provider,
		now:      time.Now,
		log:      log.WithField("component", "fares"),
	}
}

func (s *FareService) FareRule(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*provider.FareRuleResult, error) {
	req, err := s.prepare(session, resultIndex, clientIP)
	if err != nil {
		return nil, err
	}
	res, err := auth.WithToken(ctx, s.tokens, clientIP, func(tokenID string) (*provider.FareRuleResult, error) {
		req.TokenID = tokenID
		return s.provider.FareRule(ctx, req)
	})
	if err != nil {
		return nil, s.fetchFailed(domain.FetchFareRule, req, err)
	}
	if !res.Error.OK() {
		return nil, s.rejected(domain.FetchFareRule, req, res.Error)
	}
	return res, nil
}

func (s *FareService) FareQuote(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*provider.FareQuoteResult, error) {
	req, err := s.prepare(session, resultIndex, clientIP)
	if err != nil {
		return nil, err
	}
	res, err := auth.WithToken(ctx, s.tokens, clientIP, func(tokenID string) (*provider.FareQuoteResult, error) {
		req.TokenID = tokenID
		return s.provider.FareQuote(ctx, req)
	})
	if err != nil {
		return nil, s.fetchFailed(domain.FetchFareQuote, req, err)
	}
	if !res.Error.OK() {
		return nil, s.rejected(domain.FetchFareQuote, req, res.Error)
	}
	if res.IsPriceChanged {
		s.log.WithFields(logrus.Fields{"trace_id": req.TraceID, "result_index": req.ResultIndex}).Info("fare changed since search")
	}
	return res, nil
}

func (s *FareService) SSR(ctx context.Context, session domain.SearchSession, resultIndex, clientIP string) (*SSROptions, error) {
	req, err := s.prepare(session, resultIndex, clientIP)
	if err != nil {
		return nil, err
	}
	res, err := auth.WithToken(ctx, s.tokens, clientIP, func(tokenID string) (*provider.SSRResult, error) {
		req.TokenID = tokenID
		return s.provider.SSR(ctx, req)
	})
	if err != nil {
		return nil, s.fetchFailed(domain.FetchSSR, req, err)
	}
	if !res.Error.OK() {
		return nil, s.rejected(domain.FetchSSR, req, res.Error)
	}
	return &SSROptions{
		Meal:        res.Meal,
		MealDynamic: res.MealDynamic,
		SeatDynamic: res.SeatDynamic,
		Baggage:     res.Baggage,
	}, nil
}

func (s *FareService) prepare(session domain.SearchSession, resultIndex, clientIP string) (provider.ResultRequest, error) {
	resultIndex = strings.TrimSpace(resultIndex)
	if resultIndex == "" {
		return provider.ResultRequest{}, domain.Validation("ResultIndex required")
	}
	if !session.Valid(s.now()) {
		return provider.ResultRequest{}, domain.NewError(domain.ErrMissingTraceID, "search session expired, please search again", nil)
	}
	return provider.ResultRequest{
		EndUserIP:   clientIP,
		TraceID:     session.TraceID,
		ResultIndex: resultIndex,
	}, nil
}

func (s *FareService) fetchFailed(variant domain.FetchVariant, req provider.ResultRequest, cause error) error {
	if errors.Is(cause, domain.ErrAuthentication) {
		return cause
	}
	s.log.WithError(cause).WithFields(logrus.Fields{
		"variant":      variant,
		"trace_id":     req.TraceID,
		"result_index": req.ResultIndex,
	}).Error("fare fetch failed")
	return &domain.FetchFailedError{Variant: variant, Message: failureMessage(variant), Err: cause}
}

func (s *FareService) rejected(variant domain.FetchVariant, req provider.ResultRequest, perr provider.Error) error {
	s.log.WithFields(logrus.Fields{
		"variant":       variant,
		"trace_id":      req.TraceID,
		"result_index":  req.ResultIndex,
		"error_code":    perr.ErrorCode,
		"error_message": perr.ErrorMessage,
	}).Warn("provider rejected fare fetch")
	return &domain.FetchFailedError{Variant: variant, Message: failureMessage(variant)}
}

func failureMessage(variant domain.FetchVariant) string {
	switch variant {
	case domain.FetchFareRule:
		return "could not fetch fare rules for the selected flight"
	case domain.FetchFareQuote:
		return "could not fetch a fare quote for the selected flight"
	case domain.FetchSSR:
		return "could not fetch meal and seat options for the selected flight"
	default:
		return "could not fetch " + string(variant)
	}
}

var _ FareUseCase = (*FareService)(nil)
