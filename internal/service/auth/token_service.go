package auth

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/Domenick1991/flightbroker/internal/provider"
	"github.com/Domenick1991/flightbroker/internal/repository"
	"github.com/sirupsen/logrus"
)

type TokenUseCase interface {
	// EnsureToken returns the current provider token, authenticating only
	// when none has ever been stored.
	EnsureToken(ctx context.Context, clientIP string) (domain.AuthToken, error)
	CurrentToken(ctx context.Context) (domain.AuthToken, error)
	// Refresh replaces a token the provider rejected.
	Refresh(ctx context.Context, clientIP string, stale domain.AuthToken) (domain.AuthToken, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, endUserIP string) (*provider.AuthenticateResponse, error)
}

type TokenCache interface {
	GetToken(ctx context.Context) (*domain.AuthToken, error)
	SetToken(ctx context.Context, token *domain.AuthToken) error
}

// TokenService keeps a single "latest" provider token. There is no mutual
// exclusion: two requests that both find no token both authenticate and
// both insert a row. The later row (higher ID) wins on the next read, and
// the cache holds whichever write landed last. Either token is valid.
type TokenService struct {
	tokens   repository.TokenRepository
	cache    TokenCache
	provider Authenticator
	log      logrus.FieldLogger
}

// NewTokenService accepts a nil cache, in which case every read hits Postgres.
func NewTokenService(tokens repository.TokenRepository, cache TokenCache, provider Authenticator, log logrus.FieldLogger) *TokenService {
	return &TokenService{
		tokens:   tokens,
		cache:    cache,
		provider: provider,
		log:      log.WithField("component", "auth_token"),
	}
}

func (s *TokenService) EnsureToken(ctx context.Context, clientIP string) (domain.AuthToken, error) {
	token, err := s.CurrentToken(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.AuthToken{}, err
	}
	return s.authenticate(ctx, clientIP)
}

func (s *TokenService) CurrentToken(ctx context.Context) (domain.AuthToken, error) {
	if s.cache != nil {
		cached, err := s.cache.GetToken(ctx)
		if err != nil {
			s.log.WithError(err).Warn("token cache read failed")
		} else if cached != nil && cached.TokenID != "" {
			return *cached, nil
		}
	}

	latest, err := s.tokens.Latest(ctx)
	if err != nil {
		return domain.AuthToken{}, err
	}
	s.remember(ctx, latest)
	return *latest, nil
}

// Refresh authenticates again unless another request already replaced the
// stale token, in which case the newer token is returned.
func (s *TokenService) Refresh(ctx context.Context, clientIP string, stale domain.AuthToken) (domain.AuthToken, error) {
	latest, err := s.tokens.Latest(ctx)
	switch {
	case err == nil && latest.TokenID != "" && latest.TokenID != stale.TokenID:
		s.remember(ctx, latest)
		return *latest, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return domain.AuthToken{}, err
	}

	s.log.WithField("stale_generation", stale.ID).Warn("provider rejected token, authenticating again")
	return s.authenticate(ctx, clientIP)
}

func (s *TokenService) authenticate(ctx context.Context, clientIP string) (domain.AuthToken, error) {
	resp, err := s.provider.Authenticate(ctx, clientIP)
	if err != nil {
		return domain.AuthToken{}, domain.NewError(domain.ErrAuthentication, "could not authenticate with the flight provider", err)
	}
	if resp.Error != nil && !resp.Error.OK() {
		s.log.WithFields(logrus.Fields{
			"error_code":    resp.Error.ErrorCode,
			"error_message": resp.Error.ErrorMessage,
		}).Error("provider rejected authentication")
		msg := resp.Error.ErrorMessage
		if msg == "" {
			msg = "flight provider rejected the credentials"
		}
		return domain.AuthToken{}, domain.NewError(domain.ErrAuthentication, msg, nil)
	}
	if resp.TokenID == "" {
		return domain.AuthToken{}, domain.NewError(domain.ErrAuthentication, "flight provider returned an empty token", nil)
	}

	token := &domain.AuthToken{
		TokenID:   resp.TokenID,
		MemberID:  resp.Member.MemberID,
		AgencyID:  resp.Member.AgencyID,
		IPAddress: clientIP,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return domain.AuthToken{}, err
	}
	s.remember(ctx, token)

	s.log.WithFields(logrus.Fields{"generation": token.ID, "member_id": token.MemberID}).Info("provider token refreshed")
	return *token, nil
}

func (s *TokenService) remember(ctx context.Context, token *domain.AuthToken) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetToken(ctx, token); err != nil {
		s.log.WithError(err).Warn("token cache write failed")
	}
}

var _ TokenUseCase = (*TokenService)(nil)
