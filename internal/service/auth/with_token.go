package auth

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbroker/internal/domain"
)

// Refresher is the part of TokenService provider calls depend on.
type Refresher interface {
	EnsureToken(ctx context.Context, clientIP string) (domain.AuthToken, error)
	Refresh(ctx context.Context, clientIP string, stale domain.AuthToken) (domain.AuthToken, error)
}

// WithToken runs call with the current token. When the provider rejects the
// token, it is replaced and call runs once more. A second rejection is
// returned to the caller.
func WithToken[T any](ctx context.Context, tokens Refresher, clientIP string, call func(tokenID string) (T, error)) (T, error) {
	var zero T

	token, err := tokens.EnsureToken(ctx, clientIP)
	if err != nil {
		return zero, err
	}
	res, err := call(token.TokenID)
	if !errors.Is(err, domain.ErrTokenExpired) {
		return res, err
	}

	fresh, err := tokens.Refresh(ctx, clientIP, token)
	if err != nil {
		return zero, err
	}
	return call(fresh.TokenID)
}
