package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository interface {
	Create(ctx context.Context, token *domain.AuthToken) error
	Latest(ctx context.Context) (*domain.AuthToken, error)
}

type PGTokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) TokenRepository {
	return &PGTokenRepository{db: db}
}

// Create appends a token row. Earlier rows are kept as an audit trail.
func (r *PGTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	return r.db.QueryRow(ctx, `INSERT INTO auth_tokens (token_id, member_id, agency_id, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, token.TokenID, token.MemberID, token.AgencyID, token.IPAddress).
		Scan(&token.ID, &token.CreatedAt)
}

func (r *PGTokenRepository) Latest(ctx context.Context) (*domain.AuthToken, error) {
	row := r.db.QueryRow(ctx, `SELECT id, token_id, member_id, agency_id, ip_address, created_at
		FROM auth_tokens ORDER BY created_at DESC, id DESC LIMIT 1`)
	var t domain.AuthToken
	if err := row.Scan(&t.ID, &t.TokenID, &t.MemberID, &t.AgencyID, &t.IPAddress, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

var _ TokenRepository = (*PGTokenRepository)(nil)
