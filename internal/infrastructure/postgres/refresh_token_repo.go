package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// Upsert is keyed by user_id: a new login or rotation replaces the previous
// session token, so only the newest one is honored.
func (r *RefreshTokenRepository) Upsert(ctx context.Context, userID, token string, expiryDate time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expiry_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET token = $2, expiry_date = $3`,
		userID, token, expiryDate,
	)
	if err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindActive(ctx context.Context, token string, now time.Time) (*domain.RefreshToken, error) {
	query := `
		SELECT user_id, token, expiry_date
		FROM refresh_tokens
		WHERE token = $1 AND expiry_date > $2`

	var rt domain.RefreshToken
	err := r.pool.QueryRow(ctx, query, token, now).Scan(&rt.UserID, &rt.Token, &rt.ExpiryDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expiry_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
