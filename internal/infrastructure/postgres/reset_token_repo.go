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

type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

func (r *ResetTokenRepository) Create(ctx context.Context, userID, code string, expiryDate time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reset_tokens (user_id, code, expiry_date)
		VALUES ($1, $2, $3)`,
		userID, code, expiryDate,
	)
	if err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) Find(ctx context.Context, userID, code string) (*domain.ResetToken, error) {
	query := `
		SELECT user_id, code, expiry_date
		FROM reset_tokens
		WHERE user_id = $1 AND code = $2`

	var rt domain.ResetToken
	err := r.pool.QueryRow(ctx, query, userID, code).Scan(&rt.UserID, &rt.Code, &rt.ExpiryDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResetCodeInvalid
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &rt, nil
}

// Delete is conditional: the returned bool is false when the row was already
// gone, which lets the caller detect a concurrently consumed code.
func (r *ResetTokenRepository) Delete(ctx context.Context, userID, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reset_tokens WHERE user_id = $1 AND code = $2`, userID, code)
	if err != nil {
		return false, fmt.Errorf("delete reset token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reset_tokens WHERE expiry_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
