package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/domain"
)

type RefreshTokenRepository interface {
	// Upsert stores the token for the user, replacing any previous one.
	// A user has at most one live refresh token.
	Upsert(ctx context.Context, userID, token string, expiryDate time.Time) error
	// FindActive returns the token row matching the exact token string with
	// expiryDate after now. Returns domain.ErrRefreshTokenInvalid otherwise.
	FindActive(ctx context.Context, token string, now time.Time) (*domain.RefreshToken, error)
	// DeleteExpired removes rows whose expiry is before cutoff and reports
	// how many were deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
