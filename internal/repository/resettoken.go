package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/domain"
)

type ResetTokenRepository interface {
	// Create stores a new reset code for the user. Outstanding codes for the
	// same user are left untouched.
	Create(ctx context.Context, userID, code string, expiryDate time.Time) error
	// Find returns the row matching (userID, code) exactly, expired or not.
	// Returns domain.ErrResetCodeInvalid if there is none.
	Find(ctx context.Context, userID, code string) (*domain.ResetToken, error)
	// Delete removes the (userID, code) row. The boolean reports whether a row
	// was actually deleted, so callers can detect a concurrent consumption.
	Delete(ctx context.Context, userID, code string) (bool, error)
	// DeleteExpired removes rows whose expiry is before cutoff and reports
	// how many were deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
