package domain

import (
	"errors"
	"time"
)

var (
	// ErrEmailTaken is returned when a signup targets an already registered email.
	ErrEmailTaken = errors.New("email already in use")

	// ErrWrongCredentials covers both an unknown email and a password mismatch,
	// so a login failure never reveals which one it was.
	ErrWrongCredentials = errors.New("wrong credentials")

	ErrUserNotFound = errors.New("user not found")

	// ErrRefreshTokenInvalid covers both a token that never existed and one
	// past its expiry; the two are indistinguishable to the caller.
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid or expired")

	ErrResetCodeInvalid = errors.New("reset code is invalid or expired")
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken is the single live session credential of a user. Issuing a new
// one replaces the previous row for that user.
type RefreshToken struct {
	UserID     string
	Token      string
	ExpiryDate time.Time
}

// ResetToken is a one-time password-reset code. A user may have several
// outstanding codes at once; each is deleted on successful use.
type ResetToken struct {
	UserID     string
	Code       string
	ExpiryDate time.Time
}
