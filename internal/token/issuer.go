// Package token issues the two session credentials: short-lived signed access
// tokens and long-lived opaque refresh tokens stored server-side.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/ErlanBelekov/auth-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 1 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Pair is the canonical "login succeeded" output.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs access tokens with an HMAC key injected at construction and
// persists refresh tokens through the repository.
type Issuer struct {
	tokens     repository.RefreshTokenRepository
	jwtKey     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(tokens repository.RefreshTokenRepository, jwtKey []byte) *Issuer {
	return &Issuer{
		tokens:     tokens,
		jwtKey:     jwtKey,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
}

// AccessToken returns an HS256-signed JWT carrying the user ID. Stateless.
func (i *Issuer) AccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(i.accessTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// RefreshToken generates an opaque token and upserts it for the user,
// invalidating whatever token the user held before.
func (i *Issuer) RefreshToken(ctx context.Context, userID string) (string, error) {
	opaque := uuid.NewString()
	expiry := time.Now().Add(i.refreshTTL)
	if err := i.tokens.Upsert(ctx, userID, opaque, expiry); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return opaque, nil
}

// Pair issues a fresh access/refresh token pair for the user.
func (i *Issuer) Pair(ctx context.Context, userID string) (*Pair, error) {
	access, err := i.AccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := i.RefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate exchanges a still-valid refresh token for a brand-new pair. The old
// token is superseded by the upsert inside Pair. A missing and an expired
// token both fail with domain.ErrRefreshTokenInvalid.
func (i *Issuer) Rotate(ctx context.Context, refreshToken string) (*Pair, error) {
	rt, err := i.tokens.FindActive(ctx, refreshToken, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenInvalid) {
			return nil, domain.ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return i.Pair(ctx, rt.UserID)
}
