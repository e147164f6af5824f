package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/ErlanBelekov/auth-service/internal/email"
	"github.com/ErlanBelekov/auth-service/internal/hash"
	"github.com/ErlanBelekov/auth-service/internal/metrics"
	"github.com/ErlanBelekov/auth-service/internal/repository"
	"github.com/ErlanBelekov/auth-service/internal/token"
)

// tokenIssuer is the subset of token.Issuer the usecase needs.
type tokenIssuer interface {
	Pair(ctx context.Context, userID string) (*token.Pair, error)
	Rotate(ctx context.Context, refreshToken string) (*token.Pair, error)
}

type AuthUsecase struct {
	users  repository.UserRepository
	resets repository.ResetTokenRepository
	issuer tokenIssuer
	email  email.Sender
	logger *slog.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	resets repository.ResetTokenRepository,
	issuer tokenIssuer,
	emailSender email.Sender,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		resets: resets,
		issuer: issuer,
		email:  emailSender,
		logger: logger.With("component", "auth_usecase"),
	}
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// SignUp registers a new account. Fails with domain.ErrEmailTaken when the
// email is already in use.
func (u *AuthUsecase) SignUp(ctx context.Context, emailAddr, name, password string) error {
	// The unique index on email backs this check, so a concurrent signup with
	// the same address still ends in ErrEmailTaken from Create.
	_, err := u.users.FindByEmail(ctx, emailAddr)
	if err == nil {
		return domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("find user: %w", err)
	}

	hashed, err := hash.Password(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := u.users.Create(ctx, emailAddr, name, hashed); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	metrics.SignupsTotal.Inc()
	return nil
}

// Login verifies the credentials and issues a fresh token pair. An unknown
// email and a wrong password fail identically with domain.ErrWrongCredentials.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
			return nil, domain.ErrWrongCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !hash.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		return nil, domain.ErrWrongCredentials
	}

	pair, err := u.issuer.Pair(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return &LoginResult{
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair, invalidating
// the old one.
func (u *AuthUsecase) RefreshTokens(ctx context.Context, refreshToken string) (*token.Pair, error) {
	pair, err := u.issuer.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenInvalid) {
			metrics.TokenRotationsTotal.WithLabelValues("denied").Inc()
		}
		return nil, err
	}
	metrics.TokenRotationsTotal.WithLabelValues("ok").Inc()
	return pair, nil
}

// ChangePassword re-hashes and persists a new password after checking the old
// one. The caller is already authenticated, so a missing user is a NotFound,
// not a credentials failure.
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if !hash.Verify(oldPassword, user.PasswordHash) {
		return domain.ErrWrongCredentials
	}

	hashed, err := hash.Password(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := u.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
