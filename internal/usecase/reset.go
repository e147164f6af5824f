package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/ErlanBelekov/auth-service/internal/hash"
	"github.com/ErlanBelekov/auth-service/internal/metrics"
)

const resetCodeTTL = 1 * time.Hour

// generateResetCode draws a uniform 4-digit code. The upper bound is
// exclusive: codes run 1000 through 9998, and 9999 is never produced.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(8999))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

// ForgotPassword persists a reset code for the user and emails it. The code
// is committed before the send; a delivery failure is logged and counted but
// never rolls the code back, so it stays usable through other channels.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(resetCodeTTL)
	if err := u.resets.Create(ctx, user.ID, code, expiry); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	subject := "Password Reset Code"
	body := fmt.Sprintf("<p>Your password reset code is: %s</p><p>It expires in one hour.</p>", code)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.Error("send reset code email", "error", err)
		metrics.ResetEmailsTotal.WithLabelValues("error").Inc()
		return nil
	}

	metrics.ResetEmailsTotal.WithLabelValues("ok").Inc()
	return nil
}

// VerifyResetCode reports whether (email, code) identifies an unexpired reset
// code. Pure predicate: the code is not consumed.
func (u *AuthUsecase) VerifyResetCode(ctx context.Context, emailAddr, code string) (bool, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	rt, err := u.resets.Find(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, domain.ErrResetCodeInvalid) {
			return false, nil
		}
		return false, fmt.Errorf("find reset code: %w", err)
	}

	if rt.ExpiryDate.Before(time.Now()) {
		return false, nil
	}
	return true, nil
}

// ResetPassword consumes a valid code and overwrites the user's password.
// The new hash is persisted before the code row is deleted, so a crash in
// between leaves a still-usable code rather than a consumed-but-ineffective
// reset. The delete is conditional: if another request consumed the code in
// the meantime, the whole operation fails with ErrResetCodeInvalid.
func (u *AuthUsecase) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	ok, err := u.VerifyResetCode(ctx, emailAddr, code)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrResetCodeInvalid
	}

	// Re-resolve in case the user vanished between verify and reset.
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	hashed, err := hash.Password(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := u.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	deleted, err := u.resets.Delete(ctx, user.ID, code)
	if err != nil {
		return fmt.Errorf("delete reset code: %w", err)
	}
	if !deleted {
		return domain.ErrResetCodeInvalid
	}
	return nil
}
