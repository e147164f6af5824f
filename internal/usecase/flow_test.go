package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/domain"
	"github.com/ErlanBelekov/auth-service/internal/token"
	"github.com/ErlanBelekov/auth-service/internal/usecase"
)

// In-memory stores with the same semantics as the Postgres repositories,
// used to drive the full flows end to end.

type memUserRepo struct {
	byID map[string]*domain.User
	next int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, email, name, passwordHash string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.next++
	u := &domain.User{ID: "user-" + strconv.Itoa(r.next), Email: email, Name: name, PasswordHash: passwordHash}
	r.byID[u.ID] = u
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type memRefreshRepo struct {
	byUser map[string]*domain.RefreshToken
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{byUser: make(map[string]*domain.RefreshToken)}
}

func (r *memRefreshRepo) Upsert(_ context.Context, userID, tok string, expiryDate time.Time) error {
	r.byUser[userID] = &domain.RefreshToken{UserID: userID, Token: tok, ExpiryDate: expiryDate}
	return nil
}

func (r *memRefreshRepo) FindActive(_ context.Context, tok string, now time.Time) (*domain.RefreshToken, error) {
	for _, rt := range r.byUser {
		if rt.Token == tok && rt.ExpiryDate.After(now) {
			return rt, nil
		}
	}
	return nil, domain.ErrRefreshTokenInvalid
}

func (r *memRefreshRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, rt := range r.byUser {
		if rt.ExpiryDate.Before(cutoff) {
			delete(r.byUser, id)
			n++
		}
	}
	return n, nil
}

type memResetRepo struct {
	rows []*domain.ResetToken
}

func (r *memResetRepo) Create(_ context.Context, userID, code string, expiryDate time.Time) error {
	r.rows = append(r.rows, &domain.ResetToken{UserID: userID, Code: code, ExpiryDate: expiryDate})
	return nil
}

func (r *memResetRepo) Find(_ context.Context, userID, code string) (*domain.ResetToken, error) {
	for _, rt := range r.rows {
		if rt.UserID == userID && rt.Code == code {
			return rt, nil
		}
	}
	return nil, domain.ErrResetCodeInvalid
}

func (r *memResetRepo) Delete(_ context.Context, userID, code string) (bool, error) {
	for i, rt := range r.rows {
		if rt.UserID == userID && rt.Code == code {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memResetRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	kept := r.rows[:0]
	var n int64
	for _, rt := range r.rows {
		if rt.ExpiryDate.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, rt)
	}
	r.rows = kept
	return n, nil
}

func newFlowUsecase(t *testing.T) (*usecase.AuthUsecase, *memResetRepo) {
	t.Helper()
	users := newMemUserRepo()
	resets := &memResetRepo{}
	issuer := token.NewIssuer(newMemRefreshRepo(), []byte("flow-test-secret-at-least-32-chars!"))

	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error { return nil },
	}
	return usecase.NewAuthUsecase(users, resets, issuer, sender, testLogger()), resets
}

func TestFlow_SignupLoginRefresh(t *testing.T) {
	u, _ := newFlowUsecase(t)
	ctx := context.Background()

	if err := u.SignUp(ctx, "alice@x.com", "Alice", "Passw0rd!!"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := u.SignUp(ctx, "alice@x.com", "Alice", "Passw0rd!!"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("second signup: want ErrEmailTaken, got %v", err)
	}

	res, err := u.Login(ctx, "alice@x.com", "Passw0rd!!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.UserID == "" || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("incomplete login result: %+v", res)
	}

	pair, err := u.RefreshTokens(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken == res.RefreshToken {
		t.Error("refresh returned the same refresh token")
	}

	// The rotation superseded the original token.
	if _, err := u.RefreshTokens(ctx, res.RefreshToken); !errors.Is(err, domain.ErrRefreshTokenInvalid) {
		t.Errorf("old refresh token: want ErrRefreshTokenInvalid, got %v", err)
	}
}

func TestFlow_ForgotVerifyReset(t *testing.T) {
	u, resets := newFlowUsecase(t)
	ctx := context.Background()

	if err := u.SignUp(ctx, "bob@x.com", "Bob", "OldPass123!"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := u.ForgotPassword(ctx, "bob@x.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if len(resets.rows) != 1 {
		t.Fatalf("stored %d reset codes, want 1", len(resets.rows))
	}
	code := resets.rows[0].Code

	ok, err := u.VerifyResetCode(ctx, "bob@x.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("freshly issued code reported invalid")
	}

	if err := u.ResetPassword(ctx, "bob@x.com", code, "NewPass99"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := u.Login(ctx, "bob@x.com", "OldPass123!"); !errors.Is(err, domain.ErrWrongCredentials) {
		t.Errorf("old password login: want ErrWrongCredentials, got %v", err)
	}
	if _, err := u.Login(ctx, "bob@x.com", "NewPass99"); err != nil {
		t.Errorf("new password login: %v", err)
	}

	// Single use: the consumed code must not work again.
	if err := u.ResetPassword(ctx, "bob@x.com", code, "AnotherPass1"); !errors.Is(err, domain.ErrResetCodeInvalid) {
		t.Errorf("reused code: want ErrResetCodeInvalid, got %v", err)
	}
}

func TestFlow_ResetCodeExpires(t *testing.T) {
	u, resets := newFlowUsecase(t)
	ctx := context.Background()

	if err := u.SignUp(ctx, "bob@x.com", "Bob", "OldPass123!"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := u.ForgotPassword(ctx, "bob@x.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	code := resets.rows[0].Code

	// Simulate the clock passing the one-hour expiry.
	resets.rows[0].ExpiryDate = time.Now().Add(-time.Second)

	ok, err := u.VerifyResetCode(ctx, "bob@x.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Error("expired code reported valid")
	}
	if err := u.ResetPassword(ctx, "bob@x.com", code, "NewPass99"); !errors.Is(err, domain.ErrResetCodeInvalid) {
		t.Errorf("expired code reset: want ErrResetCodeInvalid, got %v", err)
	}
}

func TestFlow_MultipleOutstandingCodes(t *testing.T) {
	u, resets := newFlowUsecase(t)
	ctx := context.Background()

	if err := u.SignUp(ctx, "bob@x.com", "Bob", "OldPass123!"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := u.ForgotPassword(ctx, "bob@x.com"); err != nil {
		t.Fatalf("first forgot: %v", err)
	}
	if err := u.ForgotPassword(ctx, "bob@x.com"); err != nil {
		t.Fatalf("second forgot: %v", err)
	}

	// Each request creates an independent row; earlier codes stay usable.
	if len(resets.rows) != 2 {
		t.Fatalf("stored %d reset codes, want 2", len(resets.rows))
	}
	first := resets.rows[0].Code
	ok, err := u.VerifyResetCode(ctx, "bob@x.com", first)
	if err != nil {
		t.Fatalf("verify first code: %v", err)
	}
	if !ok && first != resets.rows[1].Code {
		t.Error("earlier code invalidated by a later request")
	}
}
