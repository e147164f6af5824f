package repository

import (
	"context"

	"github.com/ErlanBelekov/auth-service/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken if the email is
	// already registered.
	Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound if no user has that email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound if no user has that ID.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// UpdatePassword overwrites the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
