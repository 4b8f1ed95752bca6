package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/pulse-news/pulse/internal/shared"
	"github.com/pulse-news/pulse/internal/users"
)

// UserSource looks up accounts for credential checks.
type UserSource interface {
	FindByLogin(ctx context.Context, login string) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users UserSource
}

// NewService constructs a new Service.
func NewService(source UserSource) *Service {
	return &Service{users: source}
}

// Authenticate validates login/password credentials. Unknown accounts,
// wrong passwords and disabled accounts are indistinguishable to the
// caller.
func (s *Service) Authenticate(ctx context.Context, login, password string) (users.User, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if !user.Active {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}
