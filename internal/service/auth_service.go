package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"docvault/internal/auth"
	apperrors "docvault/internal/errors"
	"docvault/internal/model"
	"docvault/internal/repository"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgUnknownAdmin       = "Invalid credentials"
	msgAccountInactive    = "Account is inactive. Please contact administrator."
	msgAdminRequired      = "Unauthorized: Admin access required"
)

// AuthService checks user credentials. No session or token is issued; a
// successful call only returns the account.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.User, error)
	AdminLogin(ctx context.Context, username, password string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher) AuthService {
	return &authService{users: users, hasher: hasher}
}

// Login accepts an active account with a matching password.
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperrors.Internal(err, "login")
	}

	if err := s.verify(user, password); err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden(msgAccountInactive)
	}
	return user, nil
}

// AdminLogin additionally requires the admin flag. Inactive administrators
// are rejected with the same message as non-administrators.
func (s *authService) AdminLogin(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized(msgUnknownAdmin)
		}
		return nil, apperrors.Internal(err, "admin login")
	}

	if err := s.verify(user, password); err != nil {
		return nil, err
	}
	if !user.IsAdmin || !user.IsActive {
		return nil, apperrors.Unauthorized(msgAdminRequired)
	}
	return user, nil
}

func (s *authService) verify(user *model.User, password string) error {
	err := s.hasher.Compare(user.Password, password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrPasswordMismatch):
		return apperrors.Unauthorized(msgInvalidCredentials)
	default:
		// a malformed stored hash still must not let the caller in
		return apperrors.Wrap(err, apperrors.KindUnauthorized, msgInvalidCredentials)
	}
}
