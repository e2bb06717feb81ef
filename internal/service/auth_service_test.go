package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"docvault/internal/auth"
	apperrors "docvault/internal/errors"
	"docvault/internal/model"
)

func hashedUser(t *testing.T, password string, active, admin bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &model.User{ID: 7, Username: "alice", Email: "alice@example.com", Password: string(hash), IsActive: active, IsAdmin: admin}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		setupMock func(*testing.T, *MockUserRepository)
		wantKind  apperrors.Kind
		wantMsg   string
		wantErr   bool
	}{
		{
			name:     "successful login",
			password: "password123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(hashedUser(t, "password123", true, false), nil)
			},
		},
		{
			name:     "unknown user",
			password: "password123",
			setupMock: func(_ *testing.T, m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr:  true,
			wantKind: apperrors.KindUnauthorized,
			wantMsg:  "Invalid username or password",
		},
		{
			name:     "wrong password",
			password: "nope",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(hashedUser(t, "password123", true, false), nil)
			},
			wantErr:  true,
			wantKind: apperrors.KindUnauthorized,
			wantMsg:  "Invalid username or password",
		},
		{
			name:     "inactive account",
			password: "password123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(hashedUser(t, "password123", false, false), nil)
			},
			wantErr:  true,
			wantKind: apperrors.KindForbidden,
			wantMsg:  "Account is inactive. Please contact administrator.",
		},
		{
			name:     "inactive account with wrong password is unauthorized",
			password: "nope",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(hashedUser(t, "password123", false, false), nil)
			},
			wantErr:  true,
			wantKind: apperrors.KindUnauthorized,
		},
		{
			name:     "plaintext stored password never matches",
			password: "legacy",
			setupMock: func(_ *testing.T, m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{Username: "alice", Password: "legacy", IsActive: true}, nil)
			},
			wantErr:  true,
			wantKind: apperrors.KindUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(t, repo)
			svc := NewAuthService(repo, auth.NewBcryptHasher(bcrypt.MinCost))

			user, err := svc.Login(context.Background(), "alice", tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, user)
				assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, apperrors.MapErrorToHTTP(err).Message)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "alice", user.Username)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_AdminLogin(t *testing.T) {
	tests := []struct {
		name     string
		password string
		user     func(*testing.T) *model.User
		findErr  error
		wantErr  bool
		wantMsg  string
	}{
		{
			name:     "active admin",
			password: "root",
			user:     func(t *testing.T) *model.User { return hashedUser(t, "root", true, true) },
		},
		{
			name:     "not an admin",
			password: "root",
			user:     func(t *testing.T) *model.User { return hashedUser(t, "root", true, false) },
			wantErr:  true,
			wantMsg:  "Unauthorized: Admin access required",
		},
		{
			name:     "inactive admin",
			password: "root",
			user:     func(t *testing.T) *model.User { return hashedUser(t, "root", false, true) },
			wantErr:  true,
			wantMsg:  "Unauthorized: Admin access required",
		},
		{
			name:     "wrong password",
			password: "guess",
			user:     func(t *testing.T) *model.User { return hashedUser(t, "root", true, true) },
			wantErr:  true,
			wantMsg:  "Invalid username or password",
		},
		{
			name:     "unknown user",
			password: "root",
			user:     func(*testing.T) *model.User { return nil },
			findErr:  gorm.ErrRecordNotFound,
			wantErr:  true,
			wantMsg:  "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if u := tt.user(t); u != nil {
				repo.On("FindByUsername", mock.Anything, "alice").Return(u, nil)
			} else {
				repo.On("FindByUsername", mock.Anything, "alice").Return(nil, tt.findErr)
			}
			svc := NewAuthService(repo, auth.NewBcryptHasher(bcrypt.MinCost))

			user, err := svc.AdminLogin(context.Background(), "alice", tt.password)

			if tt.wantErr {
				assert.Nil(t, user)
				assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
				assert.Equal(t, tt.wantMsg, apperrors.MapErrorToHTTP(err).Message)
			} else {
				assert.NoError(t, err)
				assert.True(t, user.IsAdmin)
			}
			repo.AssertExpectations(t)
		})
	}
}
