package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docvault/internal/auth"
	"docvault/internal/cache"
	apperrors "docvault/internal/errors"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// NewUser carries the fields accepted at registration. A nil IsActive
// defaults to true and a nil IsAdmin to false.
type NewUser struct {
	Username string
	Email    string
	Password string
	FullName string
	IsActive *bool
	IsAdmin  *bool
}

// UserPatch lists the fields to overwrite; nil means "leave unchanged".
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
	IsActive *bool
	IsAdmin  *bool
}

// UserService exposes user account operations.
type UserService interface {
	CreateUser(ctx context.Context, in NewUser) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint, patch UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	ToggleStatus(ctx context.Context, id uint) (*model.User, error)
	ToggleAdmin(ctx context.Context, id uint) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Stats(ctx context.Context) (*model.UserStats, error)
	EnsureAdmin(ctx context.Context, in NewUser) (*model.User, bool, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
	cache  *cache.Client
}

// NewUserService builds a UserService; cache may be nil.
func NewUserService(repo repository.UserRepository, hasher auth.PasswordHasher, cache *cache.Client) UserService {
	return &userService{repo: repo, hasher: hasher, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.BadInput("username, email and password are required")
	}
	if err := s.ensureUnique(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err, "create user")
	}

	user := &model.User{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: hashed,
		IsActive: true,
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateWriteError(err, "create user")
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), user)
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, translateReadError(err, "User not found with username: %s", username)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, translateReadError(err, "User not found with email: %s", email)
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "list users")
	}
	return users, nil
}

// UpdateUser always reads from the store so the password hash is never
// taken from a cached copy.
func (s *userService) UpdateUser(ctx context.Context, id uint, patch UserPatch) (*model.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	username, email := "", ""
	if patch.Username != nil && *patch.Username != user.Username {
		username = *patch.Username
	}
	if patch.Email != nil && *patch.Email != user.Email {
		email = *patch.Email
	}
	if err := s.ensureUnique(ctx, username, email); err != nil {
		return nil, err
	}

	if patch.Username != nil {
		if *patch.Username == "" {
			return nil, apperrors.BadInput("username must not be empty")
		}
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		if *patch.Email == "" {
			return nil, apperrors.BadInput("email must not be empty")
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil && *patch.Password != "" {
		hashed, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, apperrors.Internal(err, "update user")
		}
		user.Password = hashed
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsAdmin != nil {
		user.IsAdmin = *patch.IsAdmin
	}

	return s.save(ctx, user)
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user); err != nil {
		return apperrors.Internal(err, "delete user %d", id)
	}
	s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) ToggleStatus(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	return s.save(ctx, user)
}

func (s *userService) ToggleAdmin(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = !user.IsAdmin
	return s.save(ctx, user)
}

func (s *userService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ok, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, apperrors.Internal(err, "check username")
	}
	return ok, nil
}

func (s *userService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ok, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, apperrors.Internal(err, "check email")
	}
	return ok, nil
}

func (s *userService) Stats(ctx context.Context) (*model.UserStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "user stats")
	}
	return stats, nil
}

// EnsureAdmin creates an active administrator unless the username is already
// taken. The bool reports whether a row was created.
func (s *userService) EnsureAdmin(ctx context.Context, in NewUser) (*model.User, bool, error) {
	existing, err := s.repo.FindByUsername(ctx, in.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperrors.Internal(err, "look up %s", in.Username)
	}

	active, admin := true, true
	in.IsActive, in.IsAdmin = &active, &admin
	user, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *userService) load(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadError(err, "User not found with id: %d", id)
	}
	return user, nil
}

func (s *userService) save(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translateWriteError(err, "update user %d", user.ID)
	}
	s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, nil
}

// ensureUnique checks the non-empty values against existing accounts.
func (s *userService) ensureUnique(ctx context.Context, username, email string) error {
	if username != "" {
		taken, err := s.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("Username already exists: %s", username)
		}
	}
	if email != "" {
		taken, err := s.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("Email already exists: %s", email)
		}
	}
	return nil
}

// translateReadError turns a missing row into NotFound with the given message.
func translateReadError(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(format, args...)
	}
	return apperrors.Internal(err, "query failed")
}

// translateWriteError reports unique-constraint violations as Conflict.
func translateWriteError(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(err, apperrors.KindConflict, "username or email already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Wrap(err, apperrors.KindBadInput, "referenced record does not exist")
	default:
		return apperrors.Internal(err, format, args...)
	}
}
