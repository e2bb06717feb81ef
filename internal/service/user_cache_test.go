package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"docvault/internal/auth"
	"docvault/internal/cache"
	apperrors "docvault/internal/errors"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/testutil"
)

func TestUserService_CacheAside(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.New(mr.Addr(), "", 0, time.Minute)
	t.Cleanup(func() { _ = rc.Close() })

	gdb := testutil.NewDB(t)
	svc := NewUserService(repository.NewUserRepository(gdb), auth.NewBcryptHasher(bcrypt.MinCost), rc)
	ctx := context.Background()

	stored := testutil.CreateUser(t, gdb, "alice", true, false)
	key := fmt.Sprintf("user:%d", stored.ID)

	user, err := svc.GetUserByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	require.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	// a write behind the service's back is masked until invalidation
	require.NoError(t, gdb.Model(&model.User{}).Where("id = ?", stored.ID).Update("full_name", "Alice L").Error)
	user, err = svc.GetUserByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Empty(t, user.FullName)

	t.Run("toggle status evicts", func(t *testing.T) {
		_, err := svc.ToggleStatus(ctx, stored.ID)
		require.NoError(t, err)
		assert.False(t, mr.Exists(key))

		user, err := svc.GetUserByID(ctx, stored.ID)
		require.NoError(t, err)
		assert.False(t, user.IsActive)
		assert.Equal(t, "Alice L", user.FullName)
		assert.True(t, mr.Exists(key))
	})

	t.Run("update evicts", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, stored.ID, UserPatch{Email: strPtr("alice@new.example")})
		require.NoError(t, err)
		assert.False(t, mr.Exists(key))

		user, err := svc.GetUserByID(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@new.example", user.Email)
		assert.False(t, user.IsActive)
	})

	t.Run("delete evicts", func(t *testing.T) {
		require.True(t, mr.Exists(key))
		require.NoError(t, svc.DeleteUser(ctx, stored.ID))
		assert.False(t, mr.Exists(key))

		_, err := svc.GetUserByID(ctx, stored.ID)
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
		assert.Equal(t, fmt.Sprintf("User not found with id: %d", stored.ID), apperrors.MapErrorToHTTP(err).Message)
		assert.False(t, mr.Exists(key))
	})
}
