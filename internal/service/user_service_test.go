package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/internal/cache"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/jwt"
	"github.com/atims0208/fieldhouse/pkg/storage"
)

func newUserService(t *testing.T) (UserService, *jwt.Manager, *gorm.DB) {
	t.Helper()

	db := newServiceTestDB(t)
	tokens, err := jwt.NewManager(15*time.Minute, time.Hour, "fieldhouse-test")
	require.NoError(t, err)
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	profiles := cache.NewProfileCache(client, time.Minute)

	svc := NewUserService(repository.NewGormUserRepository(db), tokens, store, profiles)
	return svc, tokens, db
}

func registerReq(email, username string) *domain.RegisterRequest {
	return &domain.RegisterRequest{
		Email:       email,
		Username:    username,
		Password:    "hunter22",
		DisplayName: "Test User",
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newUserService(t)

	auth, err := svc.Register(ctx, registerReq("New@Example.com", "newuser"))
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", auth.User.Email)
	assert.Equal(t, "newuser", auth.User.Username)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)

	claims, err := tokens.ValidateToken(auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, claims.UserID)
	assert.Contains(t, claims.Roles, "user")

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, registerReq("new@example.com", "otheruser"))
		require.ErrorIs(t, err, repository.ErrEmailExists)
	})

	t.Run("login with uppercase email", func(t *testing.T) {
		got, err := svc.Login(ctx, &domain.LoginRequest{Email: "NEW@example.com", Password: "hunter22"})
		require.NoError(t, err)
		assert.Equal(t, auth.User.ID, got.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "new@example.com", Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical to wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "ghost@example.com", Password: "hunter22"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_RefreshKeepsIdentityClaims(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newUserService(t)

	auth, err := svc.Register(ctx, registerReq("refresh@example.com", "refresher"))
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, &domain.RefreshTokenRequest{RefreshToken: auth.RefreshToken})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, claims.UserID)
	assert.Equal(t, "refresher", claims.Username)
	assert.Equal(t, "refresh@example.com", claims.Email)
	assert.Equal(t, []string{"user"}, claims.Roles)

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, err := svc.RefreshToken(ctx, &domain.RefreshTokenRequest{RefreshToken: auth.AccessToken})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_BannedLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newUserService(t)

	auth, err := svc.Register(ctx, registerReq("banned@example.com", "troll"))
	require.NoError(t, err)

	userRepo := repository.NewGormUserRepository(db)
	require.NoError(t, userRepo.SetBanned(ctx, auth.User.ID, true))

	_, err = svc.Login(ctx, &domain.LoginRequest{Email: "banned@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrUserBanned)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newUserService(t)

	auth, err := svc.Register(ctx, registerReq("rotate@example.com", "rotator"))
	require.NoError(t, err)

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, auth.User.ID, &domain.ChangePasswordRequest{
			CurrentPassword: "nope",
			NewPassword:     "newsecret",
		})
		require.ErrorIs(t, err, ErrWrongPassword)
	})

	require.NoError(t, svc.ChangePassword(ctx, auth.User.ID, &domain.ChangePasswordRequest{
		CurrentPassword: "hunter22",
		NewPassword:     "newsecret",
	}))

	t.Run("old sessions are revoked", func(t *testing.T) {
		_, err := tokens.ValidateToken(auth.AccessToken)
		require.ErrorIs(t, err, jwt.ErrRevokedToken)
	})

	t.Run("old password no longer works", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "rotate@example.com", Password: "hunter22"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("new password works", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "rotate@example.com", Password: "newsecret"})
		require.NoError(t, err)
	})
}

func TestUserService_DeleteFreesUniqueFields(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	auth, err := svc.Register(ctx, registerReq("reuse@example.com", "phoenix"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, auth.User.ID))

	_, err = svc.GetUser(ctx, auth.User.ID)
	require.ErrorIs(t, err, repository.ErrUserNotFound)

	reborn, err := svc.Register(ctx, registerReq("reuse@example.com", "phoenix"))
	require.NoError(t, err)
	assert.NotEqual(t, auth.User.ID, reborn.User.ID)
}

func TestUserService_PublicProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	_, err := svc.Register(ctx, registerReq("pub@example.com", "publico"))
	require.NoError(t, err)

	profile, err := svc.GetPublicProfile(ctx, "publico")
	require.NoError(t, err)
	assert.Equal(t, "publico", profile.Username)
	assert.Empty(t, profile.Email)

	_, err = svc.GetPublicProfile(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}
