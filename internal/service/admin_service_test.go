package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/jwt"
)

func newAdminService(t *testing.T) (AdminService, *jwt.Manager, *gorm.DB) {
	t.Helper()

	db := newServiceTestDB(t)
	tokens, err := jwt.NewManager(15*time.Minute, time.Hour, "fieldhouse-test")
	require.NoError(t, err)

	svc := NewAdminService(
		repository.NewGormUserRepository(db),
		repository.NewGormStreamRepository(db),
		repository.NewGormProductRepository(db),
		tokens,
	)
	return svc, tokens, db
}

func TestAdminService_BanUnban(t *testing.T) {
	ctx := context.Background()
	svc, tokens, db := newAdminService(t)

	userRepo := repository.NewGormUserRepository(db)
	adminID := seedAccount(t, db, "admin", 0)
	userID := seedAccount(t, db, "offender", 0)

	access, _, _, _, err := tokens.GenerateTokenPair(userID, "offender@example.com", "offender", []string{"user"})
	require.NoError(t, err)

	require.NoError(t, svc.BanUser(ctx, adminID, userID))

	banned, err := userRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, banned.Banned)

	t.Run("ban revokes outstanding tokens", func(t *testing.T) {
		_, err := tokens.ValidateToken(access)
		require.ErrorIs(t, err, jwt.ErrRevokedToken)
	})

	t.Run("unban lifts the flag", func(t *testing.T) {
		require.NoError(t, svc.UnbanUser(ctx, adminID, userID))
		user, err := userRepo.GetByID(ctx, userID)
		require.NoError(t, err)
		assert.False(t, user.Banned)
	})

	t.Run("banning a missing user fails", func(t *testing.T) {
		err := svc.BanUser(ctx, adminID, "missing")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestAdminService_EndStream(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newAdminService(t)

	streamRepo := repository.NewGormStreamRepository(db)
	adminID := seedAccount(t, db, "admin", 0)
	ownerID := seedAccount(t, db, "streamer", 0)
	streamID := seedLiveStream(t, db, ownerID, "streamer")

	require.NoError(t, svc.EndStream(ctx, adminID, streamID))

	stream, err := streamRepo.GetByID(ctx, streamID)
	require.NoError(t, err)
	assert.Equal(t, domain.StreamStatusEnded, stream.Status)

	t.Run("ending an ended stream is a no-op", func(t *testing.T) {
		require.NoError(t, svc.EndStream(ctx, adminID, streamID))
	})

	t.Run("unknown stream fails", func(t *testing.T) {
		err := svc.EndStream(ctx, adminID, "missing")
		require.ErrorIs(t, err, repository.ErrStreamNotFound)
	})
}

func TestAdminService_RemoveProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newAdminService(t)

	productRepo := repository.NewGormProductRepository(db)
	adminID := seedAccount(t, db, "admin", 0)
	sellerID := seedAccount(t, db, "seller", 0)

	product := &domain.Product{
		SellerID: sellerID,
		Title:    "counterfeit jersey",
		Price:    500,
		Stock:    10,
	}
	require.NoError(t, productRepo.Create(ctx, product))

	require.NoError(t, svc.RemoveProduct(ctx, adminID, product.ID))

	_, err := productRepo.GetByID(ctx, product.ID)
	require.ErrorIs(t, err, repository.ErrProductNotFound)

	t.Run("removing a missing product fails", func(t *testing.T) {
		err := svc.RemoveProduct(ctx, adminID, "missing")
		require.ErrorIs(t, err, repository.ErrProductNotFound)
	})
}
