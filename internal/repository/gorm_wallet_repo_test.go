package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.StreamModel{},
		&domain.FollowModel{},
		&domain.TransferModel{},
		&domain.GiftModel{},
		&domain.ProductModel{},
		&domain.CartItemModel{},
		&domain.OrderModel{},
		&domain.OrderItemModel{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, balance int64) string {
	t.Helper()

	id := uuid.New().String()
	require.NoError(t, db.Create(&domain.UserModel{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		Username:     "u_" + id[:8],
		PasswordHash: "x",
		Roles:        []string{"user"},
		CoinBalance:  balance,
	}).Error)
	return id
}

func TestGormWalletRepository_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves coins and records the transfer", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)
		sender := seedUser(t, db, 100)
		receiver := seedUser(t, db, 0)

		transfer := &domain.Transfer{
			SenderID:   sender,
			ReceiverID: receiver,
			Amount:     30,
			Kind:       domain.TransferKindDonation,
		}
		require.NoError(t, repo.Transfer(ctx, transfer))
		require.NotEmpty(t, transfer.ID)

		senderBalance, err := repo.GetBalance(ctx, sender)
		require.NoError(t, err)
		assert.Equal(t, int64(70), senderBalance)

		receiverBalance, err := repo.GetBalance(ctx, receiver)
		require.NoError(t, err)
		assert.Equal(t, int64(30), receiverBalance)

		got, err := repo.GetTransfer(ctx, transfer.ID)
		require.NoError(t, err)
		assert.Equal(t, sender, got.SenderID)
		assert.Equal(t, receiver, got.ReceiverID)
		assert.Equal(t, int64(30), got.Amount)
		assert.Equal(t, domain.TransferKindDonation, got.Kind)
	})

	t.Run("insufficient balance leaves both accounts untouched", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)
		sender := seedUser(t, db, 10)
		receiver := seedUser(t, db, 5)

		err := repo.Transfer(ctx, &domain.Transfer{
			SenderID:   sender,
			ReceiverID: receiver,
			Amount:     50,
			Kind:       domain.TransferKindGift,
		})
		require.ErrorIs(t, err, ErrInsufficientBalance)

		senderBalance, err := repo.GetBalance(ctx, sender)
		require.NoError(t, err)
		assert.Equal(t, int64(10), senderBalance)

		receiverBalance, err := repo.GetBalance(ctx, receiver)
		require.NoError(t, err)
		assert.Equal(t, int64(5), receiverBalance)

		var count int64
		require.NoError(t, db.Model(&domain.TransferModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rejects zero and negative amounts", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)
		sender := seedUser(t, db, 100)
		receiver := seedUser(t, db, 0)

		for _, amount := range []int64{0, -5} {
			err := repo.Transfer(ctx, &domain.Transfer{
				SenderID:   sender,
				ReceiverID: receiver,
				Amount:     amount,
				Kind:       domain.TransferKindDonation,
			})
			require.ErrorIs(t, err, ErrInvalidAmount)
		}

		var count int64
		require.NoError(t, db.Model(&domain.TransferModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("unknown receiver rolls back the debit", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)
		sender := seedUser(t, db, 100)

		err := repo.Transfer(ctx, &domain.Transfer{
			SenderID:   sender,
			ReceiverID: uuid.New().String(),
			Amount:     10,
			Kind:       domain.TransferKindDonation,
		})
		require.ErrorIs(t, err, ErrUserNotFound)

		senderBalance, err := repo.GetBalance(ctx, sender)
		require.NoError(t, err)
		assert.Equal(t, int64(100), senderBalance)
	})

	t.Run("self transfer keeps the balance unchanged", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)
		user := seedUser(t, db, 100)

		transfer := &domain.Transfer{
			SenderID:   user,
			ReceiverID: user,
			Amount:     40,
			Kind:       domain.TransferKindDonation,
		}
		require.NoError(t, repo.Transfer(ctx, transfer))

		balance, err := repo.GetBalance(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(100), balance)

		got, err := repo.GetTransfer(ctx, transfer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), got.Amount)
	})
}

func TestGormWalletRepository_ListTransfers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormWalletRepository(db)

	alice := seedUser(t, db, 1000)
	bob := seedUser(t, db, 1000)
	carol := seedUser(t, db, 1000)

	require.NoError(t, repo.Transfer(ctx, &domain.Transfer{SenderID: alice, ReceiverID: bob, Amount: 1, Kind: domain.TransferKindDonation}))
	require.NoError(t, repo.Transfer(ctx, &domain.Transfer{SenderID: bob, ReceiverID: alice, Amount: 2, Kind: domain.TransferKindDonation}))
	require.NoError(t, repo.Transfer(ctx, &domain.Transfer{SenderID: bob, ReceiverID: carol, Amount: 3, Kind: domain.TransferKindDonation}))

	transfers, total, err := repo.ListTransfers(ctx, alice, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.True(t, tr.SenderID == alice || tr.ReceiverID == alice)
	}
}

func TestGormWalletRepository_Gifts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormWalletRepository(db)

	rose := &domain.Gift{Name: "Rose", Price: 10, Active: true}
	rocket := &domain.Gift{Name: "Rocket", Price: 500, Active: true}
	retired := &domain.Gift{Name: "Old Rocket", Price: 300, Active: false}
	require.NoError(t, repo.SaveGift(ctx, rose))
	require.NoError(t, repo.SaveGift(ctx, rocket))
	require.NoError(t, repo.SaveGift(ctx, retired))

	t.Run("active catalog is price ordered", func(t *testing.T) {
		gifts, err := repo.ListGifts(ctx, true)
		require.NoError(t, err)
		require.Len(t, gifts, 2)
		assert.Equal(t, "Rose", gifts[0].Name)
		assert.Equal(t, "Rocket", gifts[1].Name)
	})

	t.Run("gift created inactive stays inactive", func(t *testing.T) {
		got, err := repo.GetGift(ctx, retired.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("save with existing id updates in place", func(t *testing.T) {
		rose.Price = 15
		require.NoError(t, repo.SaveGift(ctx, rose))

		got, err := repo.GetGift(ctx, rose.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15), got.Price)
	})

	t.Run("retiring a gift via upsert", func(t *testing.T) {
		rocket.Active = false
		require.NoError(t, repo.SaveGift(ctx, rocket))

		got, err := repo.GetGift(ctx, rocket.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)

		gifts, err := repo.ListGifts(ctx, true)
		require.NoError(t, err)
		require.Len(t, gifts, 1)
		assert.Equal(t, "Rose", gifts[0].Name)
	})

	t.Run("unknown gift", func(t *testing.T) {
		_, err := repo.GetGift(ctx, uuid.New().String())
		require.ErrorIs(t, err, ErrGiftNotFound)
	})
}

func TestGormWalletRepository_Checkout(t *testing.T) {
	ctx := context.Background()

	seedProduct := func(t *testing.T, db *gorm.DB, sellerID string, price int64, stock int) string {
		t.Helper()
		id := uuid.New().String()
		require.NoError(t, db.Create(&domain.ProductModel{
			ID:       id,
			SellerID: sellerID,
			Title:    "item " + id[:8],
			Price:    price,
			Stock:    stock,
			Active:   true,
		}).Error)
		return id
	}

	t.Run("settles per seller and decrements stock", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)

		buyer := seedUser(t, db, 1000)
		sellerA := seedUser(t, db, 0)
		sellerB := seedUser(t, db, 0)
		productA := seedProduct(t, db, sellerA, 100, 5)
		productB := seedProduct(t, db, sellerB, 50, 2)

		order := &domain.Order{
			BuyerID: buyer,
			Items: []domain.OrderItem{
				{ProductID: productA, Quantity: 2},
				{ProductID: productB, Quantity: 1},
			},
		}
		require.NoError(t, repo.Checkout(ctx, order))
		assert.Equal(t, int64(250), order.Total)
		assert.Equal(t, domain.OrderStatusPaid, order.Status)

		buyerBalance, err := repo.GetBalance(ctx, buyer)
		require.NoError(t, err)
		assert.Equal(t, int64(750), buyerBalance)

		balanceA, err := repo.GetBalance(ctx, sellerA)
		require.NoError(t, err)
		assert.Equal(t, int64(200), balanceA)

		balanceB, err := repo.GetBalance(ctx, sellerB)
		require.NoError(t, err)
		assert.Equal(t, int64(50), balanceB)

		var product domain.ProductModel
		require.NoError(t, db.First(&product, "id = ?", productA).Error)
		assert.Equal(t, 3, product.Stock)

		var transferCount int64
		require.NoError(t, db.Model(&domain.TransferModel{}).
			Where("order_id = ?", order.ID).Count(&transferCount).Error)
		assert.Equal(t, int64(2), transferCount)
	})

	t.Run("out of stock rolls everything back", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)

		buyer := seedUser(t, db, 1000)
		seller := seedUser(t, db, 0)
		cheap := seedProduct(t, db, seller, 10, 5)
		scarce := seedProduct(t, db, seller, 10, 1)

		err := repo.Checkout(ctx, &domain.Order{
			BuyerID: buyer,
			Items: []domain.OrderItem{
				{ProductID: cheap, Quantity: 2},
				{ProductID: scarce, Quantity: 3},
			},
		})
		require.ErrorIs(t, err, ErrOutOfStock)

		buyerBalance, err := repo.GetBalance(ctx, buyer)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), buyerBalance)

		var product domain.ProductModel
		require.NoError(t, db.First(&product, "id = ?", cheap).Error)
		assert.Equal(t, 5, product.Stock)

		var orderCount int64
		require.NoError(t, db.Model(&domain.OrderModel{}).Count(&orderCount).Error)
		assert.Zero(t, orderCount)
	})

	t.Run("insufficient buyer balance rolls back stock", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)

		buyer := seedUser(t, db, 30)
		seller := seedUser(t, db, 0)
		product := seedProduct(t, db, seller, 100, 5)

		err := repo.Checkout(ctx, &domain.Order{
			BuyerID: buyer,
			Items:   []domain.OrderItem{{ProductID: product, Quantity: 1}},
		})
		require.ErrorIs(t, err, ErrInsufficientBalance)

		var model domain.ProductModel
		require.NoError(t, db.First(&model, "id = ?", product).Error)
		assert.Equal(t, 5, model.Stock)
	})

	t.Run("inactive product cannot be bought", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormWalletRepository(db)

		buyer := seedUser(t, db, 1000)
		seller := seedUser(t, db, 0)
		productID := seedProduct(t, db, seller, 10, 5)
		require.NoError(t, db.Model(&domain.ProductModel{}).
			Where("id = ?", productID).Update("active", false).Error)

		err := repo.Checkout(ctx, &domain.Order{
			BuyerID: buyer,
			Items:   []domain.OrderItem{{ProductID: productID, Quantity: 1}},
		})
		require.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestGormWalletRepository_EnsureTreasury(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormWalletRepository(db)

	id := uuid.New().String()
	require.NoError(t, repo.EnsureTreasury(ctx, id, 500))

	balance, err := repo.GetBalance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	// A second call must not reset a drained treasury.
	require.NoError(t, repo.Transfer(ctx, &domain.Transfer{
		SenderID:   id,
		ReceiverID: seedUser(t, db, 0),
		Amount:     200,
		Kind:       domain.TransferKindGrant,
	}))
	require.NoError(t, repo.EnsureTreasury(ctx, id, 500))

	balance, err = repo.GetBalance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)
}
