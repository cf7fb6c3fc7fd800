package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/internal/config"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/hub"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/database"
	"github.com/atims0208/fieldhouse/pkg/pubsub"
)

func newServiceTestDB(t *testing.T) *gorm.DB {
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
		&domain.OrderModel{},
		&domain.OrderItemModel{},
	))
	return db
}

func newServiceTestHub() *hub.Hub {
	h := hub.NewHub(config.WebSocketConfig{
		MaxMessageSize: 4096,
		WriteWait:      time.Second,
		PongWait:       time.Minute,
		PingInterval:   30 * time.Second,
	})
	go h.Run()
	return h
}

// capturePublisher records bus events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) byType(eventType string) []*pubsub.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*pubsub.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func seedAccount(t *testing.T, db *gorm.DB, username string, balance int64) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, db.Create(&domain.UserModel{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		PasswordHash: "x",
		Roles:        []string{"user"},
		CoinBalance:  balance,
	}).Error)
	return id
}

func seedLiveStream(t *testing.T, db *gorm.DB, ownerID, ownerName string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now()
	require.NoError(t, db.Create(&domain.StreamModel{
		ID:            id,
		OwnerID:       ownerID,
		OwnerUsername: ownerName,
		Title:         "live show",
		Status:        string(domain.StreamStatusLive),
		StartedAt:     &now,
	}).Error)
	return id
}

type walletFixture struct {
	db     *gorm.DB
	hub    *hub.Hub
	bus    *capturePublisher
	wallet WalletService
	repo   repository.WalletRepository
	userID func(t *testing.T, username string, balance int64) string
}

func newWalletFixture(t *testing.T) *walletFixture {
	db := newServiceTestDB(t)
	h := newServiceTestHub()
	bus := &capturePublisher{}

	walletRepo := repository.NewGormWalletRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	streamRepo := repository.NewGormStreamRepository(db)

	return &walletFixture{
		db:     db,
		hub:    h,
		bus:    bus,
		wallet: NewWalletService(walletRepo, userRepo, streamRepo, h, bus),
		repo:   walletRepo,
		userID: func(t *testing.T, username string, balance int64) string {
			return seedAccount(t, db, username, balance)
		},
	}
}

func TestWalletService_SendGift(t *testing.T) {
	ctx := context.Background()

	t.Run("gift to a live stream settles and fans out", func(t *testing.T) {
		f := newWalletFixture(t)
		fan := f.userID(t, "fan", 500)
		streamer := f.userID(t, "streamer", 0)
		streamID := seedLiveStream(t, f.db, streamer, "streamer")

		gift := &domain.Gift{Name: "Rocket", Price: 200, Active: true}
		require.NoError(t, f.repo.SaveGift(ctx, gift))

		viewer := hub.NewClient(uuid.New().String(), f.hub, nil, config.WebSocketConfig{})
		f.hub.JoinStream(viewer, streamID)

		transfer, err := f.wallet.SendGift(ctx, fan, &domain.SendGiftRequest{
			GiftID:   gift.ID,
			StreamID: streamID,
			Message:  "gg",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(200), transfer.Amount)
		assert.Equal(t, domain.TransferKindGift, transfer.Kind)

		fanBalance, err := f.repo.GetBalance(ctx, fan)
		require.NoError(t, err)
		assert.Equal(t, int64(300), fanBalance)

		streamerBalance, err := f.repo.GetBalance(ctx, streamer)
		require.NoError(t, err)
		assert.Equal(t, int64(200), streamerBalance)

		// Local viewers see the overlay event.
		select {
		case raw := <-viewer.Send:
			var msg struct {
				Type    string                 `json:"type"`
				Payload pubsub.GiftSentPayload `json:"payload"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, pubsub.EventGiftSent, msg.Type)
			assert.Equal(t, "fan", msg.Payload.SenderName)
			assert.Equal(t, "Rocket", msg.Payload.GiftName)
		case <-time.After(time.Second):
			t.Fatal("viewer did not receive gift event")
		}

		// Other instances see it on the bus.
		events := f.bus.byType(pubsub.EventGiftSent)
		require.Len(t, events, 1)
		assert.Equal(t, streamID, events[0].StreamID)
	})

	t.Run("gift to a stream that is not live", func(t *testing.T) {
		f := newWalletFixture(t)
		fan := f.userID(t, "fan", 500)
		streamer := f.userID(t, "streamer", 0)

		streamID := uuid.New().String()
		require.NoError(t, f.db.Create(&domain.StreamModel{
			ID:            streamID,
			OwnerID:       streamer,
			OwnerUsername: "streamer",
			Title:         "offline",
			Status:        string(domain.StreamStatusCreated),
		}).Error)

		gift := &domain.Gift{Name: "Rose", Price: 10, Active: true}
		require.NoError(t, f.repo.SaveGift(ctx, gift))

		_, err := f.wallet.SendGift(ctx, fan, &domain.SendGiftRequest{GiftID: gift.ID, StreamID: streamID})
		require.ErrorIs(t, err, ErrStreamNotLive)
	})

	t.Run("retired gift cannot be sent", func(t *testing.T) {
		f := newWalletFixture(t)
		fan := f.userID(t, "fan", 500)
		streamer := f.userID(t, "streamer", 0)
		streamID := seedLiveStream(t, f.db, streamer, "streamer")

		gift := &domain.Gift{Name: "Old", Price: 10, Active: false}
		require.NoError(t, f.repo.SaveGift(ctx, gift))

		_, err := f.wallet.SendGift(ctx, fan, &domain.SendGiftRequest{GiftID: gift.ID, StreamID: streamID})
		require.ErrorIs(t, err, ErrGiftInactive)
	})

	t.Run("insufficient balance fails before any event", func(t *testing.T) {
		f := newWalletFixture(t)
		fan := f.userID(t, "fan", 5)
		streamer := f.userID(t, "streamer", 0)
		streamID := seedLiveStream(t, f.db, streamer, "streamer")

		gift := &domain.Gift{Name: "Rocket", Price: 200, Active: true}
		require.NoError(t, f.repo.SaveGift(ctx, gift))

		_, err := f.wallet.SendGift(ctx, fan, &domain.SendGiftRequest{GiftID: gift.ID, StreamID: streamID})
		require.ErrorIs(t, err, repository.ErrInsufficientBalance)
		assert.Empty(t, f.bus.byType(pubsub.EventGiftSent))
	})
}

func TestWalletService_Donate(t *testing.T) {
	ctx := context.Background()

	t.Run("direct donation without a stream", func(t *testing.T) {
		f := newWalletFixture(t)
		fan := f.userID(t, "fan", 100)
		streamer := f.userID(t, "streamer", 0)

		transfer, err := f.wallet.Donate(ctx, fan, &domain.DonateRequest{
			ReceiverID: streamer,
			Amount:     40,
		})
		require.NoError(t, err)
		assert.Nil(t, transfer.StreamID)
		assert.Empty(t, f.bus.byType(pubsub.EventDonation))

		balance, err := f.repo.GetBalance(ctx, streamer)
		require.NoError(t, err)
		assert.Equal(t, int64(40), balance)
	})

	t.Run("stream-tied donation fans out", func(t *testing.T) {
		f := newWalletFixture(t)
		fan := f.userID(t, "fan", 100)
		streamer := f.userID(t, "streamer", 0)
		streamID := seedLiveStream(t, f.db, streamer, "streamer")

		transfer, err := f.wallet.Donate(ctx, fan, &domain.DonateRequest{
			ReceiverID: streamer,
			Amount:     40,
			StreamID:   streamID,
		})
		require.NoError(t, err)
		require.NotNil(t, transfer.StreamID)
		assert.Len(t, f.bus.byType(pubsub.EventDonation), 1)
	})

	t.Run("donating to yourself is rejected", func(t *testing.T) {
		f := newWalletFixture(t)
		fan := f.userID(t, "fan", 100)

		_, err := f.wallet.Donate(ctx, fan, &domain.DonateRequest{ReceiverID: fan, Amount: 10})
		require.ErrorIs(t, err, ErrSelfDonation)
	})
}

func TestWalletService_GrantCoins(t *testing.T) {
	ctx := context.Background()
	f := newWalletFixture(t)

	gormRepo := f.repo.(*repository.GormWalletRepository)
	require.NoError(t, gormRepo.EnsureTreasury(ctx, TreasuryUserID, 10_000))

	admin := f.userID(t, "admin", 0)
	user := f.userID(t, "winner", 0)

	transfer, err := f.wallet.GrantCoins(ctx, admin, &domain.GrantCoinsRequest{
		UserID: user,
		Amount: 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, TreasuryUserID, transfer.SenderID)
	assert.Equal(t, domain.TransferKindGrant, transfer.Kind)

	balance, err := f.repo.GetBalance(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), balance)

	treasury, err := f.repo.GetBalance(ctx, TreasuryUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), treasury)
}
