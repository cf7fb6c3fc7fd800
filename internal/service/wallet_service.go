package service

import (
	"context"
	"errors"

	"github.com/atims0208/fieldhouse/internal/audit"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/hub"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/pubsub"
)

// TreasuryUserID is the reserved platform account that admin coin
// grants are debited from. It is seeded at startup.
const TreasuryUserID = "00000000-0000-0000-0000-00000000c01f"

var (
	ErrGiftInactive = errors.New("gift is not available")
	ErrSelfDonation = errors.New("cannot donate to yourself")
)

// walletServiceImpl implements WalletService interface.
type walletServiceImpl struct {
	repo       repository.WalletRepository
	userRepo   repository.UserRepository
	streamRepo repository.StreamRepository
	hub        *hub.Hub
	publisher  pubsub.Publisher
}

// NewWalletService creates a new wallet service.
func NewWalletService(
	repo repository.WalletRepository,
	userRepo repository.UserRepository,
	streamRepo repository.StreamRepository,
	h *hub.Hub,
	publisher pubsub.Publisher,
) WalletService {
	return &walletServiceImpl{
		repo:       repo,
		userRepo:   userRepo,
		streamRepo: streamRepo,
		hub:        h,
		publisher:  publisher,
	}
}

// GetBalance returns the caller's coin balance.
func (s *walletServiceImpl) GetBalance(ctx context.Context, userID string) (*domain.BalanceResponse, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.BalanceResponse{UserID: userID, CoinBalance: balance}, nil
}

// ListTransfers returns the caller's transfer history.
func (s *walletServiceImpl) ListTransfers(ctx context.Context, userID string, page, pageSize int) (*domain.ListTransfersResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	transfers, total, err := s.repo.ListTransfers(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &domain.ListTransfersResponse{
		Transfers: transfers,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// SendGift sends a catalog gift to the owner of a live stream. The
// coin movement commits atomically; the stream overlay event goes out
// only after the ledger commit.
func (s *walletServiceImpl) SendGift(ctx context.Context, senderID string, req *domain.SendGiftRequest) (*domain.Transfer, error) {
	l := log.Ctx(ctx)

	gift, err := s.repo.GetGift(ctx, req.GiftID)
	if err != nil {
		return nil, err
	}
	if !gift.Active {
		return nil, ErrGiftInactive
	}

	stream, err := s.streamRepo.GetByID(ctx, req.StreamID)
	if err != nil {
		return nil, err
	}
	if stream.Status != domain.StreamStatusLive {
		return nil, ErrStreamNotLive
	}

	transfer := &domain.Transfer{
		SenderID:   senderID,
		ReceiverID: stream.OwnerID,
		Amount:     gift.Price,
		Kind:       domain.TransferKindGift,
		StreamID:   &stream.ID,
		GiftID:     &gift.ID,
		Message:    req.Message,
	}
	if err := s.repo.Transfer(ctx, transfer); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	senderName := senderID
	if err == nil {
		senderName = sender.Username
	}

	s.fanOut(ctx, pubsub.EventGiftSent, stream.ID, pubsub.GiftSentPayload{
		TransferID: transfer.ID,
		SenderID:   senderID,
		SenderName: senderName,
		ReceiverID: stream.OwnerID,
		GiftID:     gift.ID,
		GiftName:   gift.Name,
		Amount:     gift.Price,
		Message:    req.Message,
	})

	audit.LogWithDetail(ctx, audit.ActionGiftSent, senderID, stream.OwnerID, "gift sent")
	l.Info().
		Str(log.FieldTransferID, transfer.ID).
		Str(log.FieldStreamID, stream.ID).
		Int64(log.FieldAmount, gift.Price).
		Msg("gift transfer committed")
	return transfer, nil
}

// Donate sends coins directly to another user, optionally tied to a
// stream for overlay display.
func (s *walletServiceImpl) Donate(ctx context.Context, senderID string, req *domain.DonateRequest) (*domain.Transfer, error) {
	if senderID == req.ReceiverID {
		return nil, ErrSelfDonation
	}

	transfer := &domain.Transfer{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Kind:       domain.TransferKindDonation,
		Message:    req.Message,
	}
	if req.StreamID != "" {
		stream, err := s.streamRepo.GetByID(ctx, req.StreamID)
		if err != nil {
			return nil, err
		}
		transfer.StreamID = &stream.ID
	}

	if err := s.repo.Transfer(ctx, transfer); err != nil {
		return nil, err
	}

	if transfer.StreamID != nil {
		sender, err := s.userRepo.GetByID(ctx, senderID)
		senderName := senderID
		if err == nil {
			senderName = sender.Username
		}
		s.fanOut(ctx, pubsub.EventDonation, *transfer.StreamID, pubsub.DonationPayload{
			TransferID: transfer.ID,
			SenderID:   senderID,
			SenderName: senderName,
			ReceiverID: req.ReceiverID,
			Amount:     req.Amount,
			Message:    req.Message,
		})
	}

	audit.LogWithDetail(ctx, audit.ActionDonation, senderID, req.ReceiverID, "donation sent")
	return transfer, nil
}

// GrantCoins moves coins from the platform treasury to a user.
func (s *walletServiceImpl) GrantCoins(ctx context.Context, adminID string, req *domain.GrantCoinsRequest) (*domain.Transfer, error) {
	transfer := &domain.Transfer{
		SenderID:   TreasuryUserID,
		ReceiverID: req.UserID,
		Amount:     req.Amount,
		Kind:       domain.TransferKindGrant,
		Message:    req.Message,
	}
	if err := s.repo.Transfer(ctx, transfer); err != nil {
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionCoinsGrant, adminID, req.UserID, "coins granted")
	return transfer, nil
}

// ListGifts returns the active gift catalog.
func (s *walletServiceImpl) ListGifts(ctx context.Context) ([]domain.Gift, error) {
	return s.repo.ListGifts(ctx, true)
}

// SaveGift inserts or updates a gift catalog entry.
func (s *walletServiceImpl) SaveGift(ctx context.Context, gift *domain.Gift) error {
	if gift.Price <= 0 {
		return repository.ErrInvalidAmount
	}
	return s.repo.SaveGift(ctx, gift)
}

// fanOut delivers an event to local viewers and to other instances
// over the bus.
func (s *walletServiceImpl) fanOut(ctx context.Context, eventType, streamID string, payload interface{}) {
	l := log.Ctx(ctx)

	if err := s.hub.Broadcast(streamID, map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}, ""); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("local broadcast failed")
	}

	event, err := pubsub.NewEvent(eventType, streamID, payload)
	if err != nil {
		l.Error().Err(err).Msg("failed to build event")
		return
	}
	if err := s.publisher.Publish(ctx, pubsub.StreamEventsChannel(streamID), event); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to publish event")
	}
}

var _ WalletService = (*walletServiceImpl)(nil)
