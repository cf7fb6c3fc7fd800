package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/pkg/log"
)

// GormWalletRepository implements WalletRepository using GORM.
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates a new GORM-based wallet repository.
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// Transfer moves coins from transfer.SenderID to transfer.ReceiverID.
// The debit, the credit and the transfer record commit in one database
// transaction; row locks are taken in a fixed ID order so two opposing
// transfers cannot deadlock. On success transfer.ID and CreatedAt are
// populated.
func (r *GormWalletRepository) Transfer(ctx context.Context, transfer *domain.Transfer) error {
	l := log.Ctx(ctx)

	if transfer.Amount <= 0 {
		return ErrInvalidAmount
	}

	transfer.ID = uuid.New().String()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sender, receiver, err := lockPair(tx, transfer.SenderID, transfer.ReceiverID)
		if err != nil {
			return err
		}

		if sender.CoinBalance < transfer.Amount {
			return ErrInsufficientBalance
		}

		if err := adjustBalance(tx, sender.ID, -transfer.Amount); err != nil {
			return err
		}
		if err := adjustBalance(tx, receiver.ID, transfer.Amount); err != nil {
			return err
		}

		model := &domain.TransferModel{
			ID:         transfer.ID,
			SenderID:   transfer.SenderID,
			ReceiverID: transfer.ReceiverID,
			Amount:     transfer.Amount,
			Kind:       string(transfer.Kind),
			StreamID:   transfer.StreamID,
			GiftID:     transfer.GiftID,
			OrderID:    transfer.OrderID,
			Message:    transfer.Message,
		}
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		transfer.CreatedAt = model.CreatedAt
		return nil
	})
	if err != nil {
		return err
	}

	l.Debug().
		Str(log.FieldTransferID, transfer.ID).
		Int64(log.FieldAmount, transfer.Amount).
		Msg("transfer committed")
	return nil
}

// lockPair loads both user rows under FOR UPDATE, always locking the
// smaller ID first. Self-transfers lock a single row.
func lockPair(tx *gorm.DB, senderID, receiverID string) (sender, receiver *domain.UserModel, err error) {
	lockOrder := []string{senderID, receiverID}
	if receiverID < senderID {
		lockOrder[0], lockOrder[1] = receiverID, senderID
	}
	if senderID == receiverID {
		lockOrder = lockOrder[:1]
	}

	locked := make(map[string]*domain.UserModel, 2)
	for _, id := range lockOrder {
		var model domain.UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrUserNotFound
			}
			return nil, nil, err
		}
		locked[id] = &model
	}

	return locked[senderID], locked[receiverID], nil
}

func adjustBalance(tx *gorm.DB, userID string, delta int64) error {
	return tx.Model(&domain.UserModel{}).
		Where("id = ?", userID).
		Update("coin_balance", gorm.Expr("coin_balance + ?", delta)).Error
}

// EnsureTreasury creates the platform treasury account if it does not
// exist yet. Existing treasury balances are left untouched.
func (r *GormWalletRepository) EnsureTreasury(ctx context.Context, id string, initialBalance int64) error {
	model := &domain.UserModel{
		ID:           id,
		Email:        "treasury@fieldhouse.internal",
		Username:     "fieldhouse-treasury",
		DisplayName:  "Fieldhouse Treasury",
		PasswordHash: "!locked",
		Roles:        []string{"system"},
		CoinBalance:  initialBalance,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// GetBalance returns the current coin balance for a user.
func (r *GormWalletRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).Select("id", "coin_balance").First(&model, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, result.Error
	}
	return model.CoinBalance, nil
}

// GetTransfer retrieves a single transfer record by ID.
func (r *GormWalletRepository) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	var model domain.TransferModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListTransfers returns transfers where the user is sender or receiver,
// newest first.
func (r *GormWalletRepository) ListTransfers(ctx context.Context, userID string, page, pageSize int) ([]domain.Transfer, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.TransferModel{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []domain.TransferModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	transfers := make([]domain.Transfer, len(models))
	for i, model := range models {
		transfers[i] = *model.ToDomain()
	}
	return transfers, int(total), nil
}

// GetGift retrieves a gift catalog entry by ID.
func (r *GormWalletRepository) GetGift(ctx context.Context, id string) (*domain.Gift, error) {
	var model domain.GiftModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGiftNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListGifts returns the gift catalog, cheapest first.
func (r *GormWalletRepository) ListGifts(ctx context.Context, activeOnly bool) ([]domain.Gift, error) {
	query := r.db.WithContext(ctx).Model(&domain.GiftModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var models []domain.GiftModel
	if err := query.Order("price ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	gifts := make([]domain.Gift, len(models))
	for i, model := range models {
		gifts[i] = *model.ToDomain()
	}
	return gifts, nil
}

// SaveGift inserts or updates a gift catalog entry.
func (r *GormWalletRepository) SaveGift(ctx context.Context, gift *domain.Gift) error {
	if gift.ID == "" {
		gift.ID = uuid.New().String()
	}
	model := &domain.GiftModel{
		ID:      gift.ID,
		Name:    gift.Name,
		Price:   gift.Price,
		IconKey: gift.IconKey,
		Active:  gift.Active,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "icon_key", "active"}),
		}).
		Create(model).Error
}

// Checkout settles an order inside one database transaction: product
// stock is decremented under row locks, the buyer is debited once per
// seller with a ledger transfer, and the order with its items is
// recorded. Any failure rolls the whole purchase back.
func (r *GormWalletRepository) Checkout(ctx context.Context, order *domain.Order) error {
	l := log.Ctx(ctx)

	if len(order.Items) == 0 {
		return errors.New("order has no items")
	}

	order.ID = uuid.New().String()
	order.Status = domain.OrderStatusPaid

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Decrement stock under lock, item by item.
		perSeller := make(map[string]int64)
		var total int64
		for i := range order.Items {
			item := &order.Items[i]
			if item.Quantity <= 0 {
				return ErrInvalidAmount
			}

			var product domain.ProductModel
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ? AND active = ?", item.ProductID, true).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if product.Stock < item.Quantity {
				return ErrOutOfStock
			}
			if err := tx.Model(&domain.ProductModel{}).
				Where("id = ?", product.ID).
				Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}

			item.SellerID = product.SellerID
			item.UnitPrice = product.Price
			lineTotal := product.Price * int64(item.Quantity)
			perSeller[product.SellerID] += lineTotal
			total += lineTotal
		}
		order.Total = total

		// Settle buyer to each seller through the ledger.
		for sellerID, amount := range perSeller {
			transfer := &domain.Transfer{
				ID:         uuid.New().String(),
				SenderID:   order.BuyerID,
				ReceiverID: sellerID,
				Amount:     amount,
				Kind:       domain.TransferKindOrder,
				OrderID:    &order.ID,
			}

			sender, _, err := lockPair(tx, transfer.SenderID, transfer.ReceiverID)
			if err != nil {
				return err
			}
			if sender.CoinBalance < transfer.Amount {
				return ErrInsufficientBalance
			}
			if err := adjustBalance(tx, transfer.SenderID, -transfer.Amount); err != nil {
				return err
			}
			if err := adjustBalance(tx, transfer.ReceiverID, transfer.Amount); err != nil {
				return err
			}
			if err := tx.Create(&domain.TransferModel{
				ID:         transfer.ID,
				SenderID:   transfer.SenderID,
				ReceiverID: transfer.ReceiverID,
				Amount:     transfer.Amount,
				Kind:       string(transfer.Kind),
				OrderID:    transfer.OrderID,
			}).Error; err != nil {
				return err
			}
		}

		// Record the order itself.
		orderModel := &domain.OrderModel{
			ID:      order.ID,
			BuyerID: order.BuyerID,
			Total:   order.Total,
			Status:  string(order.Status),
		}
		for _, item := range order.Items {
			orderModel.Items = append(orderModel.Items, domain.OrderItemModel{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				SellerID:  item.SellerID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		if err := tx.Create(orderModel).Error; err != nil {
			return err
		}
		order.CreatedAt = orderModel.CreatedAt
		return nil
	})
	if err != nil {
		return err
	}

	l.Info().
		Str(log.FieldOrderID, order.ID).
		Int64(log.FieldAmount, order.Total).
		Msg("checkout committed")
	return nil
}

var _ WalletRepository = (*GormWalletRepository)(nil)
