package repository

import (
	"context"
	"errors"

	"github.com/atims0208/fieldhouse/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")

	ErrStreamNotFound = errors.New("stream not found")

	ErrAlreadyFollowing = errors.New("already following")
	ErrFollowNotFound   = errors.New("follow relationship not found")

	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOutOfStock       = errors.New("insufficient stock")

	ErrGiftNotFound        = errors.New("gift not found")
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrInvalidAmount       = errors.New("transfer amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateAvatar(ctx context.Context, userID, avatarKey string) error
	SetBanned(ctx context.Context, userID string, banned bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int) ([]domain.User, int, error)
}

// StreamRepository defines the interface for stream data persistence.
type StreamRepository interface {
	Create(ctx context.Context, stream *domain.Stream) error
	GetByID(ctx context.Context, id string) (*domain.Stream, error)
	GetByStreamKey(ctx context.Context, key string) (*domain.Stream, error)
	Update(ctx context.Context, stream *domain.Stream) error
	UpdateChannel(ctx context.Context, stream *domain.Stream) error
	UpdateStatus(ctx context.Context, id string, status domain.StreamStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int, status string) ([]domain.Stream, int, error)
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Stream, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]domain.Stream, int, error)
}

// FollowRepository defines the interface for the follow graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowerCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
	ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, int, error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, int, error)
}

// ProductRepository defines the interface for marketplace persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req domain.ListProductsRequest) ([]domain.Product, int, error)

	UpsertCartItem(ctx context.Context, userID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID string) error
	GetCart(ctx context.Context, userID string) ([]domain.CartItem, error)
	ClearCart(ctx context.Context, userID string) error

	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string, page, pageSize int) ([]domain.Order, int, error)
}

// WalletRepository defines the interface for the coin ledger.
// Transfer moves coins between two users atomically: both balance
// rows and the transfer record commit together or not at all.
type WalletRepository interface {
	Transfer(ctx context.Context, transfer *domain.Transfer) error
	GetBalance(ctx context.Context, userID string) (int64, error)
	GetTransfer(ctx context.Context, id string) (*domain.Transfer, error)
	ListTransfers(ctx context.Context, userID string, page, pageSize int) ([]domain.Transfer, int, error)

	GetGift(ctx context.Context, id string) (*domain.Gift, error)
	ListGifts(ctx context.Context, activeOnly bool) ([]domain.Gift, error)
	SaveGift(ctx context.Context, gift *domain.Gift) error

	// Checkout atomically decrements product stock, settles the order
	// total from the buyer to each seller and records the order with
	// one ledger transfer per seller.
	Checkout(ctx context.Context, order *domain.Order) error
}
