package service

import (
	"context"

	"github.com/atims0208/fieldhouse/internal/domain"
)

// UserService defines the interface for user business logic.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*domain.UserResponse, error)
	GetPublicProfile(ctx context.Context, username string) (*domain.UserResponse, error)
	UpdateUser(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error
	DeleteUser(ctx context.Context, userID string) error
	// GenerateAvatarUploadURL generates a presigned PUT URL for direct avatar upload.
	GenerateAvatarUploadURL(ctx context.Context, userID, contentType string) (*domain.AvatarPresignResponse, error)
	ConfirmAvatarUpload(ctx context.Context, userID, key string) error
	DeleteAvatar(ctx context.Context, userID string) error
}

// StreamService defines the interface for stream lifecycle logic.
type StreamService interface {
	CreateStream(ctx context.Context, ownerID string, req *domain.CreateStreamRequest) (*domain.OwnerStreamResponse, error)
	GetStream(ctx context.Context, streamID string) (*domain.StreamResponse, error)
	GetOwnStream(ctx context.Context, ownerID, streamID string) (*domain.OwnerStreamResponse, error)
	UpdateStream(ctx context.Context, ownerID, streamID string, req *domain.UpdateStreamRequest) (*domain.StreamResponse, error)
	GoLive(ctx context.Context, ownerID, streamID string) (*domain.StreamResponse, error)
	EndStream(ctx context.Context, ownerID, streamID string) (*domain.StreamResponse, error)
	DeleteStream(ctx context.Context, ownerID, streamID string) error
	ListStreams(ctx context.Context, req *domain.ListStreamsRequest) (*domain.ListStreamsResponse, error)
	ListOwnStreams(ctx context.Context, ownerID string, page, pageSize int) (*domain.ListStreamsResponse, error)
	SearchStreams(ctx context.Context, req *domain.SearchStreamsRequest) (*domain.ListStreamsResponse, error)
}

// FollowService defines the interface for the social graph.
type FollowService interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetStats(ctx context.Context, username string) (*domain.FollowStatsResponse, error)
	ListFollowers(ctx context.Context, username string, page, pageSize int) (*domain.FollowListResponse, error)
	ListFollowing(ctx context.Context, username string, page, pageSize int) (*domain.FollowListResponse, error)
}

// WalletService defines the interface for the coin economy.
type WalletService interface {
	GetBalance(ctx context.Context, userID string) (*domain.BalanceResponse, error)
	ListTransfers(ctx context.Context, userID string, page, pageSize int) (*domain.ListTransfersResponse, error)
	SendGift(ctx context.Context, senderID string, req *domain.SendGiftRequest) (*domain.Transfer, error)
	Donate(ctx context.Context, senderID string, req *domain.DonateRequest) (*domain.Transfer, error)
	// GrantCoins moves coins from the platform treasury to a user.
	GrantCoins(ctx context.Context, adminID string, req *domain.GrantCoinsRequest) (*domain.Transfer, error)
	ListGifts(ctx context.Context) ([]domain.Gift, error)
	SaveGift(ctx context.Context, gift *domain.Gift) error
}

// AdminService defines the interface for the back office.
type AdminService interface {
	ListUsers(ctx context.Context, page, pageSize int) ([]domain.UserResponse, int, error)
	BanUser(ctx context.Context, adminID, userID string) error
	UnbanUser(ctx context.Context, adminID, userID string) error
	EndStream(ctx context.Context, adminID, streamID string) error
	RemoveProduct(ctx context.Context, adminID, productID string) error
}

// ShopService defines the interface for the marketplace.
type ShopService interface {
	CreateProduct(ctx context.Context, sellerID string, req *domain.CreateProductRequest) (*domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, sellerID, productID string, req *domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, sellerID, productID string) error
	ListProducts(ctx context.Context, req *domain.ListProductsRequest) (*domain.ListProductsResponse, error)

	GetCart(ctx context.Context, userID string) (*domain.CartResponse, error)
	AddToCart(ctx context.Context, userID string, req *domain.AddCartItemRequest) error
	UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID string) error

	// Checkout settles the user's whole cart through the coin ledger
	// and clears it on success.
	Checkout(ctx context.Context, userID string) (*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string, page, pageSize int) ([]domain.Order, int, error)
}
