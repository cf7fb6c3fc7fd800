package service

import (
	"context"
	"errors"
	"time"

	"github.com/atims0208/fieldhouse/internal/audit"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/storage"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrOwnProduct     = errors.New("cannot buy your own product")
	ErrInvalidPrice   = errors.New("price must be positive")
	ErrProductRemoved = errors.New("a cart item is no longer available")
)

// shopServiceImpl implements ShopService interface.
type shopServiceImpl struct {
	repo    repository.ProductRepository
	wallet  repository.WalletRepository
	storage storage.Storage
}

// NewShopService creates a new shop service.
func NewShopService(repo repository.ProductRepository, wallet repository.WalletRepository, store storage.Storage) ShopService {
	return &shopServiceImpl{
		repo:    repo,
		wallet:  wallet,
		storage: store,
	}
}

// CreateProduct creates a product listing.
func (s *shopServiceImpl) CreateProduct(ctx context.Context, sellerID string, req *domain.CreateProductRequest) (*domain.Product, error) {
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	product := &domain.Product{
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageKeys:   req.ImageKeys,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionProductCreate, sellerID, "product created")
	s.populateImages(ctx, product)
	return product, nil
}

// GetProduct retrieves a product listing.
func (s *shopServiceImpl) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.populateImages(ctx, product)
	return product, nil
}

// UpdateProduct updates a product the caller owns.
func (s *shopServiceImpl) UpdateProduct(ctx context.Context, sellerID, productID string, req *domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageKeys != nil {
		product.ImageKeys = req.ImageKeys
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionProductUpdate, sellerID, "product updated")
	s.populateImages(ctx, product)
	return product, nil
}

// DeleteProduct removes a product the caller owns.
func (s *shopServiceImpl) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.SellerID != sellerID {
		return ErrNotOwner
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	audit.Log(ctx, audit.ActionProductDelete, sellerID, "product deleted")
	return nil
}

// ListProducts returns the product catalog with pagination.
func (s *shopServiceImpl) ListProducts(ctx context.Context, req *domain.ListProductsRequest) (*domain.ListProductsResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	products, total, err := s.repo.List(ctx, *req)
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.populateImages(ctx, &products[i])
	}

	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}
	return &domain.ListProductsResponse{
		Products:   products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetCart returns the caller's cart with current prices.
func (s *shopServiceImpl) GetCart(ctx context.Context, userID string) (*domain.CartResponse, error) {
	items, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	var total int64
	for i := range items {
		if items[i].Product == nil {
			continue
		}
		s.populateImages(ctx, items[i].Product)
		total += items[i].Product.Price * int64(items[i].Quantity)
	}

	return &domain.CartResponse{Items: items, Total: total}, nil
}

// AddToCart puts a product in the caller's cart.
func (s *shopServiceImpl) AddToCart(ctx context.Context, userID string, req *domain.AddCartItemRequest) error {
	product, err := s.repo.GetByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if !product.Active {
		return repository.ErrProductNotFound
	}
	if product.SellerID == userID {
		return ErrOwnProduct
	}
	if product.Stock < req.Quantity {
		return repository.ErrOutOfStock
	}

	return s.repo.UpsertCartItem(ctx, userID, req.ProductID, req.Quantity)
}

// UpdateCartItem changes the quantity of a cart line. Zero removes it.
func (s *shopServiceImpl) UpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.Stock < quantity {
		return repository.ErrOutOfStock
	}
	return s.repo.UpsertCartItem(ctx, userID, productID, quantity)
}

// RemoveFromCart removes a product from the caller's cart.
func (s *shopServiceImpl) RemoveFromCart(ctx context.Context, userID, productID string) error {
	err := s.repo.RemoveCartItem(ctx, userID, productID)
	if errors.Is(err, repository.ErrCartItemNotFound) {
		return nil
	}
	return err
}

// Checkout settles the whole cart through the coin ledger. Stock,
// balances and the order record commit together; the cart is cleared
// only after the purchase commits.
func (s *shopServiceImpl) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	l := log.Ctx(ctx)

	items, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{BuyerID: userID}
	for _, item := range items {
		if item.Product == nil {
			return nil, ErrProductRemoved
		}
		if item.Product.SellerID == userID {
			return nil, ErrOwnProduct
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.wallet.Checkout(ctx, order); err != nil {
		return nil, err
	}

	if err := s.repo.ClearCart(ctx, userID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to clear cart after checkout")
	}

	audit.LogWithDetail(ctx, audit.ActionCheckout, userID, order.ID, "checkout completed")
	return order, nil
}

// GetOrder retrieves one of the caller's orders.
func (s *shopServiceImpl) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != userID {
		return nil, ErrNotOwner
	}
	return order, nil
}

// ListOrders lists the caller's orders.
func (s *shopServiceImpl) ListOrders(ctx context.Context, userID string, page, pageSize int) ([]domain.Order, int, error) {
	return s.repo.ListOrdersByBuyer(ctx, userID, page, pageSize)
}

// populateImages resolves stored image keys to fetchable URLs.
func (s *shopServiceImpl) populateImages(ctx context.Context, product *domain.Product) {
	if len(product.ImageKeys) == 0 {
		return
	}
	urls := make([]string, 0, len(product.ImageKeys))
	for _, key := range product.ImageKeys {
		url, err := s.storage.GetURL(ctx, key, time.Hour)
		if err != nil {
			continue
		}
		urls = append(urls, url)
	}
	product.ImageURLs = urls
}

var _ ShopService = (*shopServiceImpl)(nil)
