package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atims0208/fieldhouse/internal/domain"
)

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based product repository.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create creates a new product listing.
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New().String()
	product.Active = true

	model := domain.ProductToModel(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	product.CreatedAt = model.CreatedAt
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a product by ID.
func (r *GormProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var model domain.ProductModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// Update updates a product listing.
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	model := domain.ProductToModel(product)
	result := r.db.WithContext(ctx).Model(&domain.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"title":       model.Title,
			"description": model.Description,
			"price":       model.Price,
			"stock":       model.Stock,
			"image_keys":  model.ImageKeys,
			"active":      model.Active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete soft-deletes a product listing.
func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// List retrieves active products with pagination and optional filters.
func (r *GormProductRepository) List(ctx context.Context, req domain.ListProductsRequest) ([]domain.Product, int, error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.ProductModel{}).Where("active = ?", true)
	if req.SellerID != "" {
		query = query.Where("seller_id = ?", req.SellerID)
	}
	if req.Query != "" {
		pattern := "%" + req.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []domain.ProductModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	products := make([]domain.Product, len(models))
	for i, model := range models {
		products[i] = *model.ToDomain()
	}
	return products, int(total), nil
}

// UpsertCartItem sets the quantity for a product in a user's cart.
func (r *GormProductRepository) UpsertCartItem(ctx context.Context, userID, productID string, quantity int) error {
	item := &domain.CartItemModel{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(item).Error
}

// RemoveCartItem removes a product from a user's cart.
func (r *GormProductRepository) RemoveCartItem(ctx context.Context, userID, productID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.CartItemModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// GetCart returns a user's cart items with their product listings.
func (r *GormProductRepository) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var models []domain.CartItemModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}

	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ProductID
	}

	var productModels []domain.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productModels).Error; err != nil {
		return nil, err
	}
	products := make(map[string]*domain.Product, len(productModels))
	for i := range productModels {
		products[productModels[i].ID] = productModels[i].ToDomain()
	}

	items := make([]domain.CartItem, 0, len(models))
	for _, m := range models {
		items = append(items, domain.CartItem{
			ProductID: m.ProductID,
			Quantity:  m.Quantity,
			Product:   products[m.ProductID],
		})
	}
	return items, nil
}

// ClearCart removes every item from a user's cart.
func (r *GormProductRepository) ClearCart(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.CartItemModel{}).Error
}

// GetOrder retrieves an order with its items.
func (r *GormProductRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var model domain.OrderModel
	result := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return orderToDomain(&model), nil
}

// ListOrdersByBuyer returns a buyer's orders, newest first.
func (r *GormProductRepository) ListOrdersByBuyer(ctx context.Context, buyerID string, page, pageSize int) ([]domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.OrderModel{}).Where("buyer_id = ?", buyerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []domain.OrderModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").Offset(offset).Limit(pageSize).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]domain.Order, len(models))
	for i := range models {
		orders[i] = *orderToDomain(&models[i])
	}
	return orders, int(total), nil
}

func orderToDomain(m *domain.OrderModel) *domain.Order {
	order := &domain.Order{
		ID:        m.ID,
		BuyerID:   m.BuyerID,
		Total:     m.Total,
		Status:    domain.OrderStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
	for _, item := range m.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			SellerID:  item.SellerID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return order
}

var _ ProductRepository = (*GormProductRepository)(nil)
