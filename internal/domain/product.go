package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/pkg/database"
)

// ProductModel is the GORM model for the products table.
type ProductModel struct {
	ID          string               `gorm:"type:varchar(36);primaryKey"`
	SellerID    string               `gorm:"type:varchar(36);index;not null"`
	Title       string               `gorm:"type:varchar(200);not null"`
	Description string               `gorm:"type:text"`
	Price       int64                `gorm:"not null"` // coins
	Stock       int                  `gorm:"not null;default:0"`
	ImageKeys   database.StringArray `gorm:"type:text"`
	Active      bool                 `gorm:"not null;default:true;index"`
	CreatedAt   time.Time            `gorm:"autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt       `gorm:"index"`
}

// TableName specifies the table name for ProductModel.
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts ProductModel to domain Product.
func (m *ProductModel) ToDomain() *Product {
	return &Product{
		ID:          m.ID,
		SellerID:    m.SellerID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		ImageKeys:   []string(m.ImageKeys),
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ProductToModel converts domain Product to ProductModel.
func ProductToModel(p *Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageKeys:   database.StringArray(p.ImageKeys),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Product represents a marketplace listing priced in coins.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	ImageKeys   []string  `json:"-"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CartItemModel is the GORM model for the cart_items table.
// A user's cart is the set of their cart items.
type CartItemModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product"`
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for CartItemModel.
func (CartItemModel) TableName() string {
	return "cart_items"
}

// CartItem represents one product entry in a user's cart.
type CartItem struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusRefunded OrderStatus = "refunded"
)

// OrderModel is the GORM model for the orders table.
type OrderModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	BuyerID   string    `gorm:"type:varchar(36);index;not null"`
	Total     int64     `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'paid'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName specifies the table name for OrderModel.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the GORM model for the order_items table.
type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"type:varchar(36);index;not null"`
	ProductID string `gorm:"type:varchar(36);not null"`
	SellerID  string `gorm:"type:varchar(36);index;not null"`
	Quantity  int    `gorm:"not null"`
	UnitPrice int64  `gorm:"not null"`
}

// TableName specifies the table name for OrderItemModel.
func (OrderItemModel) TableName() string {
	return "order_items"
}

// Order represents a completed checkout.
type Order struct {
	ID        string      `json:"id"`
	BuyerID   string      `json:"buyer_id"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem is one purchased line of an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// CreateProductRequest represents a create product request.
type CreateProductRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=200"`
	Description string   `json:"description"`
	Price       int64    `json:"price" binding:"required"`
	Stock       int      `json:"stock"`
	ImageKeys   []string `json:"image_keys"`
}

// UpdateProductRequest represents an update product request.
type UpdateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *int64   `json:"price"`
	Stock       *int     `json:"stock"`
	ImageKeys   []string `json:"image_keys"`
	Active      *bool    `json:"active"`
}

// ListProductsRequest represents a list products request.
type ListProductsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	SellerID string `form:"seller_id"`
	Query    string `form:"q"`
}

// ListProductsResponse represents a paginated product list.
type ListProductsResponse struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// AddCartItemRequest represents an add-to-cart request.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents a cart quantity change.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=0"`
}

// CartResponse is the current cart contents with totals.
type CartResponse struct {
	Items []CartItem `json:"items"`
	Total int64      `json:"total"`
}
