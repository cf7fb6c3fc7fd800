package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/internal/service"
	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/middleware"
	"github.com/atims0208/fieldhouse/pkg/response"
)

// ShopHandler handles marketplace HTTP requests.
type ShopHandler struct {
	shopService    service.ShopService
	authMiddleware *middleware.AuthMiddleware
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shopService service.ShopService, authMiddleware *middleware.AuthMiddleware) *ShopHandler {
	return &ShopHandler{
		shopService:    shopService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers marketplace routes.
func (h *ShopHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		products := api.Group("/products")
		{
			products.GET("", h.ListProducts)
			products.GET("/:id", h.GetProduct)
		}

		sellers := api.Group("/products")
		sellers.Use(h.authMiddleware.RequireAuth())
		{
			sellers.POST("", h.CreateProduct)
			sellers.PUT("/:id", h.UpdateProduct)
			sellers.DELETE("/:id", h.DeleteProduct)
		}

		cart := api.Group("/cart")
		cart.Use(h.authMiddleware.RequireAuth())
		{
			cart.GET("", h.GetCart)
			cart.POST("/items", h.AddToCart)
			cart.PUT("/items/:id", h.UpdateCartItem)
			cart.DELETE("/items/:id", h.RemoveFromCart)
			cart.POST("/checkout", h.Checkout)
		}

		orders := api.Group("/orders")
		orders.Use(h.authMiddleware.RequireAuth())
		{
			orders.GET("", h.ListOrders)
			orders.GET("/:id", h.GetOrder)
		}
	}
}

// CreateProduct creates a product listing for the caller.
func (h *ShopHandler) CreateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create product request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.shopService.CreateProduct(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			response.UnprocessableEntity(c, "INVALID_PRICE", "price must be positive")
			return
		}
		l.Error().Err(err).Msg("create product failed")
		response.InternalError(c, "failed to create product")
		return
	}
	response.Created(c, result)
}

// GetProduct returns a product listing.
func (h *ShopHandler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.shopService.GetProduct(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.NotFound(c, "product not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get product failed")
		response.InternalError(c, "failed to get product")
		return
	}
	response.Success(c, result)
}

// UpdateProduct updates a product the caller owns.
func (h *ShopHandler) UpdateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.shopService.UpdateProduct(ctx, middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.shopError(c, err, "update product failed")
		return
	}
	response.Success(c, result)
}

// DeleteProduct removes a product the caller owns.
func (h *ShopHandler) DeleteProduct(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.shopService.DeleteProduct(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.shopError(c, err, "delete product failed")
		return
	}
	response.Success(c, gin.H{"message": "product deleted"})
}

// ListProducts lists the product catalog.
func (h *ShopHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.shopService.ListProducts(ctx, &req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list products failed")
		response.InternalError(c, "failed to list products")
		return
	}
	response.Success(c, result)
}

// GetCart returns the caller's cart.
func (h *ShopHandler) GetCart(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.shopService.GetCart(ctx, middleware.GetUserID(c))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("get cart failed")
		response.InternalError(c, "failed to get cart")
		return
	}
	response.Success(c, result)
}

// AddToCart puts a product in the caller's cart.
func (h *ShopHandler) AddToCart(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.shopService.AddToCart(ctx, middleware.GetUserID(c), &req); err != nil {
		h.shopError(c, err, "add to cart failed")
		return
	}
	response.Success(c, gin.H{"message": "added to cart"})
}

// UpdateCartItem changes a cart line quantity.
func (h *ShopHandler) UpdateCartItem(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.shopService.UpdateCartItem(ctx, middleware.GetUserID(c), c.Param("id"), req.Quantity); err != nil {
		h.shopError(c, err, "update cart item failed")
		return
	}
	response.Success(c, gin.H{"message": "cart updated"})
}

// RemoveFromCart removes a product from the caller's cart.
func (h *ShopHandler) RemoveFromCart(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.shopService.RemoveFromCart(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.shopError(c, err, "remove from cart failed")
		return
	}
	response.Success(c, gin.H{"message": "removed from cart"})
}

// Checkout settles the caller's cart through the coin ledger.
func (h *ShopHandler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.shopService.Checkout(ctx, middleware.GetUserID(c))
	if err != nil {
		h.shopError(c, err, "checkout failed")
		return
	}
	response.Created(c, order)
}

// GetOrder returns one of the caller's orders.
func (h *ShopHandler) GetOrder(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.shopService.GetOrder(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.shopError(c, err, "get order failed")
		return
	}
	response.Success(c, order)
}

// ListOrders lists the caller's orders.
func (h *ShopHandler) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	orders, total, err := h.shopService.ListOrders(ctx, middleware.GetUserID(c), page, pageSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list orders failed")
		response.InternalError(c, "failed to list orders")
		return
	}
	response.Success(c, gin.H{
		"orders":    orders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *ShopHandler) shopError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		response.NotFound(c, "product not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		response.NotFound(c, "order not found")
	case errors.Is(err, repository.ErrOutOfStock):
		response.UnprocessableEntity(c, "OUT_OF_STOCK", "insufficient stock")
	case errors.Is(err, repository.ErrInsufficientBalance):
		response.UnprocessableEntity(c, "INSUFFICIENT_BALANCE", "insufficient coin balance")
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, "not the owner of this resource")
	case errors.Is(err, service.ErrOwnProduct):
		response.UnprocessableEntity(c, "OWN_PRODUCT", "cannot buy your own product")
	case errors.Is(err, service.ErrEmptyCart):
		response.UnprocessableEntity(c, "EMPTY_CART", "cart is empty")
	case errors.Is(err, service.ErrProductRemoved):
		response.UnprocessableEntity(c, "PRODUCT_REMOVED", "a cart item is no longer available")
	case errors.Is(err, service.ErrInvalidPrice):
		response.UnprocessableEntity(c, "INVALID_PRICE", "price must be positive")
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}
