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

// AdminHandler handles back-office HTTP requests. Every route requires
// the admin role.
type AdminHandler struct {
	adminService   service.AdminService
	walletService  service.WalletService
	authMiddleware *middleware.AuthMiddleware
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminService service.AdminService, walletService service.WalletService, authMiddleware *middleware.AuthMiddleware) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		walletService:  walletService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.Engine) {
	admin := r.Group("/api/v1/admin")
	admin.Use(h.authMiddleware.RequireAuth(), h.authMiddleware.RequireRole("admin"))
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users/:id/ban", h.BanUser)
		admin.POST("/users/:id/unban", h.UnbanUser)
		admin.POST("/users/:id/coins", h.GrantCoins)
		admin.GET("/users/:id/transfers", h.ListUserTransfers)
		admin.POST("/streams/:id/end", h.EndStream)
		admin.DELETE("/products/:id", h.RemoveProduct)
		admin.POST("/gifts", h.SaveGift)
	}
}

// ListUsers pages through every account.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	users, total, err := h.adminService.ListUsers(ctx, page, pageSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list users failed")
		response.InternalError(c, "failed to list users")
		return
	}
	response.Success(c, gin.H{
		"users":     users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// BanUser bans an account.
func (h *AdminHandler) BanUser(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.adminService.BanUser(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.adminError(c, err, "ban user failed")
		return
	}
	response.Success(c, gin.H{"message": "user banned"})
}

// UnbanUser lifts a ban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.adminService.UnbanUser(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.adminError(c, err, "unban user failed")
		return
	}
	response.Success(c, gin.H{"message": "user unbanned"})
}

// GrantCoins moves coins from the treasury to a user.
func (h *AdminHandler) GrantCoins(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.GrantCoinsRequest
	req.UserID = c.Param("id")
	var body struct {
		Amount  int64  `json:"amount" binding:"required"`
		Message string `json:"message" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.Amount = body.Amount
	req.Message = body.Message

	result, err := h.walletService.GrantCoins(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidAmount):
			response.UnprocessableEntity(c, "INVALID_AMOUNT", "amount must be positive")
		case errors.Is(err, repository.ErrInsufficientBalance):
			response.UnprocessableEntity(c, "TREASURY_EXHAUSTED", "treasury balance too low")
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("grant coins failed")
			response.InternalError(c, "failed to grant coins")
		}
		return
	}
	response.Created(c, result)
}

// ListUserTransfers returns any user's transfer history.
func (h *AdminHandler) ListUserTransfers(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	result, err := h.walletService.ListTransfers(ctx, c.Param("id"), page, pageSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list user transfers failed")
		response.InternalError(c, "failed to list transfers")
		return
	}
	response.Success(c, result)
}

// RemoveProduct takes down any product listing.
func (h *AdminHandler) RemoveProduct(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.adminService.RemoveProduct(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.NotFound(c, "product not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("admin remove product failed")
		response.InternalError(c, "failed to remove product")
		return
	}
	response.Success(c, gin.H{"message": "product removed"})
}

// EndStream force-ends any stream.
func (h *AdminHandler) EndStream(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.adminService.EndStream(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			response.NotFound(c, "stream not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("admin end stream failed")
		response.InternalError(c, "failed to end stream")
		return
	}
	response.Success(c, gin.H{"message": "stream ended"})
}

// SaveGift inserts or updates a gift catalog entry.
func (h *AdminHandler) SaveGift(c *gin.Context) {
	ctx := c.Request.Context()
	var gift domain.Gift
	if err := c.ShouldBindJSON(&gift); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.walletService.SaveGift(ctx, &gift); err != nil {
		if errors.Is(err, repository.ErrInvalidAmount) {
			response.UnprocessableEntity(c, "INVALID_PRICE", "gift price must be positive")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("save gift failed")
		response.InternalError(c, "failed to save gift")
		return
	}
	response.Success(c, gift)
}

func (h *AdminHandler) adminError(c *gin.Context, err error, msg string) {
	if errors.Is(err, repository.ErrUserNotFound) {
		response.NotFound(c, "user not found")
		return
	}
	log.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
	response.InternalError(c, msg)
}
