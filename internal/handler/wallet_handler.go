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

// WalletHandler handles coin economy HTTP requests.
type WalletHandler struct {
	walletService  service.WalletService
	authMiddleware *middleware.AuthMiddleware
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(walletService service.WalletService, authMiddleware *middleware.AuthMiddleware) *WalletHandler {
	return &WalletHandler{
		walletService:  walletService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers wallet routes.
func (h *WalletHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/gifts", h.ListGifts)

		wallet := api.Group("/wallet")
		wallet.Use(h.authMiddleware.RequireAuth())
		{
			wallet.GET("/balance", h.GetBalance)
			wallet.GET("/transfers", h.ListTransfers)
			wallet.POST("/gifts", h.SendGift)
			wallet.POST("/donations", h.Donate)
		}
	}
}

// GetBalance returns the caller's coin balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.walletService.GetBalance(ctx, middleware.GetUserID(c))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("get balance failed")
		response.InternalError(c, "failed to get balance")
		return
	}
	response.Success(c, result)
}

// ListTransfers returns the caller's transfer history.
func (h *WalletHandler) ListTransfers(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	result, err := h.walletService.ListTransfers(ctx, middleware.GetUserID(c), page, pageSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list transfers failed")
		response.InternalError(c, "failed to list transfers")
		return
	}
	response.Success(c, result)
}

// SendGift sends a catalog gift to a live stream's owner.
func (h *WalletHandler) SendGift(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.SendGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid send gift request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.walletService.SendGift(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		h.transferError(c, err, "send gift failed")
		return
	}
	response.Created(c, result)
}

// Donate sends coins directly to another user.
func (h *WalletHandler) Donate(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid donation request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.walletService.Donate(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		h.transferError(c, err, "donation failed")
		return
	}
	response.Created(c, result)
}

// ListGifts returns the active gift catalog.
func (h *WalletHandler) ListGifts(c *gin.Context) {
	ctx := c.Request.Context()
	gifts, err := h.walletService.ListGifts(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list gifts failed")
		response.InternalError(c, "failed to list gifts")
		return
	}
	response.Success(c, gifts)
}

func (h *WalletHandler) transferError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrInsufficientBalance):
		response.UnprocessableEntity(c, "INSUFFICIENT_BALANCE", "insufficient coin balance")
	case errors.Is(err, repository.ErrInvalidAmount):
		response.UnprocessableEntity(c, "INVALID_AMOUNT", "amount must be positive")
	case errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, repository.ErrGiftNotFound):
		response.NotFound(c, "gift not found")
	case errors.Is(err, repository.ErrStreamNotFound):
		response.NotFound(c, "stream not found")
	case errors.Is(err, service.ErrGiftInactive):
		response.UnprocessableEntity(c, "GIFT_INACTIVE", "gift is not available")
	case errors.Is(err, service.ErrStreamNotLive):
		response.UnprocessableEntity(c, "STREAM_NOT_LIVE", "stream is not live")
	case errors.Is(err, service.ErrSelfDonation):
		response.UnprocessableEntity(c, "SELF_DONATION", "cannot donate to yourself")
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}
