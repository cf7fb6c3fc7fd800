package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/internal/service"
	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/middleware"
	"github.com/atims0208/fieldhouse/pkg/response"
)

// FollowHandler handles social graph HTTP requests.
type FollowHandler struct {
	followService  service.FollowService
	authMiddleware *middleware.AuthMiddleware
}

// NewFollowHandler creates a new follow handler.
func NewFollowHandler(followService service.FollowService, authMiddleware *middleware.AuthMiddleware) *FollowHandler {
	return &FollowHandler{
		followService:  followService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers follow routes.
func (h *FollowHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		social := api.Group("/users/:username")
		{
			social.GET("/stats", h.GetStats)
			social.GET("/followers", h.ListFollowers)
			social.GET("/following", h.ListFollowing)
		}

		authed := api.Group("/follows")
		authed.Use(h.authMiddleware.RequireAuth())
		{
			authed.PUT("/:id", h.Follow)
			authed.DELETE("/:id", h.Unfollow)
			authed.GET("/:id", h.IsFollowing)
		}
	}
}

// Follow makes the caller follow the target user.
func (h *FollowHandler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.followService.Follow(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			response.UnprocessableEntity(c, "SELF_FOLLOW", "cannot follow yourself")
		case errors.Is(err, service.ErrUserBanned):
			response.UnprocessableEntity(c, "USER_BANNED", "account is banned")
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("follow failed")
			response.InternalError(c, "failed to follow")
		}
		return
	}
	response.Success(c, gin.H{"following": true})
}

// Unfollow makes the caller unfollow the target user.
func (h *FollowHandler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.followService.Unfollow(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unfollow failed")
		response.InternalError(c, "failed to unfollow")
		return
	}
	response.Success(c, gin.H{"following": false})
}

// IsFollowing reports whether the caller follows the target user.
func (h *FollowHandler) IsFollowing(c *gin.Context) {
	ctx := c.Request.Context()
	following, err := h.followService.IsFollowing(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("is-following check failed")
		response.InternalError(c, "failed to check follow status")
		return
	}
	response.Success(c, gin.H{"following": following})
}

// GetStats returns follower and following counts for a user.
func (h *FollowHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	result, err := h.followService.GetStats(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get follow stats failed")
		response.InternalError(c, "failed to get follow stats")
		return
	}
	response.Success(c, result)
}

// ListFollowers lists a user's followers.
func (h *FollowHandler) ListFollowers(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	result, err := h.followService.ListFollowers(ctx, c.Param("username"), page, pageSize)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("list followers failed")
		response.InternalError(c, "failed to list followers")
		return
	}
	response.Success(c, result)
}

// ListFollowing lists the users someone follows.
func (h *FollowHandler) ListFollowing(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	result, err := h.followService.ListFollowing(ctx, c.Param("username"), page, pageSize)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("list following failed")
		response.InternalError(c, "failed to list following")
		return
	}
	response.Success(c, result)
}
