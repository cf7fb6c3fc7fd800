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

// UserHandler handles auth and profile HTTP requests.
type UserHandler struct {
	userService    service.UserService
	authMiddleware *middleware.AuthMiddleware
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, authMiddleware *middleware.AuthMiddleware) *UserHandler {
	return &UserHandler{
		userService:    userService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers auth and user routes.
func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/refresh", h.RefreshToken)
			auth.POST("/logout", h.authMiddleware.RequireAuth(), h.Logout)
		}

		users := api.Group("/users")
		{
			users.GET("/:username", h.GetPublicProfile)
		}

		me := api.Group("/users/me")
		me.Use(h.authMiddleware.RequireAuth())
		{
			me.GET("", h.GetMe)
			me.PUT("", h.UpdateMe)
			me.PUT("/password", h.ChangePassword)
			me.DELETE("", h.DeleteMe)
			me.POST("/avatar/presign", h.PresignAvatar)
			me.POST("/avatar/confirm", h.ConfirmAvatar)
			me.DELETE("/avatar", h.DeleteAvatar)
		}
	}
}

// Register handles user registration.
func (h *UserHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			response.Conflict(c, "email already exists")
			return
		}
		if errors.Is(err, repository.ErrUsernameExists) {
			response.Conflict(c, "username already exists")
			return
		}
		l.Error().Err(err).Msg("register failed")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, result)
}

// Login handles user login.
func (h *UserHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		if errors.Is(err, service.ErrUserBanned) {
			response.Forbidden(c, "account is banned")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, result)
}

// RefreshToken handles token refresh.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid refresh token request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.RefreshToken(ctx, &req)
	if err != nil {
		l.Warn().Err(err).Msg("refresh token failed")
		response.Unauthorized(c, "invalid or expired refresh token")
		return
	}

	response.Success(c, result)
}

// Logout handles user logout.
func (h *UserHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.userService.Logout(ctx, userID); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("logout failed")
		response.InternalError(c, "failed to logout")
		return
	}
	response.Success(c, gin.H{"message": "logged out"})
}

// GetMe returns the caller's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.userService.GetUser(ctx, middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get profile failed")
		response.InternalError(c, "failed to get profile")
		return
	}
	response.Success(c, result)
}

// GetPublicProfile returns the public profile of a user by username.
func (h *UserHandler) GetPublicProfile(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.userService.GetPublicProfile(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get public profile failed")
		response.InternalError(c, "failed to get profile")
		return
	}
	response.Success(c, result)
}

// UpdateMe updates the caller's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.UpdateUser(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("update profile failed")
		response.InternalError(c, "failed to update profile")
		return
	}
	response.Success(c, result)
}

// ChangePassword changes the caller's password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.ChangePassword(ctx, middleware.GetUserID(c), &req); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			response.BadRequest(c, "current password is incorrect")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("change password failed")
		response.InternalError(c, "failed to change password")
		return
	}
	response.Success(c, gin.H{"message": "password changed"})
}

// DeleteMe deletes the caller's account.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.userService.DeleteUser(ctx, middleware.GetUserID(c)); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("delete account failed")
		response.InternalError(c, "failed to delete account")
		return
	}
	response.Success(c, gin.H{"message": "account deleted"})
}

// PresignAvatar returns a presigned PUT URL for direct avatar upload.
func (h *UserHandler) PresignAvatar(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.AvatarPresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.GenerateAvatarUploadURL(ctx, middleware.GetUserID(c), req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContentType) {
			response.UnprocessableEntity(c, "INVALID_CONTENT_TYPE", "unsupported content type")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("presign avatar failed")
		response.InternalError(c, "failed to presign avatar upload")
		return
	}
	response.Success(c, result)
}

// ConfirmAvatar records a completed avatar upload.
func (h *UserHandler) ConfirmAvatar(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.ConfirmAvatarUpload(ctx, middleware.GetUserID(c), req.Key); err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(c, "key does not belong to you")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("confirm avatar failed")
		response.InternalError(c, "failed to confirm avatar upload")
		return
	}
	response.Success(c, gin.H{"message": "avatar updated"})
}

// DeleteAvatar removes the caller's avatar.
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.userService.DeleteAvatar(ctx, middleware.GetUserID(c)); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("delete avatar failed")
		response.InternalError(c, "failed to delete avatar")
		return
	}
	response.Success(c, gin.H{"message": "avatar deleted"})
}
