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

// StreamHandler handles stream lifecycle HTTP requests.
type StreamHandler struct {
	streamService  service.StreamService
	authMiddleware *middleware.AuthMiddleware
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(streamService service.StreamService, authMiddleware *middleware.AuthMiddleware) *StreamHandler {
	return &StreamHandler{
		streamService:  streamService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers stream routes.
func (h *StreamHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		streams := api.Group("/streams")
		{
			streams.GET("", h.ListStreams)
			streams.GET("/search", h.SearchStreams)
			streams.GET("/:id", h.GetStream)
		}

		authed := api.Group("/streams")
		authed.Use(h.authMiddleware.RequireAuth())
		{
			authed.POST("", h.CreateStream)
			authed.GET("/mine", h.ListOwnStreams)
			authed.GET("/:id/manage", h.GetOwnStream)
			authed.PUT("/:id", h.UpdateStream)
			authed.POST("/:id/live", h.GoLive)
			authed.POST("/:id/end", h.EndStream)
			authed.DELETE("/:id", h.DeleteStream)
		}
	}
}

// CreateStream creates a stream for the caller.
func (h *StreamHandler) CreateStream(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.CreateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create stream request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.streamService.CreateStream(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		l.Error().Err(err).Msg("create stream failed")
		response.InternalError(c, "failed to create stream")
		return
	}
	response.Created(c, result)
}

// GetStream returns the public view of a stream.
func (h *StreamHandler) GetStream(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.streamService.GetStream(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			response.NotFound(c, "stream not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("get stream failed")
		response.InternalError(c, "failed to get stream")
		return
	}
	response.Success(c, result)
}

// GetOwnStream returns the owner view including ingest credentials.
func (h *StreamHandler) GetOwnStream(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.streamService.GetOwnStream(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.streamError(c, err, "get own stream failed")
		return
	}
	response.Success(c, result)
}

// UpdateStream updates stream metadata.
func (h *StreamHandler) UpdateStream(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.UpdateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.streamService.UpdateStream(ctx, middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.streamError(c, err, "update stream failed")
		return
	}
	response.Success(c, result)
}

// GoLive transitions a stream to live.
func (h *StreamHandler) GoLive(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.streamService.GoLive(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.streamError(c, err, "go live failed")
		return
	}
	response.Success(c, result)
}

// EndStream transitions a stream to ended.
func (h *StreamHandler) EndStream(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := h.streamService.EndStream(ctx, middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.streamError(c, err, "end stream failed")
		return
	}
	response.Success(c, result)
}

// DeleteStream removes a stream that is not live.
func (h *StreamHandler) DeleteStream(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.streamService.DeleteStream(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.streamError(c, err, "delete stream failed")
		return
	}
	response.Success(c, gin.H{"message": "stream deleted"})
}

// ListStreams lists streams with pagination.
func (h *StreamHandler) ListStreams(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.ListStreamsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.streamService.ListStreams(ctx, &req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list streams failed")
		response.InternalError(c, "failed to list streams")
		return
	}
	response.Success(c, result)
}

// ListOwnStreams lists the caller's streams.
func (h *StreamHandler) ListOwnStreams(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pagination(c)

	result, err := h.streamService.ListOwnStreams(ctx, middleware.GetUserID(c), page, pageSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("list own streams failed")
		response.InternalError(c, "failed to list streams")
		return
	}
	response.Success(c, result)
}

// SearchStreams searches streams by title or description.
func (h *StreamHandler) SearchStreams(c *gin.Context) {
	ctx := c.Request.Context()
	var req domain.SearchStreamsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.streamService.SearchStreams(ctx, &req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("search streams failed")
		response.InternalError(c, "failed to search streams")
		return
	}
	response.Success(c, result)
}

func (h *StreamHandler) streamError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrStreamNotFound):
		response.NotFound(c, "stream not found")
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, "not the owner of this stream")
	case errors.Is(err, service.ErrStreamAlreadyLive):
		response.Conflict(c, "stream is live")
	case errors.Is(err, service.ErrStreamEnded):
		response.Conflict(c, "stream has already ended")
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}
