package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atims0208/fieldhouse/internal/audit"
	"github.com/atims0208/fieldhouse/internal/client"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/hub"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/pubsub"
	"github.com/atims0208/fieldhouse/pkg/storage"
)

var (
	ErrStreamNotLive     = errors.New("stream is not live")
	ErrStreamAlreadyLive = errors.New("stream is already live")
	ErrStreamEnded       = errors.New("stream has already ended")
)

// streamServiceImpl implements StreamService interface.
type streamServiceImpl struct {
	repo      repository.StreamRepository
	userRepo  repository.UserRepository
	cdn       *client.CDNClient
	hub       *hub.Hub
	publisher pubsub.Publisher
	storage   storage.Storage
}

// NewStreamService creates a new stream service.
func NewStreamService(
	repo repository.StreamRepository,
	userRepo repository.UserRepository,
	cdn *client.CDNClient,
	h *hub.Hub,
	publisher pubsub.Publisher,
	store storage.Storage,
) StreamService {
	return &streamServiceImpl{
		repo:      repo,
		userRepo:  userRepo,
		cdn:       cdn,
		hub:       h,
		publisher: publisher,
		storage:   store,
	}
}

// CreateStream creates a stream and provisions its ingest channel.
func (s *streamServiceImpl) CreateStream(ctx context.Context, ownerID string, req *domain.CreateStreamRequest) (*domain.OwnerStreamResponse, error) {
	l := log.Ctx(ctx)

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stream := &domain.Stream{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Title:         req.Title,
		Description:   req.Description,
		Tags:          req.Tags,
	}
	if err := s.repo.Create(ctx, stream); err != nil {
		return nil, err
	}

	channel, err := s.cdn.ProvisionChannel(ctx, stream.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, stream.ID).Msg("failed to provision ingest channel")
		// The stream row stays; the owner can retry going live later.
		resp := stream.ToOwnerResponse()
		return &resp, nil
	}

	stream.IngestURL = channel.IngestURL
	stream.StreamKey = channel.StreamKey
	stream.PlaybackURL = channel.PlaybackURL
	if err := s.repo.UpdateChannel(ctx, stream); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionStreamCreate, ownerID, "stream created")
	resp := stream.ToOwnerResponse()
	return &resp, nil
}

// GetStream returns the public view of a stream.
func (s *streamServiceImpl) GetStream(ctx context.Context, streamID string) (*domain.StreamResponse, error) {
	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		return nil, err
	}
	resp := stream.ToResponse()
	resp.ViewerCount = s.hub.ViewerCount(stream.ID)
	s.populateThumbnail(ctx, stream, &resp)
	return &resp, nil
}

// GetOwnStream returns the owner view including ingest credentials.
func (s *streamServiceImpl) GetOwnStream(ctx context.Context, ownerID, streamID string) (*domain.OwnerStreamResponse, error) {
	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		return nil, err
	}
	if stream.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	resp := stream.ToOwnerResponse()
	resp.ViewerCount = s.hub.ViewerCount(stream.ID)
	s.populateThumbnail(ctx, stream, &resp.StreamResponse)
	return &resp, nil
}

// UpdateStream updates a stream's metadata.
func (s *streamServiceImpl) UpdateStream(ctx context.Context, ownerID, streamID string, req *domain.UpdateStreamRequest) (*domain.StreamResponse, error) {
	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		return nil, err
	}
	if stream.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		stream.Title = *req.Title
	}
	if req.Description != nil {
		stream.Description = *req.Description
	}
	if req.Tags != nil {
		stream.Tags = req.Tags
	}

	if err := s.repo.Update(ctx, stream); err != nil {
		return nil, err
	}

	resp := stream.ToResponse()
	resp.ViewerCount = s.hub.ViewerCount(stream.ID)
	return &resp, nil
}

// GoLive transitions a stream to live and announces it.
func (s *streamServiceImpl) GoLive(ctx context.Context, ownerID, streamID string) (*domain.StreamResponse, error) {
	l := log.Ctx(ctx)

	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		return nil, err
	}
	if stream.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	switch stream.Status {
	case domain.StreamStatusLive:
		return nil, ErrStreamAlreadyLive
	case domain.StreamStatusEnded:
		return nil, ErrStreamEnded
	}

	if err := s.repo.UpdateStatus(ctx, streamID, domain.StreamStatusLive); err != nil {
		return nil, err
	}
	stream.Status = domain.StreamStatusLive
	now := time.Now()
	stream.StartedAt = &now

	s.announce(ctx, pubsub.EventStreamLive, stream)
	audit.Log(ctx, audit.ActionStreamGoLive, ownerID, "stream went live")
	l.Info().Str(log.FieldStreamID, streamID).Msg("stream live")

	resp := stream.ToResponse()
	return &resp, nil
}

// EndStream transitions a stream to ended and tears down its channel.
func (s *streamServiceImpl) EndStream(ctx context.Context, ownerID, streamID string) (*domain.StreamResponse, error) {
	l := log.Ctx(ctx)

	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		return nil, err
	}
	if stream.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if stream.Status == domain.StreamStatusEnded {
		return nil, ErrStreamEnded
	}

	if err := s.repo.UpdateStatus(ctx, streamID, domain.StreamStatusEnded); err != nil {
		return nil, err
	}
	stream.Status = domain.StreamStatusEnded
	now := time.Now()
	stream.EndedAt = &now

	if err := s.cdn.DeleteChannel(ctx, streamID); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to tear down ingest channel")
	}

	s.announce(ctx, pubsub.EventStreamEnded, stream)
	audit.Log(ctx, audit.ActionStreamEnd, ownerID, "stream ended")

	resp := stream.ToResponse()
	return &resp, nil
}

// DeleteStream removes a stream that is not live.
func (s *streamServiceImpl) DeleteStream(ctx context.Context, ownerID, streamID string) error {
	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		return err
	}
	if stream.OwnerID != ownerID {
		return ErrNotOwner
	}
	if stream.Status == domain.StreamStatusLive {
		return ErrStreamAlreadyLive
	}

	if err := s.repo.Delete(ctx, streamID); err != nil {
		return err
	}
	audit.Log(ctx, audit.ActionStreamDelete, ownerID, "stream deleted")
	return nil
}

// ListStreams returns streams with pagination.
func (s *streamServiceImpl) ListStreams(ctx context.Context, req *domain.ListStreamsRequest) (*domain.ListStreamsResponse, error) {
	streams, total, err := s.repo.List(ctx, req.Page, req.PageSize, req.Status)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, streams, total, req.Page, req.PageSize), nil
}

// ListOwnStreams returns the caller's streams.
func (s *streamServiceImpl) ListOwnStreams(ctx context.Context, ownerID string, page, pageSize int) (*domain.ListStreamsResponse, error) {
	streams, total, err := s.repo.ListByOwner(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, streams, total, page, pageSize), nil
}

// SearchStreams searches streams by title or description.
func (s *streamServiceImpl) SearchStreams(ctx context.Context, req *domain.SearchStreamsRequest) (*domain.ListStreamsResponse, error) {
	streams, total, err := s.repo.Search(ctx, req.Query, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, streams, total, req.Page, req.PageSize), nil
}

func (s *streamServiceImpl) listResponse(ctx context.Context, streams []domain.Stream, total, page, pageSize int) *domain.ListStreamsResponse {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items := make([]domain.StreamResponse, len(streams))
	// Thumbnail URLs are presigned per stream; resolve the page in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range streams {
		items[i] = streams[i].ToResponse()
		items[i].ViewerCount = s.hub.ViewerCount(streams[i].ID)
		g.Go(func() error {
			s.populateThumbnail(gctx, &streams[i], &items[i])
			return nil
		})
	}
	g.Wait()

	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}
	return &domain.ListStreamsResponse{
		Streams:    items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// announce broadcasts a lifecycle event locally and over the bus.
func (s *streamServiceImpl) announce(ctx context.Context, eventType string, stream *domain.Stream) {
	l := log.Ctx(ctx)

	payload := pubsub.StreamLifecyclePayload{
		StreamID:    stream.ID,
		OwnerID:     stream.OwnerID,
		Title:       stream.Title,
		PlaybackURL: stream.PlaybackURL,
	}

	if err := s.hub.Broadcast(stream.ID, map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}, ""); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, stream.ID).Msg("local lifecycle broadcast failed")
	}

	event, err := pubsub.NewEvent(eventType, stream.ID, payload)
	if err != nil {
		l.Error().Err(err).Msg("failed to build lifecycle event")
		return
	}
	if err := s.publisher.Publish(ctx, pubsub.StreamEventsChannel(stream.ID), event); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, stream.ID).Msg("failed to publish lifecycle event")
	}
}

func (s *streamServiceImpl) populateThumbnail(ctx context.Context, stream *domain.Stream, resp *domain.StreamResponse) {
	if stream.ThumbnailKey == "" {
		return
	}
	url, err := s.storage.GetURL(ctx, stream.ThumbnailKey, time.Hour)
	if err != nil {
		return
	}
	resp.ThumbnailURL = url
}

var _ StreamService = (*streamServiceImpl)(nil)
