package service

import (
	"context"
	"errors"
	"time"

	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/hub"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/jwt"
	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/pubsub"
)

const maxChatMessageLength = 500

// GatewayService handles realtime gateway messages from viewer
// connections.
type GatewayService interface {
	HandleAuth(ctx context.Context, client *hub.Client, token string) error
	HandleJoinStream(ctx context.Context, client *hub.Client, streamID string) error
	HandleLeaveStream(ctx context.Context, client *hub.Client) error
	HandleChatMessage(ctx context.Context, client *hub.Client, content string) error
}

// gatewayServiceImpl implements GatewayService.
type gatewayServiceImpl struct {
	hub        *hub.Hub
	tokens     *jwt.Manager
	streamRepo repository.StreamRepository
	publisher  pubsub.Publisher
}

// NewGatewayService creates a new gateway service.
func NewGatewayService(h *hub.Hub, tokens *jwt.Manager, streamRepo repository.StreamRepository, publisher pubsub.Publisher) GatewayService {
	return &gatewayServiceImpl{
		hub:        h,
		tokens:     tokens,
		streamRepo: streamRepo,
		publisher:  publisher,
	}
}

// HandleAuth validates the access token and upgrades the session.
// Unauthenticated connections stay open as watch-only viewers.
func (s *gatewayServiceImpl) HandleAuth(ctx context.Context, client *hub.Client, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil || claims.Type != "access" {
		client.SendMessage(&domain.AuthResultMessage{
			Type:    domain.MsgTypeAuthResult,
			Success: false,
			Message: "invalid token",
		})
		return errors.New("invalid token")
	}

	client.Session.Authenticate(claims.UserID, claims.Username, claims.Roles)
	client.SendMessage(&domain.AuthResultMessage{
		Type:     domain.MsgTypeAuthResult,
		Success:  true,
		UserID:   claims.UserID,
		Username: claims.Username,
	})

	log.Ctx(ctx).Debug().
		Str(log.FieldClientID, client.ID).
		Str(log.FieldUserID, claims.UserID).
		Msg("gateway client authenticated")
	return nil
}

// HandleJoinStream subscribes the connection to a stream's events.
func (s *gatewayServiceImpl) HandleJoinStream(ctx context.Context, client *hub.Client, streamID string) error {
	stream, err := s.streamRepo.GetByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "stream not found"))
			return err
		}
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "failed to join stream"))
		return err
	}

	s.hub.JoinStream(client, stream.ID)

	count := s.hub.ViewerCount(stream.ID)
	client.SendMessage(&domain.StreamJoinedMessage{
		Type:        domain.MsgTypeStreamJoined,
		StreamID:    stream.ID,
		ViewerCount: count,
	})

	s.publishViewerCount(ctx, stream.ID, count)
	return nil
}

// HandleLeaveStream unsubscribes the connection from its stream.
func (s *gatewayServiceImpl) HandleLeaveStream(ctx context.Context, client *hub.Client) error {
	streamID := client.Session.GetCurrentStream()
	if streamID == "" {
		return nil
	}

	s.hub.LeaveStream(client)
	s.publishViewerCount(ctx, streamID, s.hub.ViewerCount(streamID))
	return nil
}

// HandleChatMessage fans a chat line out to the stream's viewers.
// Chat requires an authenticated session inside a stream.
func (s *gatewayServiceImpl) HandleChatMessage(ctx context.Context, client *hub.Client, content string) error {
	if !client.Session.IsAuthenticated() {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeUnauthorized, "authenticate first"))
		return errors.New("unauthenticated")
	}
	streamID := client.Session.GetCurrentStream()
	if streamID == "" {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeNotInStream, "join a stream first"))
		return errors.New("not in a stream")
	}
	if content == "" || len(content) > maxChatMessageLength {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "invalid message length"))
		return errors.New("invalid message length")
	}

	out := &domain.ChatMessageOut{
		Type:      domain.MsgTypeChatMessage,
		UserID:    client.Session.GetUserID(),
		Username:  client.Session.GetUsername(),
		StreamID:  streamID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}

	// Sender sees their own message echoed back too.
	if err := s.hub.Broadcast(streamID, out, ""); err != nil {
		return err
	}

	event, err := pubsub.NewEvent(pubsub.EventChatMessage, streamID, out)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, pubsub.StreamEventsChannel(streamID), event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to publish chat message")
	}
	return nil
}

func (s *gatewayServiceImpl) publishViewerCount(ctx context.Context, streamID string, count int) {
	payload := pubsub.ViewerCountPayload{StreamID: streamID, Count: count}

	if err := s.hub.Broadcast(streamID, map[string]interface{}{
		"type":    pubsub.EventViewerCount,
		"payload": payload,
	}, ""); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("viewer count broadcast failed")
	}
}

var _ GatewayService = (*gatewayServiceImpl)(nil)
