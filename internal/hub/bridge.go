package hub

import (
	"context"

	"github.com/google/uuid"

	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/pubsub"
)

// Bridge connects the local fan-out hub to the shared event bus so
// gift, donation, chat and lifecycle events reach viewers on every
// instance. Outgoing events are stamped with this instance's origin;
// incoming events with the same origin are dropped because the local
// hub already delivered them.
type Bridge struct {
	hub    *Hub
	bus    pubsub.PubSub
	origin string
}

// NewBridge creates a bridge between the hub and the event bus.
func NewBridge(h *Hub, bus pubsub.PubSub) *Bridge {
	return &Bridge{
		hub:    h,
		bus:    bus,
		origin: uuid.New().String(),
	}
}

// Publish stamps the event with this instance's origin and puts it on
// the bus. Bridge satisfies pubsub.Publisher so services publish
// through it.
func (b *Bridge) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	event.Origin = b.origin
	return b.bus.Publish(ctx, channel, event)
}

// Run consumes stream events from the bus and re-broadcasts remote
// ones to local viewers. It blocks until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	events, err := b.bus.SubscribePattern(ctx, pubsub.ChannelStreamEventsPattern)
	if err != nil {
		return err
	}

	l := log.L()
	l.Info().Str("origin", b.origin).Msg("event bus bridge running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Origin == b.origin {
				continue
			}
			if err := b.hub.Broadcast(event.StreamID, map[string]interface{}{
				"type":    event.Type,
				"payload": event.Payload,
			}, ""); err != nil {
				l.Warn().Err(err).
					Str(log.FieldStreamID, event.StreamID).
					Msg("failed to re-broadcast bus event")
			}
		}
	}
}

var _ pubsub.Publisher = (*Bridge)(nil)
