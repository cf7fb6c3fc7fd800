package pubsub

import "fmt"

// Channel naming for stream-scoped platform events.
const (
	// ChannelStreamEvents carries realtime events for one stream
	// (gifts, donations, chat, lifecycle). Fan-out hubs on every
	// instance subscribe to the wildcard pattern.
	ChannelStreamEvents        = "stream:%s:events"
	ChannelStreamEventsPattern = "stream:*:events"
)

// Event types published on stream channels.
const (
	EventGiftSent    = "gift"
	EventDonation    = "donation"
	EventChatMessage = "chat_message"
	EventStreamLive  = "stream_live"
	EventStreamEnded = "stream_ended"
	EventViewerCount = "viewer_count"
)

// StreamEventsChannel returns the channel name for one stream's events.
func StreamEventsChannel(streamID string) string {
	return fmt.Sprintf(ChannelStreamEvents, streamID)
}

// GiftSentPayload is published when a gift transfer commits.
type GiftSentPayload struct {
	TransferID string `json:"transfer_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	ReceiverID string `json:"receiver_id"`
	GiftID     string `json:"gift_id"`
	GiftName   string `json:"gift_name"`
	Amount     int64  `json:"amount"`
	Message    string `json:"message,omitempty"`
}

// DonationPayload is published when a direct donation commits.
type DonationPayload struct {
	TransferID string `json:"transfer_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	ReceiverID string `json:"receiver_id"`
	Amount     int64  `json:"amount"`
	Message    string `json:"message,omitempty"`
}

// StreamLifecyclePayload is published when a stream goes live or ends.
type StreamLifecyclePayload struct {
	StreamID    string `json:"stream_id"`
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title,omitempty"`
	PlaybackURL string `json:"playback_url,omitempty"`
}

// ViewerCountPayload is published when a stream's viewer count changes.
type ViewerCountPayload struct {
	StreamID string `json:"stream_id"`
	Count    int    `json:"count"`
}
