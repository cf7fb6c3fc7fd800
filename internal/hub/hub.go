package hub

import (
	"encoding/json"
	"sync"

	"github.com/atims0208/fieldhouse/internal/config"
	"github.com/atims0208/fieldhouse/pkg/log"
)

// Hub owns the registry of viewer connections and the per-stream
// subscriber sets. All mutation goes through the hub; no other
// component touches the maps.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	streams    map[string]map[string]*Client // streamID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *StreamMessage
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// StreamMessage is one payload fanned out to a stream's viewers.
type StreamMessage struct {
	StreamID string
	Message  []byte
	Exclude  string // Client ID to exclude
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		streams:    make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *StreamMessage, 256),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				h.removeFromStreamLocked(client)
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if viewers, ok := h.streams[msg.StreamID]; ok {
				for clientID, client := range viewers {
					if clientID == msg.Exclude {
						continue
					}
					select {
					case client.Send <- msg.Message:
					default:
						// Slow or dead consumer; a failed delivery to one
						// viewer must not block the rest.
						go h.removeClient(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// removeFromStreamLocked removes the client from its subscriber set and
// garbage-collects the set once empty. Caller holds h.mu.
func (h *Hub) removeFromStreamLocked(client *Client) {
	streamID := client.Session.GetCurrentStream()
	if streamID == "" {
		return
	}
	if viewers, ok := h.streams[streamID]; ok {
		delete(viewers, client.ID)
		if len(viewers) == 0 {
			delete(h.streams, streamID)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinStream subscribes the client to a stream's events. A client is in
// at most one subscriber set; joining a new stream leaves the previous
// one. Re-joining the same stream is a no-op.
func (h *Hub) JoinStream(client *Client, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromStreamLocked(client)

	if _, ok := h.streams[streamID]; !ok {
		h.streams[streamID] = make(map[string]*Client)
	}
	h.streams[streamID][client.ID] = client
	client.Session.JoinStream(streamID)

	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldStreamID, streamID).Msg("client joined stream")
}

// LeaveStream unsubscribes the client from its current stream.
func (h *Hub) LeaveStream(client *Client) {
	h.mu.Lock()
	h.removeFromStreamLocked(client)
	client.Session.LeaveStream()
	h.mu.Unlock()

	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Msg("client left stream")
}

// Broadcast serializes the payload once and delivers it to every viewer
// of the stream except the excluded client ID. Delivery is best-effort,
// at most once; viewers not connected at call time never see the event.
func (h *Hub) Broadcast(streamID string, payload interface{}, exclude string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.broadcast <- &StreamMessage{
		StreamID: streamID,
		Message:  data,
		Exclude:  exclude,
	}
	return nil
}

// BroadcastRaw sends pre-serialized bytes to all viewers of a stream.
func (h *Hub) BroadcastRaw(streamID string, data []byte, exclude string) {
	h.broadcast <- &StreamMessage{
		StreamID: streamID,
		Message:  data,
		Exclude:  exclude,
	}
}

// ViewerCount returns the number of clients subscribed to a stream.
func (h *Hub) ViewerCount(streamID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if viewers, ok := h.streams[streamID]; ok {
		return len(viewers)
	}
	return 0
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
