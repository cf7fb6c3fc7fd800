package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atims0208/fieldhouse/internal/config"
	"github.com/atims0208/fieldhouse/internal/domain"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		MaxMessageSize: 4096,
		WriteWait:      time.Second,
		PongWait:       200 * time.Millisecond,
		PingInterval:   50 * time.Millisecond,
	}
}

func newTestHub() *Hub {
	h := NewHub(testWSConfig())
	go h.Run()
	return h
}

// testClient builds a hub client with no underlying connection. Hub
// bookkeeping never touches Conn, so these are enough for fan-out tests.
func testClient(id string, h *Hub, buffer int) *Client {
	return &Client{
		ID:      id,
		Hub:     h,
		Send:    make(chan []byte, buffer),
		Session: domain.NewSession(id),
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := newTestHub()
	c := testClient("c1", h, 8)

	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	// Send is closed on unregister.
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_JoinStream(t *testing.T) {
	h := newTestHub()
	c := testClient("c1", h, 8)

	h.JoinStream(c, "stream-a")
	assert.Equal(t, 1, h.ViewerCount("stream-a"))
	assert.Equal(t, "stream-a", c.Session.GetCurrentStream())

	t.Run("re-join is a no-op", func(t *testing.T) {
		h.JoinStream(c, "stream-a")
		assert.Equal(t, 1, h.ViewerCount("stream-a"))
	})

	t.Run("joining another stream leaves the first", func(t *testing.T) {
		h.JoinStream(c, "stream-b")
		assert.Equal(t, 0, h.ViewerCount("stream-a"))
		assert.Equal(t, 1, h.ViewerCount("stream-b"))
		assert.Equal(t, "stream-b", c.Session.GetCurrentStream())
	})

	t.Run("leave clears the subscription", func(t *testing.T) {
		h.LeaveStream(c)
		assert.Equal(t, 0, h.ViewerCount("stream-b"))
		assert.Equal(t, "", c.Session.GetCurrentStream())
	})
}

func TestHub_EmptySetIsCollected(t *testing.T) {
	h := newTestHub()
	c := testClient("c1", h, 8)

	h.JoinStream(c, "stream-a")
	h.LeaveStream(c)

	h.mu.RLock()
	_, exists := h.streams["stream-a"]
	h.mu.RUnlock()
	assert.False(t, exists)
}

func TestHub_Broadcast(t *testing.T) {
	h := newTestHub()

	viewer1 := testClient("v1", h, 8)
	viewer2 := testClient("v2", h, 8)
	outsider := testClient("v3", h, 8)
	h.JoinStream(viewer1, "stream-a")
	h.JoinStream(viewer2, "stream-a")
	h.JoinStream(outsider, "stream-b")

	payload := map[string]string{"type": "chat_message", "text": "hello"}
	require.NoError(t, h.Broadcast("stream-a", payload, ""))

	for _, viewer := range []*Client{viewer1, viewer2} {
		select {
		case raw := <-viewer.Send:
			var got map[string]string
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, "hello", got["text"])
		case <-time.After(time.Second):
			t.Fatalf("viewer %s did not receive broadcast", viewer.ID)
		}
	}

	select {
	case <-outsider.Send:
		t.Fatal("outsider received a broadcast for another stream")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	h := newTestHub()

	sender := testClient("sender", h, 8)
	viewer := testClient("viewer", h, 8)
	h.JoinStream(sender, "stream-a")
	h.JoinStream(viewer, "stream-a")

	require.NoError(t, h.Broadcast("stream-a", map[string]string{"x": "y"}, "sender"))

	select {
	case <-viewer.Send:
	case <-time.After(time.Second):
		t.Fatal("viewer did not receive broadcast")
	}

	select {
	case <-sender.Send:
		t.Fatal("excluded client received its own broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowViewerIsEvicted(t *testing.T) {
	h := newTestHub()

	healthy := testClient("healthy", h, 8)
	stuck := testClient("stuck", h, 0) // nothing drains this queue

	h.Register(healthy)
	h.Register(stuck)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.JoinStream(healthy, "stream-a")
	h.JoinStream(stuck, "stream-a")

	require.NoError(t, h.Broadcast("stream-a", map[string]string{"x": "y"}, ""))

	select {
	case <-healthy.Send:
	case <-time.After(time.Second):
		t.Fatal("healthy viewer did not receive broadcast")
	}

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1 && h.ViewerCount("stream-a") == 1
	}, time.Second, 5*time.Millisecond)
}

// startWSServer upgrades inbound connections, registers them with the
// hub and runs both pumps, mirroring the production websocket handler.
func startWSServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient("peer", h, conn, testWSConfig())
		h.Register(client)
		go client.WritePump()
		go client.ReadPump(func(*Client, []byte) {})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_HeartbeatKeepsConnectionAlive(t *testing.T) {
	h := newTestHub()
	server := startWSServer(t, h)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// Reading drives the default ping handler, which answers each ping
	// with a pong and keeps the server-side read deadline extended.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Several pong windows pass without the peer being dropped.
	time.Sleep(3 * testWSConfig().PongWait)
	assert.Equal(t, 1, h.ClientCount())

	conn.Close()
	<-done
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClient_UnresponsivePeerIsDropped(t *testing.T) {
	h := newTestHub()
	server := startWSServer(t, h)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// Never read: pings are never answered, so the pong window expires
	// and the read pump unregisters the client.
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
