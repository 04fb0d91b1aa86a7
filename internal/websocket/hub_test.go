package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
	"github.com/trazeinos/ibex35-dashboard/internal/infrastructure"
	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/events"
)

type fakeConn struct{}

func (fakeConn) WriteMessage(int, []byte) error            { return nil }
func (fakeConn) ReadMessage() (int, []byte, error)         { return 0, nil, websocket.ErrCloseSent }
func (fakeConn) Close() error                              { return nil }
func (fakeConn) SetReadDeadline(time.Time) error           { return nil }
func (fakeConn) SetWriteDeadline(time.Time) error          { return nil }
func (fakeConn) SetReadLimit(int64)                        {}
func (fakeConn) SetPongHandler(func(appData string) error) {}
func (fakeConn) RemoteAddr() string                        { return "127.0.0.1:9999" }

func readMessage(t *testing.T, ch <-chan []byte) events.Message {
	t.Helper()
	select {
	case raw, ok := <-ch:
		require.True(t, ok, "send channel closed")
		var msg events.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return events.Message{}
	}
}

func TestHub_StartStopIdempotent(t *testing.T) {
	hub := NewHub(testutil.DiscardLogger())
	hub.Start()
	hub.Start()
	hub.Stop()
	hub.Stop()

	assert.False(t, hub.Register(NewClient(hub, fakeConn{}, "", testutil.DiscardLogger())))
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub(testutil.DiscardLogger())
	hub.Start()
	defer hub.Stop()

	client := NewClient(hub, fakeConn{}, "trace-1", testutil.DiscardLogger())
	require.True(t, hub.Register(client))

	greeting := readMessage(t, client.send)
	assert.Equal(t, events.MessageTypeConnection, greeting.Type)
	assert.Equal(t, 1, hub.ClientCount())

	ctx := infrastructure.WithTraceID(context.Background(), "req-7")
	require.NoError(t, hub.Broadcast(ctx, events.MessageTypeDatasetUpdated, events.DatasetUpdatedEvent{Rows: 8, Tickers: 3}))

	update := readMessage(t, client.send)
	assert.Equal(t, events.MessageTypeDatasetUpdated, update.Type)
	assert.Equal(t, "req-7", update.TraceID)
	data := update.Data.(map[string]interface{})
	assert.Equal(t, float64(8), data["rows"])

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-client.send
	assert.False(t, ok)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(testutil.DiscardLogger())
	hub.Start()
	defer hub.Stop()

	client := NewClient(hub, fakeConn{}, "", testutil.DiscardLogger())
	require.True(t, hub.Register(client))

	// Greeting plus a full buffer without anyone draining it
	for i := 0; i < sendBuffer+1; i++ {
		require.NoError(t, hub.Broadcast(context.Background(), events.MessageTypeDatasetUpdated, i))
	}

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(testutil.DiscardLogger())
	hub.Start()

	client := NewClient(hub, fakeConn{}, "", testutil.DiscardLogger())
	require.True(t, hub.Register(client))
	hub.Stop()

	for range client.send {
	}
	assert.Equal(t, 0, hub.ClientCount())
	assert.NoError(t, hub.Broadcast(context.Background(), events.MessageTypeDatasetUpdated, nil))
}

func TestNewHub_Keepalive(t *testing.T) {
	hub := NewHub(testutil.DiscardLogger(), WithKeepalive(config.WebSocketConfig{
		PingPeriod: time.Minute,
		PongWait:   30 * time.Second,
	}))

	assert.Equal(t, 30*time.Second, hub.pongWait)
	assert.Less(t, hub.pingPeriod, hub.pongWait)
}

func TestHandler_EndToEnd(t *testing.T) {
	hub := NewHub(testutil.DiscardLogger())
	hub.Start()
	defer hub.Stop()

	srv := httptest.NewServer(NewHandler(hub, config.WebSocketConfig{}, nil, testutil.DiscardLogger()))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var greeting events.Message
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, events.MessageTypeConnection, greeting.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": string(events.MessageTypeHeartbeat)}))
	require.NoError(t, hub.Broadcast(context.Background(), events.MessageTypeDatasetUpdated, events.DatasetUpdatedEvent{Fingerprint: "abc"}))

	var update events.Message
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, events.MessageTypeDatasetUpdated, update.Type)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://allowed.example"})

	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://allowed.example", want: true},
		{origin: "http://dashboard.local:8080", want: true},
		{origin: "http://evil.example", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://dashboard.local:8080/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(req), tt.origin)
	}
}
