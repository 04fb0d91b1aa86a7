package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
	"github.com/trazeinos/ibex35-dashboard/internal/infrastructure"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/events"
)

const broadcastBuffer = 32

// Hub maintains the set of active clients and fans server messages out to
// them. All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	quit chan struct{}
	done chan struct{}

	mu      sync.Mutex
	running bool

	clientCount  atomic.Int64
	messagesSent atomic.Int64

	pingPeriod time.Duration
	pongWait   time.Duration

	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithMetrics reports the connected client count
func WithMetrics(m *infrastructure.BusinessMetrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithKeepalive overrides the ping period and pong wait used by clients
func WithKeepalive(cfg config.WebSocketConfig) HubOption {
	return func(h *Hub) {
		if cfg.PingPeriod > 0 {
			h.pingPeriod = cfg.PingPeriod
		}
		if cfg.PongWait > 0 {
			h.pongWait = cfg.PongWait
		}
	}
}

// NewHub creates a stopped hub
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		pingPeriod: config.WebSocketPingPeriod,
		pongWait:   config.WebSocketPongWait,
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.pingPeriod >= h.pongWait {
		h.pingPeriod = (h.pongWait * 9) / 10
	}
	return h
}

// Start launches the hub loop. It is a no-op when already running.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop disconnects every client and waits for the loop to exit. A stopped
// hub cannot be restarted.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				h.drop(ctx, client)
			}
			h.logger.Info("hub stopped", slog.Int64("messages_sent", h.messagesSent.Load()))
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.clientCount.Store(int64(len(h.clients)))
			if h.metrics != nil {
				h.metrics.WebSocketClients.Add(ctx, 1)
			}

			h.logger.InfoContext(infrastructure.WithTraceID(ctx, client.traceID), "client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", len(h.clients)))

			greeting, err := json.Marshal(events.NewMessage(events.MessageTypeConnection, events.ConnectionEvent{
				Status:   "connected",
				ClientID: client.id,
			}))
			if err == nil {
				select {
				case client.send <- greeting:
				default:
				}
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(ctx, client)
				h.logger.InfoContext(infrastructure.WithTraceID(ctx, client.traceID), "client unregistered",
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			delivered := 0
			for client := range h.clients {
				select {
				case client.send <- message:
					delivered++
				default:
					h.drop(ctx, client)
					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
			h.messagesSent.Add(int64(delivered))
			h.logger.Debug("broadcast delivered",
				slog.Int("clients", delivered),
				slog.Int("message_size", len(message)))
		}
	}
}

// drop must only be called from run
func (h *Hub) drop(ctx context.Context, client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.clientCount.Store(int64(len(h.clients)))
	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, -1)
	}
}

// Register adds a client. It returns false when the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client; unknown clients are ignored
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast sends a typed message to every connected client. The trace id
// of ctx, if any, travels with the message.
func (h *Hub) Broadcast(ctx context.Context, msgType events.MessageType, data interface{}) error {
	msg := events.NewMessage(msgType, data)
	msg.TraceID = infrastructure.GetTraceID(ctx)

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal message",
			slog.String("type", string(msgType)),
			slog.String("error", err.Error()))
		return err
	}

	select {
	case h.broadcast <- payload:
		return nil
	case <-h.quit:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// MessagesSent returns the number of messages handed to clients
func (h *Hub) MessagesSent() int64 {
	return h.messagesSent.Load()
}
