// Package events defines the messages pushed to browsers over the /ws
// endpoint.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeConnection greets a client right after registration
	MessageTypeConnection MessageType = "connection"

	// MessageTypeDatasetUpdated announces that the price file changed and
	// the views should be reloaded
	MessageTypeDatasetUpdated MessageType = "dataset:updated"

	// MessageTypeDatasetError reports that a scheduled reload failed; the
	// previous dataset stays in service
	MessageTypeDatasetError MessageType = "dataset:error"

	// MessageTypeHeartbeat is sent by clients to keep idle connections open
	MessageTypeHeartbeat MessageType = "heartbeat"
)

// Message is the envelope of every server message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// NewMessage stamps a message with the current time
func NewMessage(t MessageType, data interface{}) Message {
	return Message{Type: t, Timestamp: time.Now().UTC(), Data: data}
}

// ConnectionEvent is the payload of MessageTypeConnection
type ConnectionEvent struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// DatasetUpdatedEvent is the payload of MessageTypeDatasetUpdated
type DatasetUpdatedEvent struct {
	Path        string    `json:"path"`
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
	Tickers     int       `json:"tickers"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// DatasetErrorEvent is the payload of MessageTypeDatasetError
type DatasetErrorEvent struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
