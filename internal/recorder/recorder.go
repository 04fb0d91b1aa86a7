// Package recorder keeps a journal of dataset loads. Prices are never stored;
// the source file stays the only copy of the data.
package recorder

import (
	"context"
	"time"
)

// LoadEvent is one journal entry.
type LoadEvent struct {
	ID          int64     `json:"id"`
	At          time.Time `json:"at"`
	Path        string    `json:"path"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Rows        int       `json:"rows"`
	Tickers     int       `json:"tickers"`
	Changed     bool      `json:"changed"`
	DurationMS  float64   `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}

// Recorder persists load events.
type Recorder interface {
	RecordLoad(ctx context.Context, evt *LoadEvent) error
	Recent(ctx context.Context, n int) ([]LoadEvent, error)
	Close() error
}
