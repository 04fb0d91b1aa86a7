package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/guregu/null/v6"
)

// Observation is a single closing-price record read from the source file.
type Observation struct {
	Ticker string     `json:"ticker" validate:"required"`
	Fecha  time.Time  `json:"fecha" validate:"required"`
	Hora   string     `json:"hora"` // normalised HH:MM:SS, used only for ordering
	// Precio is null when the file has no usable price
	Precio null.Float `json:"precio_cierre"`
}

// Key identifies the (Ticker, Fecha) pair that the reshape step deduplicates on.
type Key struct {
	Ticker string
	Fecha  time.Time
}

// Key returns the deduplication key of the observation.
func (o Observation) Key() Key {
	return Key{Ticker: o.Ticker, Fecha: o.Fecha}
}

// Less orders observations by (Ticker, Fecha, Hora).
func (o Observation) Less(other Observation) bool {
	if o.Ticker != other.Ticker {
		return o.Ticker < other.Ticker
	}
	if !o.Fecha.Equal(other.Fecha) {
		return o.Fecha.Before(other.Fecha)
	}
	return o.Hora < other.Hora
}

// Dataset is an immutable, fingerprinted snapshot of the source file.
type Dataset struct {
	Path         string        `json:"path"`
	Fingerprint  uint64        `json:"fingerprint"`
	LoadedAt     time.Time     `json:"loaded_at"`
	Observations []Observation `json:"-"`
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Observations)
}

// FingerprintHex renders the fingerprint as 16 hex digits, the form used in
// ETags, journal rows and websocket events.
func (d *Dataset) FingerprintHex() string {
	if d == nil {
		return ""
	}
	return FormatFingerprint(d.Fingerprint)
}

// FormatFingerprint renders fp as 16 hex digits
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// Tickers returns the distinct tickers in ascending order.
func (d *Dataset) Tickers() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	tickers := make([]string, 0)
	for _, o := range d.Observations {
		if _, ok := seen[o.Ticker]; ok {
			continue
		}
		seen[o.Ticker] = struct{}{}
		tickers = append(tickers, o.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// HasTicker reports whether any observation belongs to ticker.
func (d *Dataset) HasTicker(ticker string) bool {
	if d == nil {
		return false
	}
	for _, o := range d.Observations {
		if o.Ticker == ticker {
			return true
		}
	}
	return false
}

// DateRange returns the earliest and latest Fecha. ok is false for an empty dataset.
func (d *Dataset) DateRange() (first, last time.Time, ok bool) {
	if d.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = d.Observations[0].Fecha, d.Observations[0].Fecha
	for _, o := range d.Observations[1:] {
		if o.Fecha.Before(first) {
			first = o.Fecha
		}
		if o.Fecha.After(last) {
			last = o.Fecha
		}
	}
	return first, last, true
}

// Summary returns the metadata sent alongside API payloads.
func (d *Dataset) Summary() DatasetSummary {
	s := DatasetSummary{
		Path:        d.Path,
		Fingerprint: d.Fingerprint,
		LoadedAt:    d.LoadedAt,
		Rows:        d.Len(),
		Tickers:     len(d.Tickers()),
	}
	if first, last, ok := d.DateRange(); ok {
		s.FirstDate = first.Format("2006-01-02")
		s.LastDate = last.Format("2006-01-02")
	}
	return s
}

// DatasetSummary describes a loaded dataset without its observations.
type DatasetSummary struct {
	Path        string    `json:"path"`
	Fingerprint uint64    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
	Rows        int       `json:"rows"`
	Tickers     int       `json:"tickers"`
	FirstDate   string    `json:"first_date,omitempty"`
	LastDate    string    `json:"last_date,omitempty"`
}
