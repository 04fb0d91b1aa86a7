package history

import (
	"encoding/json"
	"time"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// Range is an inclusive date interval. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// FullRange returns the earliest and latest Fecha in obs.
func FullRange(obs []domain.Observation) (Range, bool) {
	if len(obs) == 0 {
		return Range{}, false
	}
	r := Range{From: obs[0].Fecha, To: obs[0].Fecha}
	for _, o := range obs[1:] {
		if o.Fecha.Before(r.From) {
			r.From = o.Fecha
		}
		if o.Fecha.After(r.To) {
			r.To = o.Fecha
		}
	}
	return r, true
}

// Contains reports whether d falls inside the range.
func (r Range) Contains(d time.Time) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// Inverted reports whether both bounds are set and From is after To.
func (r Range) Inverted() bool {
	return !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To)
}

// WithDefaults fills open bounds from def.
func (r Range) WithDefaults(def Range) Range {
	if r.From.IsZero() {
		r.From = def.From
	}
	if r.To.IsZero() {
		r.To = def.To
	}
	return r
}

// MarshalJSON renders the bounds as yyyy-mm-dd, omitting open ones.
func (r Range) MarshalJSON() ([]byte, error) {
	out := struct {
		From string `json:"from,omitempty"`
		To   string `json:"to,omitempty"`
	}{}
	if !r.From.IsZero() {
		out.From = format.ISODate(r.From)
	}
	if !r.To.IsZero() {
		out.To = format.ISODate(r.To)
	}
	return json.Marshal(out)
}
