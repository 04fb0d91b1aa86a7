package history

import (
	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// Stats summarises a filtered series.
type Stats struct {
	Count        int     `json:"count"`
	First        string  `json:"first_date,omitempty"`
	Last         string  `json:"last_date,omitempty"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	PeriodChange float64 `json:"period_change_pct"`
	MeanChange   float64 `json:"mean_daily_change_pct"`
	StdDevChange float64 `json:"stddev_daily_change_pct"`
	PositiveDays int     `json:"positive_days"`
	NegativeDays int     `json:"negative_days"`
}

// Summarize computes price and daily-change statistics. Change figures stay
// zero with fewer than two entries.
func Summarize(series []domain.Observation) Stats {
	s := Stats{Count: len(series)}
	if s.Count == 0 {
		return s
	}

	prices := make([]float64, len(series))
	nullable := make([]null.Float, len(series))
	for i, o := range series {
		prices[i] = o.Precio.Float64
		nullable[i] = o.Precio
	}

	s.First = format.ISODate(series[0].Fecha)
	s.Last = format.ISODate(series[len(series)-1].Fecha)
	s.Min = floats.Min(prices)
	s.Max = floats.Max(prices)
	s.Mean = stat.Mean(prices, nil)

	if s.Count < 2 {
		return s
	}

	if first := prices[0]; first != 0 {
		s.PeriodChange = (prices[len(prices)-1] - first) / first * 100
	}

	changes := make([]float64, 0, len(prices)-1)
	for _, c := range reshape.PercentChanges(nullable) {
		if !c.Valid {
			continue
		}
		changes = append(changes, c.Float64)
		switch {
		case c.Float64 > 0:
			s.PositiveDays++
		case c.Float64 < 0:
			s.NegativeDays++
		}
	}
	if len(changes) > 0 {
		s.MeanChange = stat.Mean(changes, nil)
	}
	if len(changes) > 1 {
		s.StdDevChange = stat.StdDev(changes, nil)
	}
	return s
}
