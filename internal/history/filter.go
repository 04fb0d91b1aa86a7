package history

import (
	"sort"

	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// ForTicker returns the observations of ticker in input order, priced or not.
func ForTicker(obs []domain.Observation, ticker string) []domain.Observation {
	out := make([]domain.Observation, 0)
	for _, o := range obs {
		if o.Ticker == ticker {
			out = append(out, o)
		}
	}
	return out
}

// Filter keeps the observations of ticker inside rng, ordered by date, with a
// single observation per date: the last one by Hora. Dates whose last
// observation has no price are dropped.
func Filter(obs []domain.Observation, ticker string, rng Range) []domain.Observation {
	series := make([]domain.Observation, 0)
	for _, o := range obs {
		if o.Ticker == ticker && rng.Contains(o.Fecha) {
			series = append(series, o)
		}
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Less(series[j])
	})

	out := series[:0]
	for _, o := range series {
		if n := len(out); n > 0 && out[n-1].Fecha.Equal(o.Fecha) {
			out[n-1] = o
			continue
		}
		out = append(out, o)
	}

	priced := out[:0]
	for _, o := range out {
		if o.Precio.Valid {
			priced = append(priced, o)
		}
	}
	return priced
}
