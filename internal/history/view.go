package history

import (
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// View is everything the ticker page shows.
type View struct {
	Ticker    string  `json:"ticker"`
	Range     Range   `json:"range"`
	Available Range   `json:"available"`
	Metric    Metric  `json:"metric"`
	Rows      []Row   `json:"rows"`
	Series    []Point `json:"series"`
	Stats     Stats   `json:"stats"`
	Empty     bool    `json:"empty"`
}

// NewView filters obs to ticker and rng. Open bounds of rng default to the
// range observed for the ticker.
func NewView(obs []domain.Observation, ticker string, rng Range) *View {
	available, _ := FullRange(ForTicker(obs, ticker))
	effective := rng.WithDefaults(available)
	series := Filter(obs, ticker, effective)

	return &View{
		Ticker:    ticker,
		Range:     effective,
		Available: available,
		Metric:    ComputeMetric(series),
		Rows:      Rows(series),
		Series:    Points(series),
		Stats:     Summarize(series),
		Empty:     len(series) == 0,
	}
}
