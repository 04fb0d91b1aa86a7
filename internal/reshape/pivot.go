package reshape

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// Table is the ticker by date matrix of closing prices and day-over-day
// changes. Values are stored at full precision.
type Table struct {
	Tickers []string
	Dates   []time.Time
	Prices  [][]null.Float
	Changes [][]null.Float

	tickerIdx map[string]int
	dateIdx   map[time.Time]int
}

// Pivot reshapes raw observations into a Table.
//
// Observations are stably ordered by (Ticker, Fecha, Hora) and collapsed so
// that only the last record of each (Ticker, Fecha) pair survives. The date
// axis is the union of dates across all tickers.
func Pivot(obs []domain.Observation) *Table {
	sorted := make([]domain.Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})

	latest := make(map[domain.Key]null.Float, len(sorted))
	tickerSet := make(map[string]struct{})
	dateSet := make(map[time.Time]struct{})
	for _, o := range sorted {
		latest[o.Key()] = o.Precio
		tickerSet[o.Ticker] = struct{}{}
		dateSet[o.Fecha] = struct{}{}
	}

	t := &Table{
		Tickers:   make([]string, 0, len(tickerSet)),
		Dates:     make([]time.Time, 0, len(dateSet)),
		tickerIdx: make(map[string]int, len(tickerSet)),
		dateIdx:   make(map[time.Time]int, len(dateSet)),
	}
	for ticker := range tickerSet {
		t.Tickers = append(t.Tickers, ticker)
	}
	sort.Strings(t.Tickers)
	for d := range dateSet {
		t.Dates = append(t.Dates, d)
	}
	sort.Slice(t.Dates, func(i, j int) bool { return t.Dates[i].Before(t.Dates[j]) })

	for i, ticker := range t.Tickers {
		t.tickerIdx[ticker] = i
	}
	for j, d := range t.Dates {
		t.dateIdx[d] = j
	}

	t.Prices = make([][]null.Float, len(t.Tickers))
	t.Changes = make([][]null.Float, len(t.Tickers))
	for i, ticker := range t.Tickers {
		prices := make([]null.Float, len(t.Dates))
		for j, d := range t.Dates {
			if p, ok := latest[domain.Key{Ticker: ticker, Fecha: d}]; ok {
				prices[j] = p
			}
		}
		t.Prices[i] = prices
		t.Changes[i] = PercentChanges(prices)
	}

	return t
}

// PercentChanges returns (p[i]-p[i-1])/p[i-1]*100 for each position. The first
// entry is null, as is any entry whose operands are missing, whose previous
// price is zero or whose result is not finite. Gaps are not filled forward.
func PercentChanges(prices []null.Float) []null.Float {
	changes := make([]null.Float, len(prices))
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if !prev.Valid || !cur.Valid || prev.Float64 == 0 {
			continue
		}
		change := (cur.Float64 - prev.Float64) / prev.Float64 * 100
		if math.IsNaN(change) || math.IsInf(change, 0) {
			continue
		}
		changes[i] = null.FloatFrom(change)
	}
	return changes
}

// Len returns the number of ticker rows.
func (t *Table) Len() int {
	return len(t.Tickers)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Price returns the closing price of ticker on date.
func (t *Table) Price(ticker string, date time.Time) null.Float {
	i, j, ok := t.locate(ticker, date)
	if !ok {
		return null.Float{}
	}
	return t.Prices[i][j]
}

// Change returns the percentage change of ticker on date.
func (t *Table) Change(ticker string, date time.Time) null.Float {
	i, j, ok := t.locate(ticker, date)
	if !ok {
		return null.Float{}
	}
	return t.Changes[i][j]
}

func (t *Table) locate(ticker string, date time.Time) (int, int, bool) {
	i, ok := t.tickerIdx[ticker]
	if !ok {
		return 0, 0, false
	}
	j, ok := t.dateIdx[date]
	if !ok {
		return 0, 0, false
	}
	return i, j, true
}
