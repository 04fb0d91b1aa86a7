package history

import (
	"time"

	"github.com/guregu/null/v6"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// Metric is the headline figure of the ticker view: the latest close and its
// change against the previous close.
type Metric struct {
	Current   null.Float `json:"current"`
	Previous  null.Float `json:"previous"`
	ChangePct float64    `json:"change_pct"`
	Sign      string     `json:"sign"`
	HasData   bool       `json:"has_data"`
	AsOf      string     `json:"as_of,omitempty"`
}

// ComputeMetric uses the last two entries of a date-ordered series. With fewer
// than two entries, or a previous close of zero, the change is zero.
func ComputeMetric(series []domain.Observation) Metric {
	n := len(series)
	if n == 0 {
		return Metric{}
	}

	last := series[n-1]
	m := Metric{
		Current: last.Precio,
		HasData: true,
		AsOf:    format.ISODate(last.Fecha),
	}
	if n < 2 {
		return m
	}

	prev := series[n-2].Precio
	m.Previous = prev
	if last.Precio.Valid && prev.Valid && prev.Float64 != 0 {
		m.ChangePct = (last.Precio.Float64 - prev.Float64) / prev.Float64 * 100
	}
	m.Sign = format.SignOf(m.ChangePct)
	return m
}

// PriceText renders the current price, or "-" when there is none.
func (m Metric) PriceText() string {
	if !m.Current.Valid {
		return "-"
	}
	return format.Price(m.Current.Float64) + " €"
}

// ChangeText renders the change with its sign.
func (m Metric) ChangeText() string {
	return format.Percent(m.ChangePct)
}

// Row is one line of the formatted history table.
type Row struct {
	Fecha  string  `json:"fecha"`
	Precio float64 `json:"precio"`
}

// Rows renders dates as dd-mm-yyyy and prices rounded to two decimals. The
// series is expected to come from Filter, which only keeps priced dates.
func Rows(series []domain.Observation) []Row {
	rows := make([]Row, len(series))
	for i, o := range series {
		rows[i] = Row{
			Fecha:  format.LongDate(o.Fecha),
			Precio: format.Round2(o.Precio.Float64),
		}
	}
	return rows
}

// Point is one sample of the price line.
type Point struct {
	Date  time.Time `json:"-"`
	Day   string    `json:"date"`
	Price float64   `json:"price"`
}

// Points returns the chart series at full precision.
func Points(series []domain.Observation) []Point {
	points := make([]Point, len(series))
	for i, o := range series {
		points[i] = Point{Date: o.Fecha, Day: format.ISODate(o.Fecha), Price: o.Precio.Float64}
	}
	return points
}
