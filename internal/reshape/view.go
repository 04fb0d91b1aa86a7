package reshape

import (
	"time"

	"github.com/guregu/null/v6"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
)

// Column kinds.
const (
	KindTicker = "ticker"
	KindPrice  = "price"
	KindChange = "change"
)

const (
	tickerKey      = "ticker"
	tickerTitle    = "Ticker"
	tickerWidth    = 100
	minColumnWidth = 80
	changeDigits   = 2
)

// Column is one display column of the pivot grid.
type Column struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Date      time.Time `json:"-"`
	Pinned    string    `json:"pinned,omitempty"`
	Width     int       `json:"width,omitempty"`
	Numeric   bool      `json:"numeric,omitempty"`
	Precision int       `json:"precision,omitempty"`
}

// Cell is one rendered value. Value is rounded for display.
type Cell struct {
	Key   string     `json:"key"`
	Value null.Float `json:"value"`
	Sign  string     `json:"sign"`
}

// Row is the rendered row of a ticker.
type Row struct {
	Ticker string `json:"ticker"`
	Cells  []Cell `json:"cells"`
}

// ColumnDefaults apply to every grid column.
type ColumnDefaults struct {
	Sortable  bool `json:"sortable"`
	Filter    bool `json:"filter"`
	Resizable bool `json:"resizable"`
	MinWidth  int  `json:"min_width"`
}

// GridOptions tell a client grid how to present the table.
type GridOptions struct {
	DefaultColumn ColumnDefaults `json:"default_column"`
	Height        int            `json:"height,omitempty"`
	Theme         string         `json:"theme,omitempty"`
}

// DefaultGridOptions returns the column defaults of the pivot grid.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		DefaultColumn: ColumnDefaults{
			Sortable:  true,
			Filter:    true,
			Resizable: true,
			MinWidth:  minColumnWidth,
		},
	}
}

// TableView is the JSON form of a pivot table.
type TableView struct {
	Columns []Column    `json:"columns"`
	Rows    []Row       `json:"rows"`
	Grid    GridOptions `json:"grid"`
}

// PriceKey and ChangeKey name the two columns of a date.
func PriceKey(d time.Time) string  { return format.ISODate(d) + "_price" }
func ChangeKey(d time.Time) string { return format.ISODate(d) + "_change" }

// Columns returns the Ticker column followed by a price and change column per
// date, titled "dd-mm-yy €" and "dd-mm-yy %".
func (t *Table) Columns() []Column {
	cols := make([]Column, 0, 1+2*len(t.Dates))
	cols = append(cols, Column{
		Key:    tickerKey,
		Title:  tickerTitle,
		Kind:   KindTicker,
		Pinned: "left",
		Width:  tickerWidth,
	})
	for _, d := range t.Dates {
		short := format.ShortDate(d)
		cols = append(cols,
			Column{Key: PriceKey(d), Title: short + " €", Kind: KindPrice, Date: d, Numeric: true},
			Column{Key: ChangeKey(d), Title: short + " %", Kind: KindChange, Date: d, Numeric: true, Precision: changeDigits},
		)
	}
	return cols
}

// Rows returns one display row per ticker with values rounded to two decimals.
// Only change cells carry a sign class.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.Tickers))
	for i, ticker := range t.Tickers {
		cells := make([]Cell, 0, 2*len(t.Dates))
		for j, d := range t.Dates {
			change := t.Changes[i][j]
			cells = append(cells,
				Cell{Key: PriceKey(d), Value: format.RoundNull(t.Prices[i][j])},
				Cell{Key: ChangeKey(d), Value: format.RoundNull(change), Sign: format.Sign(change)},
			)
		}
		rows[i] = Row{Ticker: ticker, Cells: cells}
	}
	return rows
}

// View bundles columns, rows and grid options.
func (t *Table) View(grid GridOptions) TableView {
	return TableView{
		Columns: t.Columns(),
		Rows:    t.Rows(),
		Grid:    grid,
	}
}
