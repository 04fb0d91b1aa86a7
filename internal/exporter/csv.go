package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/internal/history"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w.
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// PivotRecords flattens a table into its display header and string rows.
func PivotRecords(t *reshape.Table) ([]string, [][]string) {
	cols := t.Columns()
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title
	}

	records := make([][]string, 0, t.Len())
	for _, row := range t.Rows() {
		record := make([]string, 0, len(headers))
		record = append(record, row.Ticker)
		for _, cell := range row.Cells {
			record = append(record, formatCell(cell.Value))
		}
		records = append(records, record)
	}
	return headers, records
}

// WritePivotCSV writes the pivot table as CSV.
func WritePivotCSV(w io.Writer, t *reshape.Table, bom bool) error {
	headers, records := PivotRecords(t)
	return WriteCSV(w, WriteOptions{Headers: headers, Records: records, BOMPrefix: bom})
}

// WriteHistoryCSV writes the rows of a ticker view as CSV.
func WriteHistoryCSV(w io.Writer, v *history.View, bom bool) error {
	records := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		records[i] = []string{v.Ticker, r.Fecha, formatFloat(r.Precio)}
	}
	return WriteCSV(w, WriteOptions{
		Headers:   []string{"Ticker", "Fecha", "Precio_Cierre"},
		Records:   records,
		BOMPrefix: bom,
	})
}

// HistoryChange renders the metric change of a view for tabular output.
func HistoryChange(v *history.View) string {
	if !v.Metric.HasData {
		return "-"
	}
	return format.Percent(v.Metric.ChangePct)
}
