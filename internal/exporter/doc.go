// Package exporter writes the pivot table and ticker views as downloadable
// files and markdown.
//
// CSV output uses WriteCSV with an optional UTF-8 BOM so that spreadsheet
// applications pick the right encoding. XLSX output keeps values numeric with
// a 0.00 format, freezes the Ticker column and header row, and colours change
// cells green or red by sign. Markdown output backs the report page and the
// CLI.
//
// Example usage:
//
//	table := reshape.Pivot(ds.Observations)
//	err := exporter.WritePivotCSV(w, table, true)
package exporter
