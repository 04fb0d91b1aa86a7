package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
)

const pivotSheet = "Pivot"

// excel number format id for 0.00
const numFmtTwoDecimals = 2

type pivotStyles struct {
	header   int
	number   int
	positive int
	negative int
}

func newPivotStyles(f *excelize.File) (pivotStyles, error) {
	var s pivotStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.number, err = f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals}); err != nil {
		return s, err
	}
	if s.positive, err = f.NewStyle(&excelize.Style{
		NumFmt: numFmtTwoDecimals,
		Font:   &excelize.Font{Bold: true, Color: "008000"},
	}); err != nil {
		return s, err
	}
	if s.negative, err = f.NewStyle(&excelize.Style{
		NumFmt: numFmtTwoDecimals,
		Font:   &excelize.Font{Bold: true, Color: "FF0000"},
	}); err != nil {
		return s, err
	}
	return s, nil
}

// WritePivotXLSX writes the pivot table as a workbook with a frozen Ticker
// column and sign-coloured change cells.
func WritePivotXLSX(w io.Writer, t *reshape.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), pivotSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newPivotStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	cols := t.Columns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.Title
	}
	if err := f.SetSheetRow(pivotSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(pivotSheet, "A1", last, styles.header); err != nil {
		return err
	}

	for r, row := range t.Rows() {
		excelRow := r + 2
		values := make([]interface{}, 0, len(cols))
		values = append(values, row.Ticker)
		for _, cell := range row.Cells {
			if cell.Value.Valid {
				values = append(values, cell.Value.Float64)
			} else {
				values = append(values, nil)
			}
		}

		start, _ := excelize.CoordinatesToCellName(1, excelRow)
		if err := f.SetSheetRow(pivotSheet, start, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", excelRow, err)
		}

		for c, cell := range row.Cells {
			ref, _ := excelize.CoordinatesToCellName(c+2, excelRow)
			style := styles.number
			switch cell.Sign {
			case format.SignPositive:
				style = styles.positive
			case format.SignNegative:
				style = styles.negative
			}
			if err := f.SetCellStyle(pivotSheet, ref, ref, style); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(pivotSheet, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetPanes(pivotSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}

	return f.Write(w)
}
