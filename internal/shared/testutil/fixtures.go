package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Header is the header row of a closing-price CSV.
const Header = "Fecha,Hora,Ticker,Precio_Cierre"

// SampleCSV has two tickers over three sessions, with an intraday duplicate for
// SAN on 2024-01-02 where the 17:35 record must win.
const SampleCSV = `Fecha,Hora,Ticker,Precio_Cierre
2024-01-01,17:35:00,SAN,3.80
2024-01-02,12:00:00,SAN,3.90
2024-01-02,17:35:00,SAN,3.95
2024-01-03,17:35:00,SAN,3.76
2024-01-01,17:35:00,ITX,35.10
2024-01-02,17:35:00,ITX,35.80
2024-01-03,17:35:00,ITX,35.80
`

// HeaderOnlyCSV contains the header and nothing else.
const HeaderOnlyCSV = Header + "\n"

// CSV joins rows under the standard header.
func CSV(rows ...string) string {
	return Header + "\n" + strings.Join(rows, "\n") + "\n"
}

// WriteCSV writes content to a temporary file and returns its path.
func WriteCSV(t testing.TB, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "precios_cierre_bolsa.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return path
}

// WriteXLSX writes rows (header first) to the first sheet of a temporary workbook.
func WriteXLSX(t testing.TB, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), "precios_cierre_bolsa.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx fixture: %v", err)
	}
	return path
}
