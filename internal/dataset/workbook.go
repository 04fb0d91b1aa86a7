package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// ParseWorkbook reads the first sheet of an .xlsx file with the same header as
// the CSV source.
func ParseWorkbook(path string) ([]domain.Observation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f)
}

func parseWorkbookReader(r io.Reader) ([]domain.Observation, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseSheet(f)
}

func parseSheet(f *excelize.File) ([]domain.Observation, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	idx, err := indexHeader(rows[0])
	if err != nil {
		return nil, err
	}

	observations := make([]domain.Observation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		obs, err := idx.observation(row, i+2)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, nil
}
