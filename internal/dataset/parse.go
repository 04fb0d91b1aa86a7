package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// Source column names.
const (
	ColumnFecha  = "Fecha"
	ColumnHora   = "Hora"
	ColumnTicker = "Ticker"
	ColumnPrecio = "Precio_Cierre"
)

var requiredColumns = []string{ColumnFecha, ColumnHora, ColumnTicker, ColumnPrecio}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var horaLayouts = []string{
	"15:04:05",
	"15:04",
	"15:04:05.000",
	"3:04:05 PM",
}

// columnIndex maps each required column to its position in the header row.
type columnIndex map[string]int

func indexHeader(header []string) (columnIndex, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		byName[strings.ToLower(strings.TrimSpace(name))] = i
	}

	idx := make(columnIndex, len(requiredColumns))
	for _, col := range requiredColumns {
		pos, ok := byName[strings.ToLower(col)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		idx[col] = pos
	}
	return idx, nil
}

func (idx columnIndex) field(record []string, col string) string {
	pos := idx[col]
	if pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// Parse reads closing-price records from CSV. Columns are located by header
// name, so their order does not matter and extra columns are ignored.
func Parse(r io.Reader) ([]domain.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	observations := make([]domain.Observation, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		obs, err := idx.observation(record, line)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

func (idx columnIndex) observation(record []string, line int) (domain.Observation, error) {
	ticker := idx.field(record, ColumnTicker)
	if ticker == "" {
		return domain.Observation{}, &ParseError{Line: line, Column: ColumnTicker, Err: errors.New("ticker is empty")}
	}

	rawFecha := idx.field(record, ColumnFecha)
	fecha, err := ParseDate(rawFecha)
	if err != nil {
		return domain.Observation{}, &ParseError{Line: line, Column: ColumnFecha, Value: rawFecha, Err: err}
	}

	rawHora := idx.field(record, ColumnHora)
	hora, err := ParseHora(rawHora)
	if err != nil {
		return domain.Observation{}, &ParseError{Line: line, Column: ColumnHora, Value: rawHora, Err: err}
	}

	rawPrecio := idx.field(record, ColumnPrecio)
	precio, err := ParsePrice(rawPrecio)
	if err != nil {
		return domain.Observation{}, &ParseError{Line: line, Column: ColumnPrecio, Value: rawPrecio, Err: err}
	}

	return domain.Observation{
		Ticker: ticker,
		Fecha:  fecha,
		Hora:   hora,
		Precio: precio,
	}, nil
}

// ParseDate accepts the date layouts seen in exported price files and returns
// the calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.New("unrecognised date")
}

// ParseHora normalises a time of day to HH:MM:SS. An empty value stays empty
// and sorts before any real time.
func ParseHora(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	for _, layout := range horaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", errors.New("unrecognised time of day")
}

// ParsePrice parses a decimal price. A comma is read as the decimal separator
// when the value has no dot. An empty cell, NaN and ±Inf are a missing price
// and come back null.
func ParsePrice(s string) (null.Float, error) {
	if s == "" {
		return null.Float{}, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}, nil
	}
	return null.FloatFrom(v), nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
