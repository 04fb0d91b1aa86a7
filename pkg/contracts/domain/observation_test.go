package domain

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestObservationLess(t *testing.T) {
	base := Observation{Ticker: "SAN", Fecha: day("2024-01-02"), Hora: "17:35:00"}

	tests := []struct {
		name  string
		other Observation
		want  bool
	}{
		{name: "later ticker", other: Observation{Ticker: "TEF", Fecha: day("2024-01-01"), Hora: "09:00:00"}, want: true},
		{name: "earlier ticker", other: Observation{Ticker: "ACS", Fecha: day("2024-01-03"), Hora: "09:00:00"}, want: false},
		{name: "later date", other: Observation{Ticker: "SAN", Fecha: day("2024-01-03"), Hora: "09:00:00"}, want: true},
		{name: "later hora", other: Observation{Ticker: "SAN", Fecha: day("2024-01-02"), Hora: "17:36:00"}, want: true},
		{name: "equal", other: base, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Less(tt.other))
		})
	}
}

func TestDatasetAccessors(t *testing.T) {
	ds := &Dataset{
		Path:        "precios.csv",
		Fingerprint: 0xbeef,
		Observations: []Observation{
			{Ticker: "TEF", Fecha: day("2024-01-03"), Precio: null.FloatFrom(4)},
			{Ticker: "SAN", Fecha: day("2024-01-01"), Precio: null.FloatFrom(10)},
			{Ticker: "SAN", Fecha: day("2024-01-02"), Precio: null.FloatFrom(11)},
		},
	}

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"SAN", "TEF"}, ds.Tickers())
	assert.True(t, ds.HasTicker("SAN"))
	assert.False(t, ds.HasTicker("san"))
	assert.Equal(t, "000000000000beef", ds.FingerprintHex())

	first, last, ok := ds.DateRange()
	assert.True(t, ok)
	assert.Equal(t, day("2024-01-01"), first)
	assert.Equal(t, day("2024-01-03"), last)

	s := ds.Summary()
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.Tickers)
	assert.Equal(t, "2024-01-01", s.FirstDate)
	assert.Equal(t, "2024-01-03", s.LastDate)
}

func TestDatasetNil(t *testing.T) {
	var ds *Dataset

	assert.Zero(t, ds.Len())
	assert.Nil(t, ds.Tickers())
	assert.False(t, ds.HasTicker("SAN"))
	assert.Empty(t, ds.FingerprintHex())

	_, _, ok := ds.DateRange()
	assert.False(t, ok)
}
