package dataset

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
)

func TestParse(t *testing.T) {
	obs, err := Parse(strings.NewReader(testutil.SampleCSV))
	require.NoError(t, err)
	require.Len(t, obs, 7)

	first := obs[0]
	assert.Equal(t, "SAN", first.Ticker)
	assert.True(t, first.Fecha.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "17:35:00", first.Hora)
	assert.Equal(t, null.FloatFrom(3.80), first.Precio)
}

func TestParse_ColumnOrderAndExtras(t *testing.T) {
	input := "\ufeffticker , Precio_Cierre,Volumen,HORA,fecha\n" +
		"BBVA,\"9,12\",1000,17:35,2024-02-01\n"

	obs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "BBVA", obs[0].Ticker)
	assert.Equal(t, null.FloatFrom(9.12), obs[0].Precio)
	assert.Equal(t, "17:35:00", obs[0].Hora)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantIs     error
		wantColumn string
		wantLine   int
	}{
		{
			name:   "empty file",
			input:  "",
			wantIs: ErrEmptyFile,
		},
		{
			name:   "missing price column",
			input:  "Fecha,Hora,Ticker\n2024-01-01,17:35,SAN\n",
			wantIs: ErrMissingColumn,
		},
		{
			name:       "bad price",
			input:      testutil.CSV("2024-01-01,17:35:00,SAN,3.80", "2024-01-02,17:35:00,SAN,n/a"),
			wantColumn: ColumnPrecio,
			wantLine:   3,
		},
		{
			name:       "bad date",
			input:      testutil.CSV("2024-13-45,17:35:00,SAN,3.80"),
			wantColumn: ColumnFecha,
			wantLine:   2,
		},
		{
			name:       "bad hora",
			input:      testutil.CSV("2024-01-01,late,SAN,3.80"),
			wantColumn: ColumnHora,
			wantLine:   2,
		},
		{
			name:       "empty ticker",
			input:      testutil.CSV("2024-01-01,17:35:00,,3.80"),
			wantColumn: ColumnTicker,
			wantLine:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)

			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
				return
			}

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %T", err)
			assert.Equal(t, tt.wantColumn, perr.Column)
			assert.Equal(t, tt.wantLine, perr.Line)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	obs, err := Parse(strings.NewReader(testutil.HeaderOnlyCSV))
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-05", "05/03/2024", "05-03-2024", "2024-03-05 09:00:00", "2024-03-05T09:00:00+01:00"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%s parsed as %s", in, got)
	}
}

func TestParseHora(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"17:35":    "17:35:00",
		"09:05:07": "09:05:07",
	}
	for in, want := range tests {
		got, err := ParseHora(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input   string
		want    null.Float
		wantErr bool
	}{
		{input: "1,5", want: null.FloatFrom(1.5)},
		{input: "1234.56", want: null.FloatFrom(1234.56)},
		{input: "0", want: null.FloatFrom(0)},
		{input: ""},
		{input: "NaN"},
		{input: "nan"},
		{input: "Inf"},
		{input: "-Inf"},
		{input: "Infinity"},
		{input: "n/a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_MissingPrices(t *testing.T) {
	input := testutil.CSV(
		"2024-01-01,17:35:00,SAN,10",
		"2024-01-02,17:35:00,SAN,NaN",
		"2024-01-03,17:35:00,SAN,Inf",
		"2024-01-04,17:35:00,SAN,",
	)

	obs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, obs, 4)

	assert.Equal(t, null.FloatFrom(10), obs[0].Precio)
	for _, o := range obs[1:] {
		assert.False(t, o.Precio.Valid, "%s should have no price", o.Fecha)
	}
}
