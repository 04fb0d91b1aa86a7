package format

import (
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{10, 10},
		{1.005, 1.01},
		{-1.005, -1.01},
		{2.345, 2.35},
		{-12.8205128, -12.82},
		{33.333333, 33.33},
		{0, 0},
		{2.675, 2.68},
		{0.125, 0.13},
		{-0.125, -0.13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

func TestRound2_NonFinite(t *testing.T) {
	require.NotPanics(t, func() {
		assert.True(t, math.IsNaN(Round2(math.NaN())))
		assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
		assert.True(t, math.IsInf(Round2(math.Inf(-1)), -1))
	})
}

func TestRoundNull(t *testing.T) {
	assert.False(t, RoundNull(null.Float{}).Valid)
	assert.False(t, RoundNull(null.FloatFrom(math.NaN())).Valid)
	assert.False(t, RoundNull(null.FloatFrom(math.Inf(1))).Valid)
	got := RoundNull(null.FloatFrom(1.266))
	assert.True(t, got.Valid)
	assert.Equal(t, 1.27, got.Float64)
}

func TestDates(t *testing.T) {
	d := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "02-01-24", ShortDate(d))
	assert.Equal(t, "02-01-2024", LongDate(d))
	assert.Equal(t, "2024-01-02", ISODate(d))

	parsed, err := ParseISODate("2024-01-02")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(d))

	_, err = ParseISODate("02/01/2024")
	assert.Error(t, err)
}

func TestSign(t *testing.T) {
	assert.Equal(t, SignPositive, Sign(null.FloatFrom(0.01)))
	assert.Equal(t, SignNegative, Sign(null.FloatFrom(-3)))
	assert.Equal(t, SignNone, Sign(null.FloatFrom(0)))
	assert.Equal(t, SignNone, Sign(null.Float{}))
}

func TestPriceAndPercent(t *testing.T) {
	assert.Equal(t, "3.95", Price(3.95))
	assert.Equal(t, "35.10", Price(35.1))
	assert.Equal(t, "+10.00%", Percent(10))
	assert.Equal(t, "-4.81%", Percent(-4.810126))
	assert.Equal(t, "+0.00%", Percent(0))
	assert.Equal(t, "", NullPrice(null.Float{}))
	assert.Equal(t, "11.00", NullPrice(null.FloatFrom(11)))
	assert.Equal(t, "", Price(math.NaN()))
	assert.Equal(t, "", Percent(math.Inf(1)))
	assert.Equal(t, "", NullPrice(null.FloatFrom(math.NaN())))
}
