// Package format renders dates, prices and percentage changes for display.
//
// Values are kept at full precision everywhere else in the dashboard and only
// pass through this package on their way to a page, an export or the JSON
// cells of a table view.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// Date layouts used across the dashboard.
const (
	ShortLayout = "02-01-06"
	LongLayout  = "02-01-2006"
	ISOLayout   = "2006-01-02"
)

// Sign classes attached to a rendered value.
const (
	SignPositive = "positive"
	SignNegative = "negative"
	SignNone     = ""
)

// Round2 rounds the shortest decimal form of v half away from zero to two
// decimal places, so 2.675 becomes 2.68. NaN and ±Inf are returned unchanged.
func Round2(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// RoundNull rounds a valid value. Null and non-finite values come back null.
func RoundNull(v null.Float) null.Float {
	if !v.Valid || !finite(v.Float64) {
		return null.Float{}
	}
	return null.FloatFrom(Round2(v.Float64))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ShortDate formats d as dd-mm-yy, the layout of the pivot column titles.
func ShortDate(d time.Time) string {
	return d.Format(ShortLayout)
}

// LongDate formats d as dd-mm-yyyy.
func LongDate(d time.Time) string {
	return d.Format(LongLayout)
}

// ISODate formats d as yyyy-mm-dd.
func ISODate(d time.Time) string {
	return d.Format(ISOLayout)
}

// ParseISODate parses a yyyy-mm-dd date as UTC midnight.
func ParseISODate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(ISOLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected yyyy-mm-dd", s)
	}
	return d, nil
}

// Sign classifies v. Null and zero carry no class.
func Sign(v null.Float) string {
	if !v.Valid {
		return SignNone
	}
	return SignOf(v.Float64)
}

// SignOf classifies a plain float.
func SignOf(v float64) string {
	switch {
	case v > 0:
		return SignPositive
	case v < 0:
		return SignNegative
	default:
		return SignNone
	}
}

// Price renders a price with two decimals. A non-finite value renders empty.
func Price(v float64) string {
	if !finite(v) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Percent renders a change with an explicit sign, e.g. "+1.28%".
func Percent(v float64) string {
	if !finite(v) {
		return ""
	}
	return fmt.Sprintf("%+.2f%%", Round2(v))
}

// NullPrice renders a nullable price. Null becomes the empty string.
func NullPrice(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return Price(v.Float64)
}
