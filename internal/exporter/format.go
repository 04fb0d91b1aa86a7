package exporter

import (
	"github.com/guregu/null/v6"

	"github.com/trazeinos/ibex35-dashboard/internal/format"
)

// formatCell renders a nullable value with exactly 2 decimals. Null is empty.
func formatCell(v null.Float) string {
	return format.NullPrice(v)
}

// formatFloat formats a value with exactly 2 decimal places
func formatFloat(f float64) string {
	return format.Price(f)
}
