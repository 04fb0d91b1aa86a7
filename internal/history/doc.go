// Package history builds the single-ticker view: a date-filtered daily series,
// the latest-versus-previous close metric, table rows and summary statistics.
package history
