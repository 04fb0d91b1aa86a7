// Package reshape turns long-format closing prices into the pivot shown on the
// main dashboard: one row per ticker and, for every date, a price column
// followed by its percentage change.
package reshape
