// Package shared holds helpers used by more than one package of the dashboard.
//
// The testutil subpackage provides a capturing slog handler and writers for
// closing-price fixtures (CSV and XLSX) so loader, service and handler tests
// can share the same sample data:
//
//	path := testutil.WriteCSV(t, testutil.SampleCSV)
//	logger, logs := testutil.NewTestLogger(t)
//
// Nothing in this package is imported by production code.
package shared
