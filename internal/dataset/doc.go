// Package dataset loads the closing-price file into an immutable in-memory
// dataset and keeps it cached until the file changes on disk.
//
// Parse reads the CSV form (Fecha, Hora, Ticker, Precio_Cierre). ParseWorkbook
// reads the same columns from the first sheet of an .xlsx workbook. LoadFile
// picks one by extension and fingerprints the raw bytes with xxhash.
//
// Cache checks the file's size and modification time on every Get. When they
// move it reloads, collapsing concurrent reloads into a single read, and keeps
// the previous dataset if the fingerprint turns out to be unchanged.
package dataset
