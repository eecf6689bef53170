// Package exporter serializes consolidated allocation tables into
// downloadable artifacts: the styled .xlsx master workbook and a plain CSV
// rendering of the same table.
package exporter
