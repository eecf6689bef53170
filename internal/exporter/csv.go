package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"mcmerge/pkg/contracts/domain"
)

// CSVOptions configures CSV writing behavior
type CSVOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteCSV writes the consolidated table as CSV: one header row, then the
// data rows aligned to the unified schema.
func WriteCSV(w io.Writer, ct *domain.ConsolidatedTable, options CSVOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(ct.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(ct.Columns))
	for i, row := range ct.Rows {
		for j, name := range ct.Columns {
			record[j] = row[name]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
