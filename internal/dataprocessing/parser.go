package dataprocessing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mcmerge/pkg/contracts/domain"
)

// Parsing errors surfaced to the service layer.
var (
	// ErrMalformedFile means the upload could not be opened as a workbook.
	ErrMalformedFile = errors.New("file cannot be read as a workbook")
	// ErrMissingStoreColumn means no header row carrying a Store Number
	// column was found.
	ErrMissingStoreColumn = errors.New("store number column not found")
)

// headerSearchLimit bounds the scan for the header row. Media Centre exports
// put the real header on spreadsheet row 7, but stray blank rows above it
// have been seen in the wild.
const headerSearchLimit = 15

// ParseAllocation reads one allocation export and extracts its table and the
// per-item metadata from the preamble rows above the header.
func ParseAllocation(r io.Reader, filename string) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	headerRow, columns, colIndex := findHeader(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrMissingStoreColumn)
	}

	slog.Debug("found allocation header",
		slog.String("file", filename),
		slog.Int("header_row", headerRow),
		slog.Int("columns", len(columns)))

	table := &domain.Table{
		SourceFile: filename,
		Columns:    columns,
		Items:      extractItemMeta(rows, headerRow, columns, colIndex),
	}

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rec := make(domain.Row, len(columns))
		for _, name := range columns {
			idx := colIndex[name]
			if idx < len(row) {
				rec[name] = strings.TrimSpace(row[idx])
			} else {
				rec[name] = ""
			}
		}
		table.Rows = append(table.Rows, rec)
	}

	return table, nil
}

// findHeader locates the header row by looking for the Store Number column.
// It returns the row index, the ordered column names with whitespace trimmed
// and the store column renamed to its canonical form, and a name-to-cell-index
// map for reading data rows.
func findHeader(rows [][]string) (int, []string, map[string]int) {
	limit := len(rows)
	if limit > headerSearchLimit {
		limit = headerSearchLimit
	}

	for i := 0; i < limit; i++ {
		storeCol := -1
		for j, cell := range rows[i] {
			if strings.EqualFold(strings.TrimSpace(cell), domain.StoreNumberColumn) {
				storeCol = j
				break
			}
		}
		if storeCol < 0 {
			continue
		}

		var columns []string
		colIndex := make(map[string]int)
		for j, cell := range rows[i] {
			name := strings.TrimSpace(cell)
			if name == "" {
				continue
			}
			if j == storeCol {
				name = domain.StoreNumberColumn
			}
			if _, dup := colIndex[name]; dup {
				continue
			}
			columns = append(columns, name)
			colIndex[name] = j
		}
		return i, columns, colIndex
	}

	return -1, nil, nil
}

// extractItemMeta reads the preamble rows above the header. Relative to the
// header row the brief description sits five rows up and the overs count two
// rows up, matching the fixed layout of Media Centre exports.
func extractItemMeta(rows [][]string, headerRow int, columns []string, colIndex map[string]int) map[string]domain.ItemMeta {
	if headerRow < 5 {
		return nil
	}

	briefRow := rows[headerRow-5]
	oversRow := rows[headerRow-2]

	meta := make(map[string]domain.ItemMeta)
	for _, name := range columns {
		if domain.IsKeyColumn(name) {
			continue
		}
		idx := colIndex[name]
		m := domain.ItemMeta{}
		if idx < len(briefRow) {
			m.BriefDescription = strings.TrimSpace(briefRow[idx])
		}
		if idx < len(oversRow) {
			m.Overs = parseNumber(oversRow[idx])
		}
		meta[name] = m
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// parseNumber converts a cell to a float, tolerating thousands separators.
// Unparseable cells count as zero.
func parseNumber(cell string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// isEmptyRow reports whether every cell in the row is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
