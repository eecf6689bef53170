package testutil

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"mcmerge/pkg/contracts/domain"
)

// AllocationItem describes one item column in a fixture export.
type AllocationItem struct {
	Reference string
	Brief     string
	Overs     float64
	// Quantities per store row, in row order. Missing entries are blank.
	Quantities []string
}

// AllocationStore describes one store row in a fixture export.
type AllocationStore struct {
	Number string
	Name   string
}

// AllocationExport builds .xlsx bytes shaped like a real Media Centre
// allocation export: item briefs on row 2, overs on row 5, column headers on
// row 7, data from row 8.
type AllocationExport struct {
	Stores []AllocationStore
	Items  []AllocationItem
}

// headerRow is the 1-based spreadsheet row carrying the column headers.
const headerRow = 7

// Bytes renders the fixture workbook.
func (e AllocationExport) Bytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	// Column headers: the store identity columns, then one column per item.
	for i, name := range domain.KeyColumns {
		setCell(t, f, sheet, i+1, headerRow, name)
	}
	itemStart := len(domain.KeyColumns) + 1
	for i, item := range e.Items {
		col := itemStart + i
		setCell(t, f, sheet, col, headerRow, item.Reference)
		setCell(t, f, sheet, col, 2, item.Brief)
		if item.Overs != 0 {
			setCell(t, f, sheet, col, 5, item.Overs)
		}
	}

	// Store rows.
	for r, store := range e.Stores {
		row := headerRow + 1 + r
		setCell(t, f, sheet, 1, row, store.Number)
		setCell(t, f, sheet, 2, row, store.Name)
		setCell(t, f, sheet, 3, row, "1 High Street")
		setCell(t, f, sheet, 5, row, "Testville")
		setCell(t, f, sheet, 7, row, "UK")
		for i, item := range e.Items {
			if r < len(item.Quantities) && item.Quantities[r] != "" {
				setCell(t, f, sheet, itemStart+i, row, item.Quantities[r])
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to write fixture workbook: %v", err)
	}
	return buf.Bytes()
}

// SimpleExport is a convenience fixture: two stores, one item column.
func SimpleExport(t *testing.T, itemRef string) []byte {
	t.Helper()
	return AllocationExport{
		Stores: []AllocationStore{
			{Number: "101", Name: "Testville North"},
			{Number: "102", Name: "Testville South"},
		},
		Items: []AllocationItem{
			{Reference: itemRef, Brief: "Window poster", Overs: 5, Quantities: []string{"2", "3"}},
		},
	}.Bytes(t)
}

// CustomHeaderWorkbook builds a workbook with arbitrary header cells on the
// usual header row and no data rows, for parser edge-case tests.
func CustomHeaderWorkbook(t *testing.T, header []string) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, name := range header {
		setCell(t, f, sheet, i+1, headerRow, name)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to write fixture workbook: %v", err)
	}
	return buf.Bytes()
}

// setCell writes one cell by numeric coordinates.
func setCell(t *testing.T, f *excelize.File, sheet string, col, row int, value interface{}) {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		t.Fatalf("bad cell coordinates (%d,%d): %v", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		t.Fatalf("failed to set cell %s: %v", cell, err)
	}
}

// TableFixture builds an in-memory domain.Table without going through xlsx,
// for merge tests that don't care about parsing.
func TableFixture(source string, columns []string, rows ...[]string) *domain.Table {
	table := &domain.Table{SourceFile: source, Columns: columns}
	for _, cells := range rows {
		rec := make(domain.Row, len(columns))
		for i, c := range columns {
			if i < len(cells) {
				rec[c] = cells[i]
			} else {
				rec[c] = ""
			}
		}
		table.Rows = append(table.Rows, rec)
	}
	return table
}

// RowValues extracts the named column from every row, preserving order.
func RowValues(rows []domain.Row, column string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[column]
	}
	return out
}
