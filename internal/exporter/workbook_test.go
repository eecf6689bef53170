package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mcmerge/internal/dataprocessing"
	"mcmerge/pkg/contracts/domain"
)

// consolidatedFixture builds a small consolidated table: two stores, two
// item columns with metadata.
func consolidatedFixture() *domain.ConsolidatedTable {
	columns := append(append([]string{}, domain.KeyColumns...), "POS-001", "POS-002")
	rowFor := func(store, name, pos1, pos2 string) domain.Row {
		rec := make(domain.Row, len(columns))
		for _, c := range columns {
			rec[c] = ""
		}
		rec[domain.StoreNumberColumn] = store
		rec["Store Name"] = name
		rec["POS-001"] = pos1
		rec["POS-002"] = pos2
		return rec
	}

	return &domain.ConsolidatedTable{
		Columns: columns,
		Rows: []domain.Row{
			rowFor("101", "Testville North", "2", "1"),
			rowFor("102", "Testville South", "3", "4"),
		},
		Items: map[string]domain.ItemMeta{
			"POS-001": {BriefDescription: "Window poster", Overs: 5},
			"POS-002": {BriefDescription: "Shelf wobbler"},
		},
	}
}

func TestBuildWorkbook(t *testing.T) {
	ct := consolidatedFixture()
	consolidatedOn := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	data, err := BuildWorkbook(ct, consolidatedOn)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())

	banner, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Consolidated on 30/08/2026 14:05", banner)

	// Label rows sit in the last key column (K), item values from column L.
	for i, want := range []string{"Brief Description", "Total (inc Overs)", "Total Allocations", "Overs"} {
		cell, _ := excelize.CoordinatesToCellName(len(domain.KeyColumns), firstLabelRow+i)
		got, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// POS-001: total 5, overs 5, total inc overs 10.
	brief, _ := f.GetCellValue(SheetName, "L2")
	assert.Equal(t, "Window poster", brief)
	incOvers, _ := f.GetCellValue(SheetName, "L3")
	assert.Equal(t, "10", incOvers)
	total, _ := f.GetCellValue(SheetName, "L4")
	assert.Equal(t, "5", total)
	overs, _ := f.GetCellValue(SheetName, "L5")
	assert.Equal(t, "5", overs)

	// Header row carries the unified schema.
	header, err := f.GetCellValue(SheetName, "A6")
	require.NoError(t, err)
	assert.Equal(t, domain.StoreNumberColumn, header)

	// Data starts on the row after the header.
	store, _ := f.GetCellValue(SheetName, "A7")
	assert.Equal(t, "101", store)
	qty, _ := f.GetCellValue(SheetName, "L8")
	assert.Equal(t, "3", qty)

	// Address columns are hidden.
	visible, err := f.GetColVisible(SheetName, "C")
	require.NoError(t, err)
	assert.False(t, visible)
	visible, err = f.GetColVisible(SheetName, "B")
	require.NoError(t, err)
	assert.True(t, visible)

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.InDelta(t, columnWidth, width, 0.5)
}

// TestBuildWorkbook_PartialKeyColumns covers exports that carry only some of
// the identity columns: the label rows must follow the items' real positions
// instead of assuming the full identity block.
func TestBuildWorkbook_PartialKeyColumns(t *testing.T) {
	ct := &domain.ConsolidatedTable{
		Columns: []string{domain.StoreNumberColumn, "POS-001"},
		Rows: []domain.Row{
			{domain.StoreNumberColumn: "101", "POS-001": "2"},
		},
		Items: map[string]domain.ItemMeta{
			"POS-001": {BriefDescription: "Window poster", Overs: 5},
		},
	}

	data, err := BuildWorkbook(ct, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	// The item sits in column B, so its metadata lands in B2-B5 with the
	// label text in column A.
	brief, err := f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Window poster", brief)
	label, err := f.GetCellValue(SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Brief Description", label)
	overs, err := f.GetCellValue(SheetName, "B5")
	require.NoError(t, err)
	assert.Equal(t, "5", overs)

	// Nothing strays to the old fixed column.
	stray, err := f.GetCellValue(SheetName, "L2")
	require.NoError(t, err)
	assert.Empty(t, stray)

	// Both columns stay visible; the address hide only applies to the full
	// identity block.
	visible, err := f.GetColVisible(SheetName, "B")
	require.NoError(t, err)
	assert.True(t, visible)
}

// TestBuildWorkbook_RoundTrip re-parses the serialized workbook and checks
// the row count and column set survive.
func TestBuildWorkbook_RoundTrip(t *testing.T) {
	ct := consolidatedFixture()

	data, err := BuildWorkbook(ct, time.Now())
	require.NoError(t, err)

	table, err := dataprocessing.ParseAllocation(bytes.NewReader(data), "roundtrip.xlsx")
	require.NoError(t, err)

	assert.Equal(t, ct.Columns, table.Columns)
	assert.Len(t, table.Rows, len(ct.Rows))
	assert.Equal(t, "101", table.Rows[0][domain.StoreNumberColumn])
	assert.Equal(t, "4", table.Rows[1]["POS-002"])
}

func TestBuildWorkbook_NoItems(t *testing.T) {
	ct := &domain.ConsolidatedTable{
		Columns: append([]string{}, domain.KeyColumns...),
		Rows: []domain.Row{
			{domain.StoreNumberColumn: "101"},
		},
	}

	data, err := BuildWorkbook(ct, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	store, err := f.GetCellValue(SheetName, "A7")
	require.NoError(t, err)
	assert.Equal(t, "101", store)
}
