package dataprocessing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcmerge/internal/shared/testutil"
	"mcmerge/pkg/contracts/domain"
)

func TestParseAllocation(t *testing.T) {
	data := testutil.AllocationExport{
		Stores: []testutil.AllocationStore{
			{Number: "101", Name: "Testville North"},
			{Number: "102", Name: "Testville South"},
			{Number: "103", Name: "Testville East"},
		},
		Items: []testutil.AllocationItem{
			{Reference: "POS-001", Brief: "Window poster", Overs: 5, Quantities: []string{"2", "3", "1"}},
			{Reference: "POS-002", Brief: "Shelf wobbler", Quantities: []string{"", "4", ""}},
		},
	}.Bytes(t)

	table, err := ParseAllocation(bytes.NewReader(data), "week1.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "week1.xlsx", table.SourceFile)
	assert.Len(t, table.Rows, 3)

	// Key columns first, then item columns in file order.
	require.GreaterOrEqual(t, len(table.Columns), len(domain.KeyColumns))
	assert.Equal(t, domain.KeyColumns, table.Columns[:len(domain.KeyColumns)])
	assert.Equal(t, []string{"POS-001", "POS-002"}, table.ItemColumns())

	assert.Equal(t, []string{"101", "102", "103"}, testutil.RowValues(table.Rows, domain.StoreNumberColumn))
	assert.Equal(t, []string{"2", "3", "1"}, testutil.RowValues(table.Rows, "POS-001"))
	assert.Equal(t, []string{"", "4", ""}, testutil.RowValues(table.Rows, "POS-002"))

	require.Contains(t, table.Items, "POS-001")
	assert.Equal(t, "Window poster", table.Items["POS-001"].BriefDescription)
	assert.Equal(t, 5.0, table.Items["POS-001"].Overs)
	assert.Equal(t, 0.0, table.Items["POS-002"].Overs)
}

func TestParseAllocation_MalformedFile(t *testing.T) {
	_, err := ParseAllocation(strings.NewReader("this is not a workbook"), "junk.xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedFile)
}

func TestParseAllocation_MissingStoreColumn(t *testing.T) {
	// A valid workbook whose header has no Store Number column.
	f := newWorkbookWithHeader(t, []string{"Product", "Quantity"})

	_, err := ParseAllocation(bytes.NewReader(f), "other.xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingStoreColumn)
}

func TestParseAllocation_SkipsBlankRows(t *testing.T) {
	data := testutil.AllocationExport{
		Stores: []testutil.AllocationStore{
			{Number: "201", Name: "Solo"},
		},
		Items: []testutil.AllocationItem{
			{Reference: "POS-009", Brief: "Totem", Quantities: []string{"7"}},
		},
	}.Bytes(t)

	table, err := ParseAllocation(bytes.NewReader(data), "solo.xlsx")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "201", table.Rows[0][domain.StoreNumberColumn])
	assert.Equal(t, "7", table.Rows[0]["POS-009"])
}

func TestParseAllocation_StrayHeaderCase(t *testing.T) {
	// Some exports carry "store number" with stray casing and whitespace; the
	// parser renames the column to its canonical form.
	f := newWorkbookWithHeader(t, []string{" STORE NUMBER ", "Store Name", "POS-100"})

	table, err := ParseAllocation(bytes.NewReader(f), "odd.xlsx")
	require.NoError(t, err)
	assert.Equal(t, domain.StoreNumberColumn, table.Columns[0])
}

// newWorkbookWithHeader builds a minimal workbook with the given header cells
// on row 7 and no data rows.
func newWorkbookWithHeader(t *testing.T, header []string) []byte {
	t.Helper()
	return testutil.CustomHeaderWorkbook(t, header)
}
