package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mcmerge/internal/shared/testutil"
)

func newTestService() *MergeService {
	svc := NewMergeService(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return svc
}

func upload(name string, data []byte) UploadedFile {
	return UploadedFile{Name: name, Data: bytes.NewReader(data)}
}

func TestMerge_EmptyUpload(t *testing.T) {
	svc := newTestService()

	result, err := svc.Merge(context.Background(), nil, FormatXLSX)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoFilesUploaded)
}

func TestMerge_UnsupportedFormat(t *testing.T) {
	svc := newTestService()
	files := []UploadedFile{upload("a.xlsx", testutil.SimpleExport(t, "ITEM001"))}

	_, err := svc.Merge(context.Background(), files, OutputFormat("pdf"))

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestMerge_SingleFile(t *testing.T) {
	svc := newTestService()
	files := []UploadedFile{upload("north.xlsx", testutil.SimpleExport(t, "ITEM001"))}

	result, err := svc.Merge(context.Background(), files, FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Files)
	assert.Equal(t, 2, result.Summary.Stores)
	assert.Equal(t, 1, result.Summary.ItemLines)
	assert.Empty(t, result.Summary.DuplicateItems)
	assert.Equal(t, "Consolidated_Allocation_20260314_0930.xlsx", result.Filename)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		result.ContentType)

	// The artifact must be a readable workbook.
	f, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
}

func TestMerge_TwoFilesDistinctItems(t *testing.T) {
	svc := newTestService()

	first := testutil.AllocationExport{
		Stores: []testutil.AllocationStore{
			{Number: "101", Name: "Testville North"},
			{Number: "102", Name: "Testville South"},
		},
		Items: []testutil.AllocationItem{
			{Reference: "ITEM001", Brief: "Window poster", Overs: 5, Quantities: []string{"2", "3"}},
		},
	}.Bytes(t)
	second := testutil.AllocationExport{
		Stores: []testutil.AllocationStore{
			{Number: "102", Name: "Testville South"},
			{Number: "103", Name: "Testville East"},
		},
		Items: []testutil.AllocationItem{
			{Reference: "ITEM002", Brief: "Shelf strip", Overs: 2, Quantities: []string{"4", "6"}},
		},
	}.Bytes(t)

	result, err := svc.Merge(context.Background(), []UploadedFile{
		upload("north.xlsx", first),
		upload("east.xlsx", second),
	}, FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Files)
	assert.Equal(t, 3, result.Summary.Stores)
	assert.Equal(t, 2, result.Summary.ItemLines)
	assert.Empty(t, result.Summary.DuplicateItems)
}

func TestMerge_DuplicateItemFirstFileWins(t *testing.T) {
	svc := newTestService()

	first := testutil.AllocationExport{
		Stores: []testutil.AllocationStore{{Number: "101", Name: "Testville North"}},
		Items: []testutil.AllocationItem{
			{Reference: "ITEM001", Brief: "Window poster", Overs: 5, Quantities: []string{"2"}},
		},
	}.Bytes(t)
	second := testutil.AllocationExport{
		Stores: []testutil.AllocationStore{{Number: "101", Name: "Testville North"}},
		Items: []testutil.AllocationItem{
			{Reference: "ITEM001", Brief: "Reissued poster", Overs: 9, Quantities: []string{"7"}},
			{Reference: "ITEM002", Brief: "Shelf strip", Overs: 2, Quantities: []string{"4"}},
		},
	}.Bytes(t)

	result, err := svc.Merge(context.Background(), []UploadedFile{
		upload("week1.xlsx", first),
		upload("week2.xlsx", second),
	}, FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, []string{"ITEM001"}, result.Summary.DuplicateItems)
	assert.Equal(t, 2, result.Summary.ItemLines)

	// The consolidated workbook keeps the first file's allocation for the
	// duplicated reference: row 7 is store 101, ITEM001 sits in column L.
	f, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetList()[0]
	qty, err := f.GetCellValue(sheet, "L7")
	require.NoError(t, err)
	assert.Equal(t, "2", qty)
}

func TestMerge_MalformedFileNamed(t *testing.T) {
	svc := newTestService()
	files := []UploadedFile{
		upload("good.xlsx", testutil.SimpleExport(t, "ITEM001")),
		upload("broken.xlsx", []byte("not a workbook")),
	}

	_, err := svc.Merge(context.Background(), files, FormatXLSX)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestMerge_CSVOutput(t *testing.T) {
	svc := newTestService()
	files := []UploadedFile{upload("north.xlsx", testutil.SimpleExport(t, "ITEM001"))}

	result, err := svc.Merge(context.Background(), files, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "Consolidated_Allocation_20260314_0930.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)

	body := strings.TrimPrefix(string(result.Content), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3) // header + two stores
	assert.True(t, strings.HasPrefix(lines[0], "Store Number,"))
	assert.Contains(t, lines[0], "ITEM001")
}
