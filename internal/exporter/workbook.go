package exporter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mcmerge/internal/dataprocessing"
	"mcmerge/pkg/contracts/domain"
)

// SheetName is the single sheet of the consolidated workbook.
const SheetName = "Master Allocation"

// Label rows above the column headers, in output order. An array so that
// len(labels) stays a constant expression for the row layout below.
var labels = [...]string{
	"Brief Description",
	"Total (inc Overs)",
	"Total Allocations",
	"Overs",
}

// Layout constants for the consolidated sheet, all 1-based.
const (
	bannerRow     = 1
	firstLabelRow = 2
	// headerRow is the column header row: one banner row plus the label rows.
	headerRow = firstLabelRow + len(labels)
	// columnWidth matches the source system's export formatting.
	columnWidth = 18.0
)

// itemFill is the header highlight colour used by Media Centre exports.
const itemFill = "F4B084"

// BuildWorkbook serializes the consolidated table into a styled .xlsx
// workbook: a consolidation banner, the per-item label rows, the column
// header, then one row per store.
func BuildWorkbook(ct *domain.ConsolidatedTable, consolidatedOn time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, err
	}

	if err := writeBanner(f, consolidatedOn, styles); err != nil {
		return nil, err
	}
	if err := writeLabelRows(f, ct, styles); err != nil {
		return nil, err
	}
	if err := writeHeader(f, ct, styles); err != nil {
		return nil, err
	}
	if err := writeDataRows(f, ct, styles); err != nil {
		return nil, err
	}
	if err := applyColumnLayout(f, ct); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// styleSet holds the style IDs used across the sheet.
type styleSet struct {
	banner   int
	label    int
	header   int
	data     int
	itemData int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	thin := []excelize.Border{
		{Type: "top", Color: "000000", Style: 1},
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	orange := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{itemFill}}

	banner, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create banner style: %w", err)
	}
	label, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      orange,
		Border:    thin,
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create label style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   orange,
		Border: thin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	data, err := f.NewStyle(&excelize.Style{Border: thin})
	if err != nil {
		return nil, fmt.Errorf("failed to create data style: %w", err)
	}
	itemData, err := f.NewStyle(&excelize.Style{
		Border:    thin,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item style: %w", err)
	}

	return &styleSet{banner: banner, label: label, header: header, data: data, itemData: itemData}, nil
}

func writeBanner(f *excelize.File, consolidatedOn time.Time, styles *styleSet) error {
	text := consolidatedOn.Format("Consolidated on 02/01/2006 15:04")
	if err := f.SetCellValue(SheetName, "A1", text); err != nil {
		return fmt.Errorf("failed to write banner: %w", err)
	}
	return f.SetCellStyle(SheetName, "A1", "A1", styles.banner)
}

// writeLabelRows fills the four label rows: the label itself in the column
// before the first item, then one value per item column. Cells are anchored
// to each item's actual position in the schema, so they stay aligned with
// the header even when an export lacks some of the identity columns.
func writeLabelRows(f *excelize.File, ct *domain.ConsolidatedTable, styles *styleSet) error {
	itemPositions := itemColumnPositions(ct)
	if len(itemPositions) == 0 {
		return nil
	}
	labelCol := itemPositions[0].col - 1

	for off, label := range labels {
		row := firstLabelRow + off

		if labelCol >= 1 {
			cell, err := excelize.CoordinatesToCellName(labelCol, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, label); err != nil {
				return fmt.Errorf("failed to write label %q: %w", label, err)
			}
			if err := f.SetCellStyle(SheetName, cell, cell, styles.label); err != nil {
				return err
			}
		}

		for _, pos := range itemPositions {
			cell, err := excelize.CoordinatesToCellName(pos.col, row)
			if err != nil {
				return err
			}

			meta := ct.Items[pos.name]
			total := dataprocessing.ItemTotal(ct, pos.name)

			var value interface{}
			switch label {
			case "Brief Description":
				value = meta.BriefDescription
			case "Total (inc Overs)":
				value = total + meta.Overs
			case "Total Allocations":
				value = total
			case "Overs":
				value = meta.Overs
			}

			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write label value: %w", err)
			}
			if err := f.SetCellStyle(SheetName, cell, cell, styles.itemData); err != nil {
				return err
			}
		}
	}
	return nil
}

// itemPosition is an item column with its 1-based sheet column.
type itemPosition struct {
	name string
	col  int
}

func itemColumnPositions(ct *domain.ConsolidatedTable) []itemPosition {
	var positions []itemPosition
	for i, name := range ct.Columns {
		if !domain.IsKeyColumn(name) {
			positions = append(positions, itemPosition{name: name, col: i + 1})
		}
	}
	return positions
}

func writeHeader(f *excelize.File, ct *domain.ConsolidatedTable, styles *styleSet) error {
	for i, name := range ct.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}

	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, err := excelize.CoordinatesToCellName(len(ct.Columns), headerRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, first, last, styles.header)
}

func writeDataRows(f *excelize.File, ct *domain.ConsolidatedTable, styles *styleSet) error {
	for r, row := range ct.Rows {
		excelRow := headerRow + 1 + r
		for c, name := range ct.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, excelRow)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, cellValue(row[name])); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r, err)
			}

			style := styles.data
			if !domain.IsKeyColumn(name) {
				style = styles.itemData
			}
			if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyColumnLayout sets uniform column widths and hides the address columns
// C through J, matching the source system's consolidated export. The hide
// only applies when those positions really hold identity columns, so item
// columns never disappear from a thin export.
func applyColumnLayout(f *excelize.File, ct *domain.ConsolidatedTable) error {
	columnCount := len(ct.Columns)
	if columnCount == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(columnCount)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", last, columnWidth); err != nil {
		return fmt.Errorf("failed to set column widths: %w", err)
	}
	if columnCount >= 10 && keyColumnsThrough(ct, 10) {
		if err := f.SetColVisible(SheetName, "C:J", false); err != nil {
			return fmt.Errorf("failed to hide address columns: %w", err)
		}
	}
	return nil
}

// keyColumnsThrough reports whether the first n schema columns are all
// identity columns.
func keyColumnsThrough(ct *domain.ConsolidatedTable, n int) bool {
	for i := 0; i < n && i < len(ct.Columns); i++ {
		if !domain.IsKeyColumn(ct.Columns[i]) {
			return false
		}
	}
	return true
}

// cellValue writes numerals as numbers so spreadsheet formulas keep working
// on the consolidated output.
func cellValue(s string) interface{} {
	if s == "" {
		return ""
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return v
	}
	return s
}
