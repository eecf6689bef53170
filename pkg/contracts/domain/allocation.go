package domain

import "time"

// StoreNumberColumn is the key column every allocation export must carry.
// Store rows are identified and consolidated by this column.
const StoreNumberColumn = "Store Number"

// KeyColumns are the store identity columns shared by all Media Centre
// allocation exports, in the order they appear in the source files. Every
// column after these describes one allocation item.
var KeyColumns = []string{
	"Store Number",
	"Store Name",
	"Address Line 1",
	"Address Line 2",
	"City or Town",
	"County",
	"Country",
	"Post Code",
	"Region / Area",
	"Location Type",
	"Trading Format",
}

// IsKeyColumn reports whether name is one of the store identity columns.
func IsKeyColumn(name string) bool {
	for _, k := range KeyColumns {
		if k == name {
			return true
		}
	}
	return false
}

// Row is one record from an allocation export. Cell values are kept as text;
// numeric interpretation happens only where a merge rule requires it.
type Row map[string]string

// ItemMeta carries the per-item header metadata found above the column
// headers in an allocation export.
type ItemMeta struct {
	BriefDescription string  `json:"brief_description"`
	Overs            float64 `json:"overs"`
}

// Table is one parsed allocation export: an ordered column schema, the data
// rows in file order, and the item metadata keyed by item column name.
type Table struct {
	SourceFile string              `json:"source_file"`
	Columns    []string            `json:"columns"`
	Rows       []Row               `json:"rows"`
	Items      map[string]ItemMeta `json:"items,omitempty"`
}

// ItemColumns returns the columns of t that are not store identity columns,
// preserving schema order.
func (t *Table) ItemColumns() []string {
	var items []string
	for _, c := range t.Columns {
		if !IsKeyColumn(c) {
			items = append(items, c)
		}
	}
	return items
}

// ConsolidatedTable is the merged result spanning all uploaded exports, with
// a single unified column schema.
type ConsolidatedTable struct {
	Columns []string            `json:"columns"`
	Rows    []Row               `json:"rows"`
	Items   map[string]ItemMeta `json:"items,omitempty"`
}

// ItemColumns returns the non-key columns of the consolidated schema.
func (c *ConsolidatedTable) ItemColumns() []string {
	var items []string
	for _, col := range c.Columns {
		if !IsKeyColumn(col) {
			items = append(items, col)
		}
	}
	return items
}

// MergeSummary describes one completed merge for the UI and logs.
type MergeSummary struct {
	Files          int       `json:"files"`
	Stores         int       `json:"stores"`
	ItemLines      int       `json:"item_lines"`
	DuplicateItems []string  `json:"duplicate_items,omitempty"`
	ConsolidatedOn time.Time `json:"consolidated_on"`
}
