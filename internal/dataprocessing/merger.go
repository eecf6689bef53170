package dataprocessing

import (
	"errors"
	"sort"
	"strconv"

	"mcmerge/pkg/contracts/domain"
)

// ErrNoTables means a merge was requested with no parsed input tables.
var ErrNoTables = errors.New("no allocation tables to merge")

// UnifiedColumns computes the merged column schema: the union of all input
// columns in first-seen order. The result is deterministic for a given input
// order.
func UnifiedColumns(tables []*domain.Table) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}
	return columns
}

// Concat concatenates the tables into one consolidated table aligned to the
// unified schema. Rows keep input file order, then in-file order; cells for
// columns a source file lacks are blank. No row is dropped or deduplicated.
func Concat(tables []*domain.Table) (*domain.ConsolidatedTable, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	columns := UnifiedColumns(tables)

	out := &domain.ConsolidatedTable{
		Columns: columns,
		Items:   make(map[string]domain.ItemMeta),
	}

	for _, t := range tables {
		for _, row := range t.Rows {
			rec := make(domain.Row, len(columns))
			for _, c := range columns {
				rec[c] = row[c]
			}
			out.Rows = append(out.Rows, rec)
		}
		for name, meta := range t.Items {
			if _, exists := out.Items[name]; !exists {
				out.Items[name] = meta
			}
		}
	}

	if len(out.Items) == 0 {
		out.Items = nil
	}

	return out, nil
}

// ConsolidateByStore applies the documented merge rule for allocation
// exports: rows are grouped by store number, first-seen values win for the
// store identity columns, and item columns are summed numerically. The result
// is sorted by store number ascending. Rows without a usable store number are
// dropped, mirroring the source system's exports where such rows are footer
// noise.
func ConsolidateByStore(ct *domain.ConsolidatedTable) *domain.ConsolidatedTable {
	type group struct {
		store float64
		keys  domain.Row
		sums  map[string]float64
	}

	itemCols := ct.ItemColumns()

	groups := make(map[float64]*group)
	var order []float64

	for _, row := range ct.Rows {
		storeCell := row[domain.StoreNumberColumn]
		store, err := strconv.ParseFloat(storeCell, 64)
		if err != nil {
			continue
		}

		g, ok := groups[store]
		if !ok {
			g = &group{
				store: store,
				keys:  make(domain.Row),
				sums:  make(map[string]float64),
			}
			groups[store] = g
			order = append(order, store)
		}

		for _, c := range ct.Columns {
			if !domain.IsKeyColumn(c) {
				continue
			}
			if g.keys[c] == "" && row[c] != "" {
				g.keys[c] = row[c]
			}
		}
		for _, c := range itemCols {
			g.sums[c] += parseNumber(row[c])
		}
	}

	sort.Float64s(order)

	out := &domain.ConsolidatedTable{
		Columns: ct.Columns,
		Items:   ct.Items,
	}
	for _, store := range order {
		g := groups[store]
		rec := make(domain.Row, len(ct.Columns))
		for _, c := range ct.Columns {
			if domain.IsKeyColumn(c) {
				rec[c] = g.keys[c]
			} else {
				rec[c] = formatNumber(g.sums[c])
			}
		}
		rec[domain.StoreNumberColumn] = formatNumber(store)
		out.Rows = append(out.Rows, rec)
	}

	return out
}

// ItemTotal sums an item column across the consolidated rows.
func ItemTotal(ct *domain.ConsolidatedTable, column string) float64 {
	var total float64
	for _, row := range ct.Rows {
		total += parseNumber(row[column])
	}
	return total
}

// formatNumber renders a float without trailing zeros, so whole allocation
// counts stay integral in the output.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
