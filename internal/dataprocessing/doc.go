// Package dataprocessing parses Media Centre allocation exports and merges
// them into a single consolidated table.
//
// An allocation export is an .xlsx workbook with a fixed preamble: the column
// header sits on spreadsheet row 7, with the item brief descriptions five rows
// above it and the overs counts two rows above it. The first eleven columns
// identify the store; every column after them is one allocation item.
//
// ParseAllocation turns one export into a domain.Table. Concat performs the
// schema-union, order-preserving concatenation of several tables, and
// ConsolidateByStore applies the allocation merge rule (group by store number,
// sum item columns).
package dataprocessing
