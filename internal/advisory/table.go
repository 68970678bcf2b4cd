// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package advisory

type tableKey struct {
	region string
	season Season
}

// Table maps (region code, season) to an ordered crop list. It is immutable
// after construction and safe for concurrent reads.
type Table struct {
	entries map[tableKey][]string
}

// TableBuilder accumulates entries before freezing them into a [Table].
type TableBuilder struct {
	entries map[tableKey][]string
}

// NewTableBuilder starts an empty table.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{entries: map[tableKey][]string{}}
}

// Set stores a copy of crops for the pair, replacing any earlier list.
func (builder *TableBuilder) Set(regionCode string, season Season, crops []string) *TableBuilder {
	builder.entries[tableKey{regionCode, season}] = append([]string(nil), crops...)
	return builder
}

// Build freezes the table. The builder must not be reused.
func (builder *TableBuilder) Build() *Table {
	table := &Table{entries: builder.entries}
	builder.entries = nil
	return table
}

// Lookup returns the crops for the pair. A missing pair yields ok=false,
// never an empty list.
func (table *Table) Lookup(regionCode string, season Season) ([]string, bool) {
	crops, ok := table.entries[tableKey{regionCode, season}]
	if !ok {
		return nil, false
	}
	return append([]string(nil), crops...), true
}

// Len returns the number of (region, season) pairs.
func (table *Table) Len() int {
	return len(table.entries)
}
