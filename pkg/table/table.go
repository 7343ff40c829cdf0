// Package table holds the header/cell grid that flattened API payloads are
// reshaped into before rendering or export.
package table

import "fmt"

// Table is a rectangular grid of string cells with named columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// New returns an empty table with the given headers.
func New(headers ...string) *Table {
	return &Table{Headers: headers}
}

// Append adds a row. Short rows are padded with empty cells.
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// AddColumn appends a column whose cell for each row is produced by fn.
// Adding a column that already exists is an error.
func (t *Table) AddColumn(name string, fn func(row []string) string) error {
	if t.Column(name) >= 0 {
		return fmt.Errorf("column %q already exists", name)
	}
	t.Headers = append(t.Headers, name)
	for i, row := range t.Rows {
		t.Rows[i] = append(row, fn(row))
	}
	return nil
}

// Select returns a new table holding only the named columns, in the given
// order. Unknown names are an error.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.Column(name)
		if idx[i] < 0 {
			return nil, fmt.Errorf("no column named %q", name)
		}
	}

	out := New(names...)
	for _, row := range t.Rows {
		cells := make([]string, len(idx))
		for i, j := range idx {
			cells[i] = row[j]
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}
