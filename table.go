package iiasa

// Value stores the contents of a single cell of a Table.
type Value any

// Table is a tabular result: named columns and rows of values in column order.
type Table struct {
	// Columns are the column names.
	Columns []string
	// Rows are the records, each holding one value per column.
	Rows [][]Value
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the values of the named column, or nil if there is no such column.
func (t *Table) Column(name string) []Value {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]Value, 0, len(t.Rows))
	for _, r := range t.Rows {
		values = append(values, r[idx])
	}
	return values
}
