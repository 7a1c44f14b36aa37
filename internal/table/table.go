// Package table holds column-ordered tabular results read with SELECT * and the
// relational helpers the dashboard needs on top of them (filter, left-join, counts).
//
// Tables are immutable once built: every operation returns a new table and shares row
// storage with its input.
package table

import (
	"fmt"
	"strconv"
	"time"
)

// Layouts accepted when a timestamp column arrives as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// Table is an ordered set of named columns and rows of cell values.
// Cells are nil, int64, float64, bool, string or time.Time.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return &Table{columns: cols, index: idx}
}

// Append adds a row. The number of values must match the number of columns.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("table: row has %d values, want %d", len(values), len(t.columns))
	}
	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// MustAppend is Append for literal fixtures; it panics on a width mismatch.
func (t *Table) MustAppend(values ...any) *Table {
	if err := t.Append(values...); err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows. A nil table has no rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

func (t *Table) Empty() bool { return t.Len() == 0 }

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[column]
	return ok
}

// Row returns a view over row i.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Each calls fn for every row in order.
func (t *Table) Each(fn func(Row)) {
	for i := 0; i < t.Len(); i++ {
		fn(Row{t: t, i: i})
	}
}

// Filter returns the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := t.derive()
	for i, r := range t.rows {
		if keep(Row{t: t, i: i}) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Head returns at most the first n rows.
func (t *Table) Head(n int) *Table {
	out := t.derive()
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n > 0 {
		out.rows = append(out.rows, t.rows[:n]...)
	}
	return out
}

// derive makes an empty table with the same columns.
func (t *Table) derive() *Table {
	return &Table{columns: t.columns, index: t.index}
}

// Row is a read-only view over one table row.
type Row struct {
	t *Table
	i int
}

func (r Row) Index() int { return r.i }

// Get returns the cell value. ok is false when the column is missing or the value is null.
func (r Row) Get(column string) (any, bool) {
	ci, found := r.t.index[column]
	if !found {
		return nil, false
	}
	v := r.t.rows[r.i][ci]
	return v, v != nil
}

// String returns the cell formatted as text.
func (r Row) String(column string) (string, bool) {
	v, ok := r.Get(column)
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// Time returns the cell as a timestamp, parsing text cells when needed.
func (r Row) Time(column string) (time.Time, bool) {
	v, ok := r.Get(column)
	if !ok {
		return time.Time{}, false
	}
	return AsTime(v)
}

// Values returns the row cells in column order.
func (r Row) Values() []any {
	out := make([]any, len(r.t.rows[r.i]))
	copy(out, r.t.rows[r.i])
	return out
}

// AsTime converts a cell value to time.Time when possible.
func AsTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, x); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// FormatValue renders a cell as text. Null renders as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}
