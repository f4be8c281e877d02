// Package table holds the in-memory tabular structure shared by the cleaning
// and enrichment stages.
//
// Cells are dynamically typed. Every value stored in a Table is normalized to
// one of nil (null), string, int64, float64 or bool.
package table

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type Table struct {
	columns  []string
	index    map[string]int
	declared map[string]string
	rows     [][]any
}

// New returns an empty table with the given columns. Column names must be unique.
func New(columns ...string) *Table {
	t := &Table{
		columns:  append([]string(nil), columns...),
		index:    make(map[string]int, len(columns)),
		declared: map[string]string{},
	}
	for i, c := range columns {
		t.index[c] = i
	}
	return t
}

// FromRows builds a table and appends rows, normalizing each value.
func FromRows(columns []string, rows [][]any) (*Table, error) {
	t := New(columns...)
	for i, r := range rows {
		if err := t.Append(r...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return t, nil
}

func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }
func (t *Table) Len() int          { return len(t.rows) }
func (t *Table) Width() int        { return len(t.columns) }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// SetDeclaredType records the storage type of a column (e.g. the SQL decltype).
func (t *Table) SetDeclaredType(column, typ string) {
	if t.HasColumn(column) && typ != "" {
		t.declared[column] = typ
	}
}

func (t *Table) DeclaredType(column string) string { return t.declared[column] }

// Append adds one row. The number of values must match the number of columns.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("table: got %d values for %d columns", len(values), len(t.columns))
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = Normalize(v)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns the i-th row. Callers must not modify it.
func (t *Table) Row(i int) []any { return t.rows[i] }

// Value returns the cell at (row, column) or nil when the column does not exist.
func (t *Table) Value(row int, column string) any {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	return t.rows[row][c]
}

func (t *Table) Set(row int, column string, v any) {
	if c, ok := t.index[column]; ok {
		t.rows[row][c] = Normalize(v)
	}
}

func (t *Table) ColumnValues(column string) []any {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[c]
	}
	return out
}

func (t *Table) Clone() *Table {
	out := New(t.columns...)
	for k, v := range t.declared {
		out.declared[k] = v
	}
	out.rows = make([][]any, len(t.rows))
	for i, r := range t.rows {
		out.rows[i] = append([]any(nil), r...)
	}
	return out
}

// DropColumns removes the named columns, ignoring names that are not present.
// It returns the names actually removed.
func (t *Table) DropColumns(names ...string) []string {
	drop := map[string]bool{}
	var dropped []string
	for _, n := range names {
		if t.HasColumn(n) && !drop[n] {
			drop[n] = true
			dropped = append(dropped, n)
		}
	}
	if len(dropped) == 0 {
		return nil
	}

	var keep []int
	var cols []string
	for i, c := range t.columns {
		if !drop[c] {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}
	for i, r := range t.rows {
		nr := make([]any, len(keep))
		for j, k := range keep {
			nr[j] = r[k]
		}
		t.rows[i] = nr
	}
	t.columns = cols
	t.index = make(map[string]int, len(cols))
	for i, c := range cols {
		t.index[c] = i
	}
	for n := range drop {
		delete(t.declared, n)
	}
	return dropped
}

// Normalize maps driver and decoder values onto the cell value set.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return float64(x)
		}
		return int64(x)
	case float32:
		return normalizeFloat(float64(x))
	case float64:
		return normalizeFloat(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// Format renders a cell the way reports print it. Null renders as "".
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// cellKey is a type-aware identity used for duplicate detection. Integer and
// float cells holding the same number compare equal.
func cellKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00"
	case string:
		return "s" + x
	case int64:
		return "n" + strconv.FormatFloat(float64(x), 'g', -1, 64)
	case float64:
		return "n" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return "b" + strconv.FormatBool(x)
	default:
		return "?" + fmt.Sprint(x)
	}
}

func rowKey(r []any) string {
	b := make([]byte, 0, 64)
	for i, v := range r {
		if i > 0 {
			b = append(b, 0x1f)
		}
		b = append(b, cellKey(v)...)
	}
	return string(b)
}
