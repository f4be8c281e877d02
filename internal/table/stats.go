package table

import (
	"sort"
	"strconv"
	"strings"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindMixed
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "mixed"
	}
}

func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Kind infers the column kind from its non-null values.
func (t *Table) Kind(column string) Kind {
	c, ok := t.index[column]
	if !ok {
		return KindEmpty
	}
	var bools, ints, floats, texts, other int
	for _, r := range t.rows {
		switch r[c].(type) {
		case nil:
		case bool:
			bools++
		case int64:
			ints++
		case float64:
			floats++
		case string:
			texts++
		default:
			other++
		}
	}
	n := bools + ints + floats + texts + other
	switch {
	case n == 0:
		return KindEmpty
	case bools == n:
		return KindBool
	case ints == n:
		return KindInt
	case ints+floats == n:
		return KindFloat
	case texts == n:
		return KindText
	default:
		return KindMixed
	}
}

type ColumnCount struct {
	Column string
	Count  int
}

// NullCounts returns the number of nulls per column, in column order.
func (t *Table) NullCounts() []ColumnCount {
	out := make([]ColumnCount, len(t.columns))
	for i, c := range t.columns {
		out[i].Column = c
	}
	for _, r := range t.rows {
		for i, v := range r {
			if v == nil {
				out[i].Count++
			}
		}
	}
	return out
}

func (t *Table) TotalNulls() int {
	n := 0
	for _, c := range t.NullCounts() {
		n += c.Count
	}
	return n
}

// DuplicateCount is the number of rows equal (in every column) to an earlier row.
func (t *Table) DuplicateCount() int {
	seen := make(map[string]struct{}, len(t.rows))
	dups := 0
	for _, r := range t.rows {
		k := rowKey(r)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// DropDuplicates removes rows equal to an earlier row, keeping the first
// occurrence, and returns how many were removed.
func (t *Table) DropDuplicates() int {
	seen := make(map[string]struct{}, len(t.rows))
	kept := t.rows[:0]
	removed := 0
	for _, r := range t.rows {
		k := rowKey(r)
		if _, ok := seen[k]; ok {
			removed++
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	t.rows = kept
	return removed
}

// Median of the numeric non-null values of a column. ok is false when the
// column has no numeric values.
func (t *Table) Median(column string) (median float64, ok bool) {
	var xs []float64
	for _, v := range t.ColumnValues(column) {
		switch x := v.(type) {
		case int64:
			xs = append(xs, float64(x))
		case float64:
			xs = append(xs, x)
		}
	}
	if len(xs) == 0 {
		return 0, false
	}
	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 1 {
		return xs[mid], true
	}
	return (xs[mid-1] + xs[mid]) / 2, true
}

// Mode returns the most frequent non-null value of a column. Ties go to the
// value whose text form sorts first. ok is false when every value is null.
func (t *Table) Mode(column string) (mode any, ok bool) {
	counts := map[string]int{}
	values := map[string]any{}
	for _, v := range t.ColumnValues(column) {
		if v == nil {
			continue
		}
		k := cellKey(v)
		counts[k]++
		values[k] = v
	}
	if len(counts) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return Format(values[keys[i]]) < Format(values[keys[j]])
	})
	return values[keys[0]], true
}

// InferScalars converts raw text cells of one column into typed values.
// Blank cells become null. The column becomes int64 when every non-blank cell
// is an integer, float64 when every cell is numeric, bool when every cell is
// true/false, and stays text otherwise.
func InferScalars(raw []string) []any {
	out := make([]any, len(raw))
	allInt, allFloat, allBool := true, true, true
	nonBlank := 0
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		nonBlank++
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			allFloat = false
		}
		if _, ok := parseBool(s); !ok {
			allBool = false
		}
	}

	for i, s := range raw {
		ts := strings.TrimSpace(s)
		if ts == "" {
			continue
		}
		switch {
		case nonBlank == 0:
		case allInt:
			n, _ := strconv.ParseInt(ts, 10, 64)
			out[i] = n
		case allFloat:
			f, _ := strconv.ParseFloat(ts, 64)
			out[i] = f
		case allBool:
			b, _ := parseBool(ts)
			out[i] = b
		default:
			out[i] = s
		}
	}
	return out
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// FromColumns builds a table from raw text columns, inferring each column's
// type with InferScalars.
func FromColumns(columns []string, raw [][]string) *Table {
	t := New(columns...)
	typed := make([][]any, len(columns))
	for c := range columns {
		col := make([]string, len(raw))
		for r := range raw {
			if c < len(raw[r]) {
				col[r] = raw[r][c]
			}
		}
		typed[c] = InferScalars(col)
	}
	for r := range raw {
		row := make([]any, len(columns))
		for c := range columns {
			row[c] = typed[c][r]
		}
		t.rows = append(t.rows, row)
	}
	return t
}
