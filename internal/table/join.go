package table

import "fmt"

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

type JoinStats struct {
	LeftRows      int
	OutputRows    int
	MatchedRows   int // output rows that carry a right-side match
	DuplicateKeys int // right-side keys that occur more than once
}

// LeftJoin performs a left outer join of t with right on t[leftKey] == right[rightKey].
//
// Left row order is preserved; a left row matching several right rows is
// repeated once per match, in right order. Unmatched rows get nulls for every
// right column. Keys compare on their text form and null keys never match.
// Non-key columns present on both sides are renamed with "_x"/"_y" suffixes.
// When leftKey == rightKey the key appears once in the output.
func (t *Table) LeftJoin(right *Table, leftKey, rightKey string) (*Table, JoinStats, error) {
	lk, ok := t.index[leftKey]
	if !ok {
		return nil, JoinStats{}, fmt.Errorf("left join: left table has no column %q", leftKey)
	}
	rk, ok := right.index[rightKey]
	if !ok {
		return nil, JoinStats{}, fmt.Errorf("left join: right table has no column %q", rightKey)
	}
	sameKey := leftKey == rightKey

	overlap := map[string]bool{}
	for _, c := range right.columns {
		if sameKey && c == rightKey {
			continue
		}
		if t.HasColumn(c) {
			overlap[c] = true
		}
	}

	var cols []string
	for _, c := range t.columns {
		if overlap[c] {
			c += leftSuffix
		}
		cols = append(cols, c)
	}
	var rightIdx []int
	for i, c := range right.columns {
		if sameKey && i == rk {
			continue
		}
		if overlap[c] {
			c += rightSuffix
		}
		cols = append(cols, c)
		rightIdx = append(rightIdx, i)
	}

	lookup := map[string][]int{}
	for i, r := range right.rows {
		if r[rk] == nil {
			continue
		}
		k := joinKey(r[rk])
		lookup[k] = append(lookup[k], i)
	}

	stats := JoinStats{LeftRows: len(t.rows)}
	for _, idx := range lookup {
		if len(idx) > 1 {
			stats.DuplicateKeys++
		}
	}

	out := New(cols...)
	for _, c := range t.columns {
		name := c
		if overlap[c] {
			name += leftSuffix
		}
		out.SetDeclaredType(name, t.declared[c])
	}

	for _, lr := range t.rows {
		var matches []int
		if lr[lk] != nil {
			matches = lookup[joinKey(lr[lk])]
		}
		if len(matches) == 0 {
			row := make([]any, len(cols))
			copy(row, lr)
			out.rows = append(out.rows, row)
			continue
		}
		for _, m := range matches {
			row := make([]any, 0, len(cols))
			row = append(row, lr...)
			for _, ri := range rightIdx {
				row = append(row, right.rows[m][ri])
			}
			out.rows = append(out.rows, row)
			stats.MatchedRows++
		}
	}
	stats.OutputRows = len(out.rows)
	return out, stats, nil
}

func joinKey(v any) string { return Format(v) }

// NewColumns lists the columns of after that are absent from before, in
// after's order.
func NewColumns(before, after []string) []string {
	had := make(map[string]bool, len(before))
	for _, c := range before {
		had[c] = true
	}
	var out []string
	for _, c := range after {
		if !had[c] {
			out = append(out, c)
		}
	}
	return out
}
