// Package clean turns the raw jobs table into the cleaned dataset: duplicates
// dropped, nulls filled, remote coerced to boolean, company names title-cased.
package clean

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"jobpipe/internal/table"
)

const (
	RemoteColumn  = "remote"
	CompanyColumn = "company_name"
)

type ColumnType struct {
	Column string
	Type   string
}

type AnalysisSummary struct {
	Records     int
	NullCounts  []table.ColumnCount
	Duplicates  int
	ColumnTypes []ColumnType
}

// Analyze describes t without modifying it. Column types come from the store
// declaration when there is one, otherwise from the values.
func Analyze(t *table.Table) AnalysisSummary {
	s := AnalysisSummary{
		Records:    t.Len(),
		NullCounts: t.NullCounts(),
		Duplicates: t.DuplicateCount(),
	}
	for _, c := range t.Columns() {
		typ := t.DeclaredType(c)
		if typ == "" {
			typ = t.Kind(c).String()
		}
		s.ColumnTypes = append(s.ColumnTypes, ColumnType{Column: c, Type: typ})
	}
	return s
}

type FillStrategy string

const (
	FillMedian FillStrategy = "median"
	FillMode   FillStrategy = "mode"
	FillEmpty  FillStrategy = "empty"
)

type FillAction struct {
	Column   string
	Nulls    int
	Strategy FillStrategy
	Value    any
}

func (a FillAction) Message() string {
	noun := "nulls"
	if a.Nulls == 1 {
		noun = "null"
	}
	v := table.Format(a.Value)
	if v == "" {
		v = `""`
	}
	return fmt.Sprintf("filled %d %s in %s with %s", a.Nulls, noun, a.Column, v)
}

type Note struct {
	Column      string
	Description string
}

type Report struct {
	DuplicatesRemoved int
	// PostNormalizationDuplicates counts rows that only became equal after
	// filling and normalization.
	PostNormalizationDuplicates int
	Fills                       []FillAction
	TypeConversions             []Note
	Transformations             []Note
}

// Clean returns a cleaned copy of t. Running it on its own output changes
// nothing.
func Clean(t *table.Table) (*table.Table, Report) {
	out := t.Clone()
	var rep Report

	rep.DuplicatesRemoved = out.DropDuplicates()

	for _, nc := range out.NullCounts() {
		if nc.Count == 0 {
			continue
		}
		action := fillValue(out, nc.Column)
		action.Nulls = nc.Count
		fillNulls(out, nc.Column, action.Value)
		rep.Fills = append(rep.Fills, action)
	}

	if out.HasColumn(RemoteColumn) {
		changed := 0
		for r := 0; r < out.Len(); r++ {
			v := out.Value(r, RemoteColumn)
			b := coerceBool(v)
			if v != b {
				changed++
			}
			out.Set(r, RemoteColumn, b)
		}
		out.SetDeclaredType(RemoteColumn, "BOOLEAN")
		rep.TypeConversions = append(rep.TypeConversions, Note{
			Column:      RemoteColumn,
			Description: fmt.Sprintf("converted to boolean (%d value(s) changed)", changed),
		})
	}

	if out.HasColumn(CompanyColumn) {
		changed := 0
		for r := 0; r < out.Len(); r++ {
			s, ok := out.Value(r, CompanyColumn).(string)
			if !ok {
				continue
			}
			if tc := titleCase(s); tc != s {
				out.Set(r, CompanyColumn, tc)
				changed++
			}
		}
		rep.Transformations = append(rep.Transformations, Note{
			Column:      CompanyColumn,
			Description: fmt.Sprintf("normalized to title case (%d value(s) changed)", changed),
		})
	}

	rep.PostNormalizationDuplicates = out.DropDuplicates()
	return out, rep
}

func fillValue(t *table.Table, column string) FillAction {
	a := FillAction{Column: column}
	kind := t.Kind(column)
	if kind.Numeric() {
		if m, ok := t.Median(column); ok {
			a.Strategy = FillMedian
			a.Value = m
			if kind == table.KindInt && m == math.Trunc(m) {
				a.Value = int64(m)
			}
			return a
		}
	}
	if m, ok := t.Mode(column); ok {
		a.Strategy = FillMode
		a.Value = m
		return a
	}
	a.Strategy = FillEmpty
	a.Value = ""
	return a
}

func fillNulls(t *table.Table, column string, v any) {
	for r := 0; r < t.Len(); r++ {
		if t.Value(r, column) == nil {
			t.Set(r, column, v)
		}
	}
}

// coerceBool maps a cell onto a boolean: numbers are true when non-zero,
// strings parse as booleans when they can and are otherwise true when
// non-blank, null is false.
func coerceBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		s := strings.TrimSpace(x)
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		switch strings.ToLower(s) {
		case "yes", "y", "on":
			return true
		case "no", "n", "off":
			return false
		}
		return s != ""
	default:
		return false
	}
}

// titleCase upper-cases the first letter of every run of cased letters and
// lower-cases the rest, so "o'neil ACME-corp" becomes "O'Neil Acme-Corp".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			b.WriteRune(unicode.ToLower(r))
		case cased:
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}
