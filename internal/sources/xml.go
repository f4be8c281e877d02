package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"jobpipe/internal/table"
)

// Column names produced by XMLLoader.
const (
	IndustryID         = "industry_id"
	IndustryName       = "industry_name"
	IndustryGrowthRate = "growth_rate"
	IndustryAvgSalary  = "avg_salary"
)

type industryDoc struct {
	Industries []industryElem `xml:"industry"`
}

type industryElem struct {
	ID         *string `xml:"id"`
	Name       *string `xml:"name"`
	GrowthRate *string `xml:"growth_rate"`
	AvgSalary  *string `xml:"avg_salary"`
}

// XMLLoader reads <industry> records with id, name, growth_rate and
// avg_salary children. Every child is required.
type XMLLoader struct {
	Path string
}

func (l XMLLoader) Name() string { return filepath.Base(l.Path) }

func (l XMLLoader) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc industryDoc
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, malformed(l.Path, "parse xml", err)
	}

	t := table.New(IndustryID, IndustryName, IndustryGrowthRate, IndustryAvgSalary)
	for i, ind := range doc.Industries {
		if ind.ID == nil || ind.Name == nil || ind.GrowthRate == nil || ind.AvgSalary == nil {
			return nil, malformed(l.Path, fmt.Sprintf("industry %d is missing a required child element", i+1), nil)
		}
		growth, err := strconv.ParseFloat(strings.TrimSpace(*ind.GrowthRate), 64)
		if err != nil {
			return nil, malformed(l.Path, fmt.Sprintf("industry %d growth_rate", i+1), err)
		}
		salary, err := strconv.ParseFloat(strings.TrimSpace(*ind.AvgSalary), 64)
		if err != nil {
			return nil, malformed(l.Path, fmt.Sprintf("industry %d avg_salary", i+1), err)
		}
		if err := t.Append(strings.TrimSpace(*ind.ID), strings.TrimSpace(*ind.Name), growth, salary); err != nil {
			return nil, err
		}
	}
	return t, nil
}
