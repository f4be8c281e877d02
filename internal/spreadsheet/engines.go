package spreadsheet

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v3"
	"github.com/xuri/excelize/v2"
)

type ExcelizeEngine struct{}

func (ExcelizeEngine) Name() string { return "excelize" }

func (ExcelizeEngine) ReadRows(path string) ([]string, [][]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	text, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}

	all := make([][]any, len(text))
	for r, row := range text {
		all[r] = make([]any, len(row))
		for c, s := range row {
			if s == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, nil, err
			}
			typ, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, nil, err
			}
			all[r][c] = excelizeCell(typ, s)
		}
	}
	return splitHeader(all)
}

// excelizeCell keeps string cells as text. Cells without a type attribute
// are numbers in the file format.
func excelizeCell(typ excelize.CellType, s string) any {
	switch typ {
	case excelize.CellTypeBool:
		return boolCell(s)
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return numberCell(s)
	default:
		return s
	}
}

// TealegEngine is the fallback reader. It copes with some workbooks written by
// older tools that excelize rejects.
type TealegEngine struct{}

func (TealegEngine) Name() string { return "tealeg/xlsx" }

func (TealegEngine) ReadRows(path string) ([]string, [][]any, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	sh := wb.Sheets[0]
	defer sh.Close()

	all := make([][]any, 0, sh.MaxRow)
	for r := 0; r < sh.MaxRow; r++ {
		row := make([]any, sh.MaxCol)
		for c := 0; c < sh.MaxCol; c++ {
			cell, err := sh.Cell(r, c)
			if err != nil {
				return nil, nil, err
			}
			row[c] = tealegCell(cell)
		}
		all = append(all, row)
	}
	return splitHeader(all)
}

func tealegCell(c *xlsx.Cell) any {
	if c.Value == "" {
		return nil
	}
	switch c.Type() {
	case xlsx.CellTypeBool:
		return c.Bool()
	case xlsx.CellTypeNumeric:
		return numberCell(c.Value)
	default:
		return c.Value
	}
}

// numberCell parses a numeric cell as int64 when it is whole, float64
// otherwise. Text that does not parse is kept as is.
func numberCell(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func boolCell(s string) any {
	switch strings.ToUpper(s) {
	case "TRUE", "1":
		return true
	case "FALSE", "0":
		return false
	}
	return s
}
