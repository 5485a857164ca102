// Package xlsxrender exports the cost tables and variables of a document tree
// as a spreadsheet.
package xlsxrender

import (
	"fmt"
	"io"

	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/xuri/excelize/v2"
)

const (
	CostSheet     = "Costs"
	VariableSheet = "Variables"
	moneyFormat   = `"$"#,##0.00`
)

// Render writes a workbook with one row per element and one per variable.
func Render(w io.Writer, doc document.Document) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", CostSheet); err != nil {
		return err
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeCosts(f, doc, styles); err != nil {
		return err
	}
	if err := writeVariables(f, doc, styles); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

type styles struct {
	header int
	money  int
	total  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	format := moneyFormat
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F3F4F6"}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &format}); err != nil {
		return s, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &format}); err != nil {
		return s, err
	}
	return s, nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, fromCol, toCol, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func writeCosts(f *excelize.File, doc document.Document, st styles) error {
	if err := setRow(f, CostSheet, 1, "Category", "Element", "Material Cost", "Labor Cost", "Total"); err != nil {
		return err
	}
	if err := styleRow(f, CostSheet, 1, 1, 5, st.header); err != nil {
		return err
	}
	row := 2
	for _, sec := range doc.Sections {
		for _, t := range sec.Costs {
			for _, r := range t.Rows {
				if err := setRow(f, CostSheet, row, t.Category, r.Name,
					r.Material.InexactFloat64(), r.Labor.InexactFloat64(), r.Total.InexactFloat64()); err != nil {
					return err
				}
				if err := styleRow(f, CostSheet, row, 3, 5, st.money); err != nil {
					return err
				}
				row++
			}
			if err := setRow(f, CostSheet, row, t.Category, "Category Total", "", "", t.Total.InexactFloat64()); err != nil {
				return err
			}
			if err := styleRow(f, CostSheet, row, 5, 5, st.total); err != nil {
				return err
			}
			row++
		}
		for _, s := range sec.Summary {
			if err := setRow(f, CostSheet, row, s.Label, "", "", "", s.Amount.InexactFloat64()); err != nil {
				return err
			}
			if err := styleRow(f, CostSheet, row, 5, 5, st.total); err != nil {
				return err
			}
			row++
		}
	}
	if err := f.SetColWidth(CostSheet, "A", "B", 28); err != nil {
		return err
	}
	return f.SetColWidth(CostSheet, "C", "E", 16)
}

func writeVariables(f *excelize.File, doc document.Document, st styles) error {
	sec, ok := doc.Section(document.SectionVariables)
	if !ok {
		return nil
	}
	if _, err := f.NewSheet(VariableSheet); err != nil {
		return fmt.Errorf("add variables sheet: %w", err)
	}
	if err := setRow(f, VariableSheet, 1, "Category", "Variable", "Value"); err != nil {
		return err
	}
	if err := styleRow(f, VariableSheet, 1, 1, 3, st.header); err != nil {
		return err
	}
	row := 2
	for _, g := range sec.Values {
		for _, v := range g.Rows {
			if err := setRow(f, VariableSheet, row, g.Category, v.Name, v.Value); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(VariableSheet, "A", "B", 24)
}
