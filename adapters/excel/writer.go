package excel

import (
	"fmt"
	"math"

	"repsig/internal/report"

	"github.com/xuri/excelize/v2"
)

const (
	sheetPairwise   = "pairwise"
	sheetMethods    = "methods"
	sheetRun        = "run"
	sheetConditions = "conditions"
)

// WriteReport saves a report as a workbook with the pairwise mean-difference
// and p-value matrices, per-method summaries and the run manifest. Reports
// with per-condition tables get a fourth sheet listing every condition pair.
func WriteReport(path string, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetPairwise); err != nil {
		return err
	}
	sheets := []string{sheetMethods, sheetRun}
	if len(r.Conditions) > 0 {
		sheets = append(sheets, sheetConditions)
	}
	for _, name := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	if err := writePairwise(f, r); err != nil {
		return err
	}
	if err := writeMethods(f, r); err != nil {
		return err
	}
	if err := writeRun(f, r); err != nil {
		return err
	}
	if len(r.Conditions) > 0 {
		if err := writeConditions(f, r); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writePairwise(f *excelize.File, r *report.Report) error {
	rows := [][]interface{}{
		{"Kruskal-Wallis H-test", "H", cellFloat(r.Omnibus.H), "p", cellFloat(r.Omnibus.PValue)},
		{},
	}

	rows = append(rows, matrixBlock("mean_diff", r, func(a, b int) interface{} {
		return cellFloat(r.Pairwise.Cell(a, b).MeanDiff)
	})...)
	rows = append(rows, []interface{}{})
	rows = append(rows, matrixBlock("p_value", r, func(a, b int) interface{} {
		cell := r.Pairwise.Cell(a, b)
		if cell.Err != nil {
			return "degenerate"
		}
		return cellFloat(cell.PValue)
	})...)

	return setRows(f, sheetPairwise, rows)
}

func matrixBlock(title string, r *report.Report, value func(a, b int) interface{}) [][]interface{} {
	header := []interface{}{title}
	for _, l := range r.Labels {
		header = append(header, l)
	}
	block := [][]interface{}{header}

	for a, la := range r.Labels {
		row := []interface{}{la}
		for b := range r.Labels {
			if a == b {
				row = append(row, "")
				continue
			}
			row = append(row, value(a, b))
		}
		block = append(block, row)
	}
	return block
}

func writeMethods(f *excelize.File, r *report.Report) error {
	rows := [][]interface{}{{"method", "mean", "median", "std_dev", "min", "max"}}
	for i, s := range r.Summaries {
		label := s.Method
		if i < len(r.Labels) {
			label = r.Labels[i]
		}
		rows = append(rows, []interface{}{label, cellFloat(s.Mean), cellFloat(s.Median), cellFloat(s.StdDev), cellFloat(s.Min), cellFloat(s.Max)})
	}
	return setRows(f, sheetMethods, rows)
}

func writeRun(f *excelize.File, r *report.Report) error {
	var rows [][]interface{}
	for _, kv := range r.Manifest.Fields() {
		rows = append(rows, []interface{}{kv[0], kv[1]})
	}
	return setRows(f, sheetRun, rows)
}

func writeConditions(f *excelize.File, r *report.Report) error {
	rows := [][]interface{}{{"condition", "method_a", "method_b", "mean_diff", "p_value", "w", "n"}}
	for _, c := range r.Conditions {
		for a := 1; a < len(r.Labels); a++ {
			for b := 0; b < a; b++ {
				cell := c.Pairwise.Cell(a, b)
				if cell.Err != nil {
					rows = append(rows, []interface{}{c.Label, r.Labels[a], r.Labels[b], cellFloat(cell.MeanDiff), "degenerate"})
					continue
				}
				rows = append(rows, []interface{}{c.Label, r.Labels[a], r.Labels[b], cellFloat(cell.MeanDiff), cellFloat(cell.PValue), cell.W, cell.N})
			}
		}
	}
	return setRows(f, sheetConditions, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellFloat keeps non-finite values out of numeric cells
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return v
}
