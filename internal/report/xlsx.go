package report

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/francescacollu/prison-inflation/internal"
	"github.com/francescacollu/prison-inflation/internal/util"
)

// Workbook bundles every series that goes into the analysis export.
type Workbook struct {
	ItemLevel        []internal.InflationRecord
	CategoryLevel    []internal.InflationRecord
	CPICategoryLevel []internal.InflationRecord
	Overall          []internal.InflationRecord
	CPI              []internal.CPIInflationRecord
	Comparisons      []internal.ComparisonRow
}

// ExportXLSX writes one workbook with a sheet per aggregation level plus
// the CPI series and the commissary-vs-CPI comparison.
func ExportXLSX(wb Workbook, outputPath string) error {
	f := excelize.NewFile()

	writeInflationSheet(f, "items", wb.ItemLevel)
	writeInflationSheet(f, "categories", wb.CategoryLevel)
	writeInflationSheet(f, "cpi_categories", wb.CPICategoryLevel)
	writeInflationSheet(f, "overall", wb.Overall)
	writeCPISheet(f, "cpi", wb.CPI)
	writeComparisonSheet(f, "comparison", wb.Comparisons)

	// The default sheet excelize creates is replaced by the first data
	// sheet.
	_ = f.DeleteSheet(f.GetSheetName(0))
	if idx, err := f.GetSheetIndex("items"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeInflationSheet(f *excelize.File, sheet string, records []internal.InflationRecord) {
	_, _ = f.NewSheet(sheet)

	headers := []string{
		"year", "level", "item_name", "size", "category", "cpi_category",
		"essential", "avg_price", "yoy_inflation_pct", "cumulative_inflation_pct",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.Year)
		set(2, rec.Level)
		set(3, rec.ItemName)
		set(4, rec.Size)
		set(5, rec.Category)
		set(6, rec.CPICategory)
		set(7, string(rec.Essential))
		set(8, rec.Price)
		set(9, util.DerefFloat(rec.YoYPct))
		set(10, util.DerefFloat(rec.CumulativePct))
	}
}

func writeCPISheet(f *excelize.File, sheet string, records []internal.CPIInflationRecord) {
	_, _ = f.NewSheet(sheet)

	headers := []string{"cpi_type", "year", "value", "yoy_inflation_pct", "cumulative_inflation_pct"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.CPIType)
		set(2, rec.Year)
		set(3, rec.Value)
		set(4, util.DerefFloat(rec.YoYPct))
		set(5, util.DerefFloat(rec.CumulativePct))
	}
}

func writeComparisonSheet(f *excelize.File, sheet string, rows []internal.ComparisonRow) {
	_, _ = f.NewSheet(sheet)

	headers := []string{
		"year", "level", "cpi_type",
		"commissary_yoy_pct", "cpi_yoy_pct", "yoy_diff_pct",
		"commissary_cum_pct", "cpi_cum_pct", "cum_diff_pct",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Year)
		set(2, row.Level)
		set(3, row.CPIType)
		set(4, util.DerefFloat(row.CommissaryYoYPct))
		set(5, util.DerefFloat(row.CPIYoYPct))
		set(6, util.DerefFloat(row.YoYDiffPct))
		set(7, util.DerefFloat(row.CommissaryCumPct))
		set(8, util.DerefFloat(row.CPICumPct))
		set(9, util.DerefFloat(row.CumDiffPct))
	}
}
