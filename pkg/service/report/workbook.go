package report

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/xuri/excelize/v2"

	"github.com/Motigun/influenza-like-illness-trend-analysis/pkg/domain/model"
)

// writeWorkbook saves the three rate tables as one sheet each. Percentages
// are written as raw ratios so the workbook stays machine-readable.
func writeWorkbook(set *model.RateSet, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	year := set.ReferenceYear.Int()

	nationalRows := make([][]interface{}, 0, len(set.National))
	for _, r := range set.National {
		nationalRows = append(nationalRows, []interface{}{
			r.Year.Int(), r.Age.String(), r.Cases, r.Population, r.Percentage,
		})
	}
	if err := f.SetSheetName("Sheet1", "National_Rates"); err != nil {
		return goerr.Wrap(err, "failed to name sheet")
	}
	if err := fillSheet(f, "National_Rates",
		[]string{"Year", "Age group", "Cases", "Population", "Percentage"},
		nationalRows); err != nil {
		return err
	}

	cityRows := make([][]interface{}, 0, len(set.City))
	for _, r := range set.City {
		cityRows = append(cityRows, []interface{}{
			string(r.City), r.Age.String(), r.Cases, r.Population, r.Percentage,
		})
	}
	citySheet := fmt.Sprintf("City_Rates_%d", year)
	if err := fillSheet(f, citySheet,
		[]string{"City", "Age group", "Cases", "Population", "Percentage"},
		cityRows); err != nil {
		return err
	}

	overallRows := make([][]interface{}, 0, len(set.Overall))
	for _, r := range set.Overall {
		overallRows = append(overallRows, []interface{}{
			string(r.City), r.Cases, r.Population, r.Percentage,
		})
	}
	overallSheet := fmt.Sprintf("City_Overall_%d", year)
	if err := fillSheet(f, overallSheet,
		[]string{"City", "Cases", "Population", "Percentage"},
		overallRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return goerr.Wrap(err, "failed to save workbook", goerr.V("path", path))
	}
	return nil
}

// fillSheet creates the sheet when absent and writes a header row followed
// by the data rows.
func fillSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil {
		return goerr.Wrap(err, "failed to look up sheet", goerr.V("sheet", sheet))
	} else if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", sheet))
		}
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return goerr.Wrap(err, "failed to address header cell", goerr.V("sheet", sheet))
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return goerr.Wrap(err, "failed to write header", goerr.V("sheet", sheet), goerr.V("cell", cell))
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return goerr.Wrap(err, "failed to name column", goerr.V("sheet", sheet))
		}
		if err := f.SetColWidth(sheet, col, col, 16); err != nil {
			return goerr.Wrap(err, "failed to size column", goerr.V("sheet", sheet), goerr.V("column", col))
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return goerr.Wrap(err, "failed to address cell", goerr.V("sheet", sheet))
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return goerr.Wrap(err, "failed to write cell", goerr.V("sheet", sheet), goerr.V("cell", cell))
			}
		}
	}
	return nil
}
