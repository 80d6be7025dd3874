package export

import (
	"fmt"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sleep"

// WriteXLSXFile writes the dataset as a single-sheet workbook at path.
func WriteXLSXFile(path string, dataset *domain.WeeklyDataset) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := writeRow(f, 1, Header); err != nil {
		return err
	}
	for i, row := range Rows(dataset) {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	// Everything is written as strings: blank cells in absence rows must
	// stay blank, not become zeros.
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
