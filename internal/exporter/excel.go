package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WorkbookFileName is the download name of the full dashboard export.
const WorkbookFileName = "taxi-dashboard.xlsx"

// BuildWorkbook lays the tables out as one xlsx sheet each, in order.
// The first table replaces the default sheet so the workbook opens on it.
func BuildWorkbook(tables []Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()

	defaultSheet := f.GetSheetName(0)
	for i, table := range tables {
		sheet := table.Name
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return nil, fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		for col, name := range table.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, name); err != nil {
				return nil, fmt.Errorf("write header %s!%s: %w", sheet, cell, err)
			}
		}

		for rowIdx, row := range table.Rows {
			for colIdx, val := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				if err := f.SetCellValue(sheet, cell, val); err != nil {
					return nil, fmt.Errorf("write cell %s!%s: %w", sheet, cell, err)
				}
			}
		}
	}

	return f, nil
}

// WriteWorkbook builds the workbook and streams it to w
func WriteWorkbook(w io.Writer, tables []Table) error {
	f, err := BuildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
