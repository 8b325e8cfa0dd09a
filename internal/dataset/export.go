package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"coaltracker/internal"
)

// WriteCSV writes the dataset with the 22 canonical columns in fixed
// order.
func WriteCSV(data internal.Dataset, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(internal.Fields))
	for i, field := range internal.Fields {
		header[i] = string(field)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(internal.Fields))
	for _, record := range data {
		for i, field := range internal.Fields {
			row[i] = record.Get(field).Text()
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteXLSX writes the same table as a single-sheet workbook.
func WriteXLSX(data internal.Dataset, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, field := range internal.Fields {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, string(field))
	}

	for rowIdx, record := range data {
		for colIdx, field := range internal.Fields {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			value := record.Get(field)
			if n, ok := value.Number(); ok {
				_ = f.SetCellValue(sheet, cell, n)
			} else {
				_ = f.SetCellValue(sheet, cell, value.Text())
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// WriteSummary writes the formatted report.
func WriteSummary(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(report.Format()), 0o644)
}
