package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// WriteData writes rows under the given headers as CSV or, for any other
// extension, as the first sheet of a new workbook
func WriteData(path string, headers []string, rows []map[string]any) error {
	var err error
	if fileTypeOf(path) == "csv" {
		err = writeCSV(path, headers, rows)
	} else {
		err = writeExcel(path, headers, rows)
	}
	if err != nil {
		return err
	}
	log.Printf("[DataReader] wrote %d rows to %s", len(rows), path)
	return nil
}

func writeCSV(path string, headers []string, rows []map[string]any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := make([]string, len(headers))
	for _, r := range rows {
		for i, h := range headers {
			record[i] = cast.ToString(r[h])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeExcel(path string, headers []string, rows []map[string]any) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for ri, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(headers))
		for i, h := range headers {
			values[i] = r[h]
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", ri+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
