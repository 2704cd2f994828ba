package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/konturio/insights-llm-api/models"
)

const sheetName = "LLM Cache"

// WriteCacheReport exports compute-cache rows to an XLSX workbook for
// manual review of prompts and responses.
func WriteCacheReport(path string, entries []models.CacheEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Hash", "Model", "Created At", "Request", "Response"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, entry := range entries {
		response := ""
		if entry.Response.Valid {
			response = entry.Response.String
		}
		values := []any{
			entry.Hash,
			entry.ModelName,
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.Request,
			response,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
