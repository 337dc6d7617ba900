package export

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Table is a flat, already filtered and sorted view ready for export.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Excel renders the table as a single-sheet xlsx workbook. The export
// mirrors what the operator sees on screen: the same columns, the same row
// order.
func Excel(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := table.Name
	if sheet == "" {
		sheet = "Export"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.Wrap(err, "failed to name export sheet")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create header style")
	}

	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx, row := range table.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if len(table.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(table.Headers))
		if err == nil {
			endRow := len(table.Rows) + 1
			if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", last, endRow), nil); err != nil {
				return nil, errors.Wrap(err, "failed to set auto filter")
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to serialize workbook")
	}
	return buf.Bytes(), nil
}

// Filename builds the attachment name for a resource export.
func Filename(resource string) string {
	return fmt.Sprintf("%s-export.xlsx", resource)
}
