package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/eldos/workmarket/internal/codec"
	"github.com/eldos/workmarket/internal/schema"
)

// ExcelGenerator renders a collection as a single-sheet workbook: one header
// row of declared field names, one row per record.
type ExcelGenerator struct {
	codec *codec.Codec
}

func NewExcelGenerator(cdc *codec.Codec) *ExcelGenerator {
	return &ExcelGenerator{codec: cdc}
}

func (g *ExcelGenerator) Generate(kind schema.Kind, records []map[string]any) ([]byte, error) {
	file := excelize.NewFile()

	sheet := kind.Name
	file.SetSheetName("Sheet1", sheet)

	for col, f := range kind.Fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, f.Name); err != nil {
			return nil, err
		}
	}

	for row, record := range records {
		for col, f := range kind.Fields {
			value, err := g.codec.WireValue(f, record[f.Name])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row+1, err)
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
