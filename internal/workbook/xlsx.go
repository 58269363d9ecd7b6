package workbook

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses an Excel workbook and returns the rows of its first sheet.
//
// Cells are read with raw values so date cells arrive as their underlying
// serial numbers rather than locale-formatted strings; the date normalizer
// downstream converts serials to ISO dates.
func ReadXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	rows := make([]Row, 0, len(raw))
	for i, cells := range raw {
		row := Row{Number: i + 1, Cells: make([]Cell, len(cells))}
		for j, v := range cells {
			row.Cells[j] = xlsxCell(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// xlsxCell types a raw cell value. Raw numeric values may be plain numbers or
// date serials; both land in KindNumber and are disambiguated by the consumer.
func xlsxCell(v string) Cell {
	v = CleanCell(v)
	if v == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return NumberCell(f)
	}
	return Cell{Kind: KindText, Text: v}
}
