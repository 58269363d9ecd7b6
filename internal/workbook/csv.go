package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"
)

// ReadCSV parses CSV bytes into rows. Input is sanitized to valid UTF-8 first
// since HR system exports frequently contain stray Windows-1252 bytes.
func ReadCSV(data []byte) ([]Row, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		row := Row{Number: i + 1, Cells: make([]Cell, len(record))}
		for j, v := range record {
			row.Cells[j] = TextCell(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
