// Package workbook reads roster spreadsheets into a format-neutral row model.
//
// The rest of the application never touches file formats directly: it sees
// ordered rows of typed cells (text, number, date, or empty). Numbers are kept
// raw so that spreadsheet date serials survive until date normalization.
package workbook

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// CellKind identifies the raw type of a spreadsheet cell.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is one spreadsheet cell. Exactly one of Text, Number, or Time is
// meaningful, selected by Kind.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// TextCell returns a text cell, or an empty cell if s is blank after cleanup.
func TextCell(s string) Cell {
	s = CleanCell(s)
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: KindNumber, Number: f}
}

// DateCell returns a native date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: KindDate, Time: t}
}

// IsEmpty reports whether the cell carries no data.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty
}

// String renders the cell for display and warnings.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", c.Number), "0"), ".")
	case KindDate:
		return c.Time.UTC().Format("2006-01-02")
	default:
		return ""
	}
}

// Row is one sheet row. Number is the 1-based position in the source sheet,
// kept so warnings and staging records can point back at the original file.
type Row struct {
	Number int
	Cells  []Cell
}

// Cell returns the cell at column i, or an empty cell when the row is short.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[i]
}

// IsEmpty reports whether every cell in the row is empty.
func (r Row) IsEmpty() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// CleanCell removes common spreadsheet export artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// Read parses file bytes into rows, choosing the parser by file extension.
// Unsupported extensions and unreadable files return an error; the caller
// treats that as a structural failure of the whole import.
func Read(fileName string, data []byte) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(data)
	case ".csv", ".txt", "":
		return ReadCSV(data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(fileName))
	}
}
