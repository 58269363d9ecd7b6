package roster

// analyze.go is the first pass over a freshly uploaded sheet: find the column
// header row, classify each column from its header, collect sample values,
// and count the role groups. The result is immutable and drives the mapping
// UI; nothing is extracted yet.

import (
	"errors"

	"github.com/mkellner/credtrack/internal/workbook"
)

// ErrNoHeaderRow means no usable column header row was found near the top of
// the sheet. Structural failure; no analysis is produced.
var ErrNoHeaderRow = errors.New("no column header row found")

// maxHeaderSearchRows bounds how far down the sheet the header search goes.
const maxHeaderSearchRows = 20

// maxSampleValues caps the sample values collected per column.
const maxSampleValues = 3

// Analysis is the analyze-phase result for one uploaded sheet.
type Analysis struct {
	Columns       []ColumnAnalysis `json:"columns"`
	HeaderRow     int              `json:"headerRow"`
	RoleCounts    map[string]int   `json:"roleCounts"`
	TotalDataRows int              `json:"totalDataRows"`
}

// findHeaderRow returns the index of the column header row: the first
// non-empty row near the top that is not a role-group header.
func findHeaderRow(rows []workbook.Row) (int, error) {
	limit := len(rows)
	if limit > maxHeaderSearchRows {
		limit = maxHeaderSearchRows
	}
	for i := 0; i < limit; i++ {
		if rows[i].IsEmpty() {
			continue
		}
		if _, ok := roleHeader(rows[i]); ok {
			continue
		}
		return i, nil
	}
	return 0, ErrNoHeaderRow
}

// Analyze classifies every column of the sheet and tallies role groups.
// types is the current credential-type catalog, used to suggest bindings for
// columns whose classification matches an existing type.
func Analyze(rows []workbook.Row, types []CredentialType) (*Analysis, error) {
	headerRow, err := findHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	dataRows := rows[headerRow+1:]
	width := len(rows[headerRow].Cells)
	for _, row := range dataRows {
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}

	a := &Analysis{
		Columns:    make([]ColumnAnalysis, width),
		HeaderRow:  rows[headerRow].Number,
		RoleCounts: RoleCounts(dataRows),
	}
	for _, n := range a.RoleCounts {
		a.TotalDataRows += n
	}

	for col := 0; col < width; col++ {
		ca := ColumnAnalysis{
			Index:  col,
			Header: rows[headerRow].Cell(col).String(),
		}
		for _, row := range Segment(dataRows) {
			cell := row.Cell(col)
			if cell.IsEmpty() {
				continue
			}
			ca.HasData = true
			if len(ca.SampleValues) < maxSampleValues {
				ca.SampleValues = append(ca.SampleValues, cell.String())
			}
		}
		ca.Classification = Classify(ca.Header)
		if id, ok := MatchCredentialType(ca.Classification, types); ok {
			ca.MatchedTypeID = id
		}
		a.Columns[col] = ca
	}

	return a, nil
}
