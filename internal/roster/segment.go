package roster

// segment.go walks sheet rows top to bottom and attributes each data row to
// the role declared by the nearest preceding group-header row. Roster exports
// mark each staff group with a row that carries only the role name in its
// first cell ("RN", "RCIS", ...).

import (
	"iter"
	"strings"

	"github.com/mkellner/credtrack/internal/workbook"
)

// RoleUnassigned is the bucket for data rows that appear before any group
// header.
const RoleUnassigned = "Unassigned"

// roleSynonyms maps the spellings seen in real exports to canonical role
// names. Short synonyms require an exact match; longer ones also match as
// substrings of the header cell.
var roleSynonyms = []struct {
	canonical string
	names     []string
}{
	{"RCIS", []string{"rcis", "cvt", "cath lab tech", "technologist"}},
	{"RN", []string{"rn", "registered nurse", "nurses", "nurse"}},
	{"Miscellaneous", []string{"misc", "miscellaneous", "other staff", "other"}},
}

// roleHeader reports whether row is a group header and, if so, the canonical
// role it declares. A group header carries the role name in its first cell
// and nothing else; that restriction keeps staff names containing role
// substrings from being swallowed as headers.
func roleHeader(row workbook.Row) (string, bool) {
	first := row.Cell(0)
	if first.Kind != workbook.KindText {
		return "", false
	}
	for i := 1; i < len(row.Cells); i++ {
		if !row.Cells[i].IsEmpty() {
			return "", false
		}
	}

	cell := strings.ToLower(strings.TrimSpace(first.Text))
	for _, group := range roleSynonyms {
		for _, name := range group.names {
			if cell == name {
				return group.canonical, true
			}
			if len(name) >= 4 && strings.Contains(cell, name) {
				return group.canonical, true
			}
		}
	}
	return "", false
}

// Segment lazily yields (role, row) for every data row in sheet order. Group
// header rows switch the active role without being yielded, and rows whose
// cells are all empty are skipped. One forward pass, no lookahead.
func Segment(rows []workbook.Row) iter.Seq2[string, workbook.Row] {
	return func(yield func(string, workbook.Row) bool) {
		role := RoleUnassigned
		for _, row := range rows {
			if row.IsEmpty() {
				continue
			}
			if r, ok := roleHeader(row); ok {
				role = r
				continue
			}
			if !yield(role, row) {
				return
			}
		}
	}
}

// RoleCounts tallies data rows per role, for the analyze response.
func RoleCounts(rows []workbook.Row) map[string]int {
	counts := make(map[string]int)
	for role := range Segment(rows) {
		counts[role]++
	}
	return counts
}
