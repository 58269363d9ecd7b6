package roster

// extract.go turns one data row plus the active column mapping into a staged
// staff record. Bad cells become warnings on the record, never hard failures;
// the reviewer fixes them in the preview before committing.

import (
	"strings"

	"github.com/mkellner/credtrack/internal/workbook"
)

// ExtractRow builds a StagedStaff from row under mapping m, attributed to
// role. Bound columns are processed in ascending index order so warning
// ordering is reproducible. Empty credential/competency cells produce no
// record and no warning; absence of data is not an error.
func ExtractRow(row workbook.Row, role string, m *Mapping) StagedStaff {
	rec := StagedStaff{
		Role:      role,
		SourceRow: row.Number,
	}
	sink := &Warnings{}

	rec.FirstName, rec.LastName = splitName(row.Cell(m.NameColumn()).String(), sink)
	rec.FullName = joinName(rec.FirstName, rec.LastName)

	if col := m.ContactColumn(); col >= 0 {
		rec.Contact = row.Cell(col).String()
	}
	if col := m.LicenseColumn(); col >= 0 {
		rec.LicenseNumber = row.Cell(col).String()
	}

	for _, col := range m.columnsByKind(bindCredential) {
		cell := row.Cell(col)
		if cell.IsEmpty() {
			continue
		}
		rec.Credentials = append(rec.Credentials, StagedCredential{
			CredentialTypeID: m.bindings[col].typeID,
			ExpirationDate:   NormalizeDate(cell, sink),
		})
	}

	for _, col := range m.columnsByKind(bindCompetency) {
		cell := row.Cell(col)
		if cell.IsEmpty() {
			continue
		}
		rec.Competencies = append(rec.Competencies, StagedCompetency{
			CredentialTypeID: m.bindings[col].typeID,
			CompletionDate:   NormalizeDate(cell, sink),
		})
	}

	rec.Warnings = sink.Messages()
	return rec
}

// splitName splits a full name at the first whitespace boundary. A single
// token becomes the last name with an empty first name, plus a warning. The
// heuristic mis-splits multi-word first names ("Mary Ann Smith"); that is a
// known limitation the reviewer corrects by hand.
func splitName(full string, sink *Warnings) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		sink.Add("Missing staff name")
		return "", ""
	}

	i := strings.IndexFunc(full, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		sink.Addf("Could not split name into first and last: %q", full)
		return "", full
	}
	return full[:i], strings.TrimSpace(full[i+1:])
}
