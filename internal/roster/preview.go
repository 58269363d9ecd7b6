package roster

// preview.go assembles the staging dataset the reviewer sees between parsing
// and persistence, and owns every in-place edit on it. All mutation goes
// through methods here so the derived-name and stat-counter invariants are
// enforced centrally instead of at each call site.

import (
	"errors"
	"fmt"

	"github.com/mkellner/credtrack/internal/workbook"
)

// ErrNameColumnUnset means a preview was requested before the mapping had a
// staff-name column. Structural failure; no staging dataset is produced.
var ErrNameColumnUnset = errors.New("mapping has no name column")

// ErrOutOfRange marks edit requests addressing an index the staging dataset
// does not have.
var ErrOutOfRange = errors.New("index out of range")

// Preview is the in-memory staging dataset for one import session. Staff are
// index-addressed; exclusion marks rows to skip at commit without deleting
// their data.
type Preview struct {
	Staff    []StagedStaff   `json:"staff"`
	Warnings []ImportWarning `json:"warnings"`
	Stats    ImportStats     `json:"stats"`

	excluded map[int]bool
}

// BuildPreview runs segmentation and row extraction over the whole sheet in
// original row order. Given the same rows and mapping it always produces the
// same dataset: same order, same derived fields, same warnings.
func BuildPreview(rows []workbook.Row, m *Mapping) (*Preview, error) {
	if m == nil || m.NameColumn() < 0 {
		return nil, ErrNameColumnUnset
	}

	headerRow, err := findHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	p := &Preview{excluded: make(map[int]bool)}
	for role, row := range Segment(rows[headerRow+1:]) {
		rec := ExtractRow(row, role, m)

		p.Staff = append(p.Staff, rec)
		p.Stats.TotalStaff++
		p.Stats.TotalCredentials += len(rec.Credentials)
		p.Stats.TotalCompetencies += len(rec.Competencies)

		if len(rec.Warnings) > 0 {
			p.Warnings = append(p.Warnings, ImportWarning{
				Row:      rec.SourceRow,
				Name:     rec.FullName,
				Warnings: rec.Warnings,
			})
		}
	}
	return p, nil
}

func (p *Preview) staffAt(i int) (*StagedStaff, error) {
	if i < 0 || i >= len(p.Staff) {
		return nil, fmt.Errorf("staff index %d (0-%d): %w", i, len(p.Staff)-1, ErrOutOfRange)
	}
	return &p.Staff[i], nil
}

// EditName replaces a staff row's name parts and recomputes the derived full
// name. FullName is never edited directly.
func (p *Preview) EditName(i int, first, last string) error {
	rec, err := p.staffAt(i)
	if err != nil {
		return err
	}
	rec.FirstName = first
	rec.LastName = last
	rec.FullName = joinName(first, last)
	return nil
}

// EditContact replaces a staff row's contact string.
func (p *Preview) EditContact(i int, contact string) error {
	rec, err := p.staffAt(i)
	if err != nil {
		return err
	}
	rec.Contact = contact
	return nil
}

// EditRole replaces a staff row's role.
func (p *Preview) EditRole(i int, role string) error {
	rec, err := p.staffAt(i)
	if err != nil {
		return err
	}
	rec.Role = role
	return nil
}

// EditCredentialDate replaces the expiration date of one staged credential.
// The date must already be canonical YYYY-MM-DD or empty.
func (p *Preview) EditCredentialDate(i, j int, date string) error {
	rec, err := p.staffAt(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(rec.Credentials) {
		return fmt.Errorf("credential index %d for %s: %w", j, rec.FullName, ErrOutOfRange)
	}
	rec.Credentials[j].ExpirationDate = date
	return nil
}

// EditCompetencyDate replaces the completion date of one staged competency.
func (p *Preview) EditCompetencyDate(i, j int, date string) error {
	rec, err := p.staffAt(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(rec.Competencies) {
		return fmt.Errorf("competency index %d for %s: %w", j, rec.FullName, ErrOutOfRange)
	}
	rec.Competencies[j].CompletionDate = date
	return nil
}

// RemoveCredential drops one staged credential and decrements the credential
// counter by exactly one.
func (p *Preview) RemoveCredential(i, j int) error {
	rec, err := p.staffAt(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(rec.Credentials) {
		return fmt.Errorf("credential index %d for %s: %w", j, rec.FullName, ErrOutOfRange)
	}
	rec.Credentials = append(rec.Credentials[:j], rec.Credentials[j+1:]...)
	p.Stats.TotalCredentials--
	return nil
}

// RemoveCompetency drops one staged competency and decrements the competency
// counter by exactly one.
func (p *Preview) RemoveCompetency(i, j int) error {
	rec, err := p.staffAt(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(rec.Competencies) {
		return fmt.Errorf("competency index %d for %s: %w", j, rec.FullName, ErrOutOfRange)
	}
	rec.Competencies = append(rec.Competencies[:j], rec.Competencies[j+1:]...)
	p.Stats.TotalCompetencies--
	return nil
}

// ToggleExcluded flips a staff row's exclusion flag and returns the new
// value. Excluded rows keep their data; commit skips them.
func (p *Preview) ToggleExcluded(i int) (bool, error) {
	if _, err := p.staffAt(i); err != nil {
		return false, err
	}
	p.excluded[i] = !p.excluded[i]
	return p.excluded[i], nil
}

// Excluded returns a copy of the excluded-row index set.
func (p *Preview) Excluded() map[int]bool {
	out := make(map[int]bool, len(p.excluded))
	for i, v := range p.excluded {
		if v {
			out[i] = true
		}
	}
	return out
}

// CommitStats recomputes the stats over non-excluded rows only: the counts a
// reviewer is shown immediately before committing.
func (p *Preview) CommitStats() ImportStats {
	var st ImportStats
	for i, rec := range p.Staff {
		if p.excluded[i] {
			continue
		}
		st.TotalStaff++
		st.TotalCredentials += len(rec.Credentials)
		st.TotalCompetencies += len(rec.Competencies)
	}
	return st
}

// ReviewSummary breaks the staging dataset down for the confirmation screen.
type ReviewSummary struct {
	Ready    int `json:"ready"`
	Warned   int `json:"warned"`
	Excluded int `json:"excluded"`
}

// Summary counts ready, warned, and excluded rows.
func (p *Preview) Summary() ReviewSummary {
	var s ReviewSummary
	for i, rec := range p.Staff {
		switch {
		case p.excluded[i]:
			s.Excluded++
		case len(rec.Warnings) > 0:
			s.Warned++
		default:
			s.Ready++
		}
	}
	return s
}
