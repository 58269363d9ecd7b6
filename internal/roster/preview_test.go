package roster

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mkellner/credtrack/internal/workbook"
)

// previewSheet is a small but structurally complete roster: a column header
// row, two role groups, a blank row, and one row with a date typo.
func previewSheet() []workbook.Row {
	return []workbook.Row{
		textRow(1, "Name", "Phone", "License #", "BLS Exp", "ACLS Exp", "IABP"),
		textRow(2, "RN"),
		textRow(3, "Jane Doe", "555-0100", "RN123", "6/30/2026", "1/15/2026", ""),
		textRow(4, "", "", ""),
		textRow(5, "John Roe", "555-0101", "RN124", "6/302026", "", "3/1/2025"),
		textRow(6, "RCIS"),
		textRow(7, "Pat Tech", "555-0102", "", "12/31/2025", "", ""),
	}
}

func TestBuildPreview(t *testing.T) {
	p, err := BuildPreview(previewSheet(), standardMapping())
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}

	if len(p.Staff) != 3 {
		t.Fatalf("staff = %d, want 3", len(p.Staff))
	}

	want := ImportStats{TotalStaff: 3, TotalCredentials: 4, TotalCompetencies: 1}
	if p.Stats != want {
		t.Errorf("stats = %+v, want %+v", p.Stats, want)
	}

	jane := p.Staff[0]
	if jane.FullName != "Jane Doe" || jane.Role != "RN" || jane.SourceRow != 3 {
		t.Errorf("first record = %+v", jane)
	}
	if len(jane.Credentials) != 2 || jane.Credentials[0].ExpirationDate != "2026-06-30" {
		t.Errorf("jane credentials = %v", jane.Credentials)
	}

	pat := p.Staff[2]
	if pat.Role != "RCIS" {
		t.Errorf("pat role = %q", pat.Role)
	}

	// John's typo repair surfaces as one aggregated warning entry.
	if len(p.Warnings) != 1 {
		t.Fatalf("warnings = %v", p.Warnings)
	}
	if p.Warnings[0].Row != 5 || p.Warnings[0].Name != "John Roe" {
		t.Errorf("warning attribution = %+v", p.Warnings[0])
	}
}

func TestBuildPreview_Reproducible(t *testing.T) {
	first, err := BuildPreview(previewSheet(), standardMapping())
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	second, err := BuildPreview(previewSheet(), standardMapping())
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}

	if !reflect.DeepEqual(first.Staff, second.Staff) {
		t.Error("staff differ between identical builds")
	}
	if !reflect.DeepEqual(first.Warnings, second.Warnings) {
		t.Error("warnings differ between identical builds")
	}
	if first.Stats != second.Stats {
		t.Errorf("stats differ: %+v vs %+v", first.Stats, second.Stats)
	}
}

func TestBuildPreview_RequiresNameColumn(t *testing.T) {
	m := NewMapping()
	if _, err := BuildPreview(previewSheet(), m); !errors.Is(err, ErrNameColumnUnset) {
		t.Errorf("err = %v, want ErrNameColumnUnset", err)
	}
	if _, err := BuildPreview(previewSheet(), nil); !errors.Is(err, ErrNameColumnUnset) {
		t.Errorf("nil mapping err = %v, want ErrNameColumnUnset", err)
	}
}

func TestPreview_EditNameKeepsFullNameDerived(t *testing.T) {
	p, _ := BuildPreview(previewSheet(), standardMapping())

	if err := p.EditName(0, "Janet", "Doe-Smith"); err != nil {
		t.Fatalf("EditName: %v", err)
	}
	if p.Staff[0].FullName != "Janet Doe-Smith" {
		t.Errorf("full name = %q, want %q", p.Staff[0].FullName, "Janet Doe-Smith")
	}
}

func TestPreview_EditDates(t *testing.T) {
	p, _ := BuildPreview(previewSheet(), standardMapping())

	if err := p.EditCredentialDate(0, 1, "2027-01-15"); err != nil {
		t.Fatalf("EditCredentialDate: %v", err)
	}
	if got := p.Staff[0].Credentials[1].ExpirationDate; got != "2027-01-15" {
		t.Errorf("expiration = %q", got)
	}

	if err := p.EditCompetencyDate(1, 0, "2025-04-01"); err != nil {
		t.Fatalf("EditCompetencyDate: %v", err)
	}
	if got := p.Staff[1].Competencies[0].CompletionDate; got != "2025-04-01" {
		t.Errorf("completion = %q", got)
	}
}

func TestPreview_RemoveCredentialAdjustsStatsOnce(t *testing.T) {
	p, _ := BuildPreview(previewSheet(), standardMapping())
	before := p.Stats

	if err := p.RemoveCredential(0, 0); err != nil {
		t.Fatalf("RemoveCredential: %v", err)
	}

	if len(p.Staff[0].Credentials) != 1 {
		t.Errorf("credentials = %v", p.Staff[0].Credentials)
	}
	if p.Stats.TotalCredentials != before.TotalCredentials-1 {
		t.Errorf("credential count = %d, want %d", p.Stats.TotalCredentials, before.TotalCredentials-1)
	}
	if p.Stats.TotalStaff != before.TotalStaff || p.Stats.TotalCompetencies != before.TotalCompetencies {
		t.Errorf("unrelated counters moved: %+v", p.Stats)
	}

	// The surviving credential keeps its identity.
	if p.Staff[0].Credentials[0].CredentialTypeID != 11 {
		t.Errorf("wrong credential removed: %v", p.Staff[0].Credentials)
	}
}

func TestPreview_RemoveCompetencyAdjustsStatsOnce(t *testing.T) {
	p, _ := BuildPreview(previewSheet(), standardMapping())

	if err := p.RemoveCompetency(1, 0); err != nil {
		t.Fatalf("RemoveCompetency: %v", err)
	}
	if p.Stats.TotalCompetencies != 0 {
		t.Errorf("competency count = %d, want 0", p.Stats.TotalCompetencies)
	}
}

func TestPreview_ExclusionAndCommitStats(t *testing.T) {
	p, _ := BuildPreview(previewSheet(), standardMapping())

	on, err := p.ToggleExcluded(0)
	if err != nil || !on {
		t.Fatalf("ToggleExcluded = %v, %v", on, err)
	}

	got := p.CommitStats()
	want := ImportStats{TotalStaff: 2, TotalCredentials: 2, TotalCompetencies: 1}
	if got != want {
		t.Errorf("commit stats = %+v, want %+v", got, want)
	}

	// Full stats are unchanged; exclusion hides nothing from the preview.
	if p.Stats.TotalStaff != 3 {
		t.Errorf("preview stats mutated by exclusion: %+v", p.Stats)
	}

	// Toggling back restores the row.
	off, err := p.ToggleExcluded(0)
	if err != nil || off {
		t.Fatalf("second toggle = %v, %v", off, err)
	}
	if got := p.CommitStats(); got != p.Stats {
		t.Errorf("commit stats after re-include = %+v, want %+v", got, p.Stats)
	}
}

func TestPreview_Summary(t *testing.T) {
	p, _ := BuildPreview(previewSheet(), standardMapping())

	if _, err := p.ToggleExcluded(2); err != nil {
		t.Fatalf("ToggleExcluded: %v", err)
	}

	got := p.Summary()
	// Jane is clean, John carries a typo warning, Pat is excluded.
	want := ReviewSummary{Ready: 1, Warned: 1, Excluded: 1}
	if got != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}
}

func TestPreview_RangeErrors(t *testing.T) {
	p, _ := BuildPreview(previewSheet(), standardMapping())

	checks := []error{
		p.EditName(99, "a", "b"),
		p.EditContact(-1, "x"),
		p.EditCredentialDate(0, 99, "2026-01-01"),
		p.EditCompetencyDate(0, 0, "2026-01-01"), // Jane has no competencies
		p.RemoveCredential(99, 0),
		p.RemoveCompetency(0, 5),
	}
	for i, err := range checks {
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("check %d: err = %v, want ErrOutOfRange", i, err)
		}
	}

	if _, err := p.ToggleExcluded(99); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("toggle err = %v, want ErrOutOfRange", err)
	}
}
