package roster

// dates.go normalizes the date representations found in roster exports:
// spreadsheet serial numbers, native date cells, and free-text strings in
// whatever format the coordinator happened to type. Every repair or guess is
// reported through the caller's warning sink; nothing here ever panics.

import (
	"regexp"
	"time"

	"github.com/mkellner/credtrack/internal/workbook"
)

// ISODate is the canonical date format produced by normalization.
const ISODate = "2006-01-02"

// serialEpoch is the Excel 1900 date system epoch. Day 1 is 1900-01-01, with
// the epoch shifted to 1899-12-30 to absorb the historical 1900 leap-year bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxDateSerial is the serial for 9999-12-31; anything past it is garbage.
const maxDateSerial = 2958465

// dateTypoPattern matches M/D immediately followed by a 4-digit year with the
// second separator missing, e.g. "6/302025". A common fast-typing mistake.
var dateTypoPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(\d{4})$`)

// shortDatePattern matches M/D/YY and M/D/YYYY for the explicit fallback.
var shortDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)

// dateLayouts are the free-text formats tried by the generic parse, most
// common first. Two-digit years are excluded here; they go through the
// explicit pivot fallback instead.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-2006",
	"2006-01-02",
	"2006/01/02",
	"1.2.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// NormalizeDate converts a raw cell value to a canonical YYYY-MM-DD string.
// It returns "" when the cell is empty or unparseable; unparseable input also
// appends exactly one warning to sink. The sink is only ever appended to.
func NormalizeDate(cell workbook.Cell, sink *Warnings) string {
	switch cell.Kind {
	case workbook.KindEmpty:
		return ""
	case workbook.KindNumber:
		return normalizeSerial(cell.Number, sink)
	case workbook.KindDate:
		return cell.Time.UTC().Format(ISODate)
	default:
		return normalizeText(cell.Text, sink)
	}
}

// normalizeSerial converts an Excel date serial. The fractional part is the
// time of day and is dropped.
func normalizeSerial(serial float64, sink *Warnings) string {
	if serial < 1 || serial > maxDateSerial {
		sink.Addf("Could not parse Excel date number: %v", serial)
		return ""
	}
	t := serialEpoch.AddDate(0, 0, int(serial))
	return t.Format(ISODate)
}

func normalizeText(s string, sink *Warnings) string {
	// Typo repair first: reinsert the missing slash and reparse.
	if m := dateTypoPattern.FindStringSubmatch(s); m != nil {
		fixed := m[1] + "/" + m[2] + "/" + m[3]
		if t, err := time.Parse("1/2/2006", fixed); err == nil {
			sink.Addf("Fixed date typo: %q -> %q", s, fixed)
			return t.Format(ISODate)
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISODate)
		}
	}

	if d, ok := parseShortDate(s); ok {
		return d
	}

	sink.Addf("Could not parse date: %q", s)
	return ""
}

// parseShortDate handles the explicit M/D/YY (and M/D/YYYY) fallback.
// Two-digit years pivot at 50: years above 50 land in the 1900s, the rest in
// the 2000s. The pivot is a fixed convention carried over from the systems
// these sheets come out of; do not replace it with a sliding window.
func parseShortDate(s string) (string, bool) {
	m := shortDatePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	month := atoi(m[1])
	day := atoi(m[2])
	year := atoi(m[3])
	if len(m[3]) == 2 {
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (13/45 becomes a different month/day);
	// reject anything that did not round-trip.
	if int(t.Month()) != month || t.Day() != day || t.Year() != year {
		return "", false
	}
	return t.Format(ISODate), true
}

// atoi parses digits already validated by a pattern match.
func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
