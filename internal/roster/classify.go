package roster

// classify.go decides what a spreadsheet column holds from its header text
// alone. Classification is an ordered rule table evaluated first-match-wins,
// so the same header always classifies the same way regardless of the data
// underneath it.

import (
	"regexp"
	"strings"
)

// credentialRule maps a header pattern to a renewing credential suggestion.
type credentialRule struct {
	pattern  *regexp.Regexp
	name     string
	category string
}

// credentialRules match expiration-bearing columns. Order matters: the first
// hit wins, so the specific certification acronyms sit above the broad
// license match.
var credentialRules = []credentialRule{
	{regexp.MustCompile(`(?i)\bACLS\b`), "ACLS", "Certification"},
	{regexp.MustCompile(`(?i)\bBLS\b`), "BLS", "Certification"},
	{regexp.MustCompile(`(?i)\bPALS\b`), "PALS", "Certification"},
	{regexp.MustCompile(`(?i)\bNRP\b`), "NRP", "Certification"},
	{regexp.MustCompile(`(?i)\bCPR\b`), "CPR", "Certification"},
	{regexp.MustCompile(`(?i)\bRCIS\b`), "RCIS Registry", "Certification"},
	{regexp.MustCompile(`(?i)licen[cs]e|licensure`), "Professional License", "License"},
	{regexp.MustCompile(`(?i)fit\s*test`), "Respirator Fit Test", "Health Requirement"},
	{regexp.MustCompile(`(?i)\bTB\b|tuberculosis|ppd`), "TB Screening", "Health Requirement"},
	{regexp.MustCompile(`(?i)\bflu\b|influenza`), "Influenza Vaccination", "Health Requirement"},
}

// competencyKeywords is the fixed vocabulary of procedure and device names
// that mark one-time competency columns. Substring match, case-insensitive.
var competencyKeywords = []string{
	"iabp",
	"impella",
	"balloon pump",
	"sheath removal",
	"temporary pacemaker",
	"pacemaker",
	"defibrillat",
	"rotablator",
	"ivus",
	"ffr",
	"moderate sedation",
	"conscious sedation",
	"contrast injector",
	"act machine",
	"point of care",
	"glucometer",
	"ventilator",
	"telemetry",
	"restraint",
	"annual skills",
	"orientation",
	"competency",
}

// Classify maps a column header to a classification, or nil when the header
// matches nothing. Unclassified columns are ignored by default but remain
// selectable by hand in the mapping.
func Classify(header string) *Classification {
	h := strings.TrimSpace(header)
	if h == "" {
		return nil
	}

	for _, rule := range credentialRules {
		if rule.pattern.MatchString(h) {
			return &Classification{
				Type:          TypeCredential,
				SuggestedName: rule.name,
				Category:      rule.category,
				IsExpiring:    true,
			}
		}
	}

	lower := strings.ToLower(h)
	for _, kw := range competencyKeywords {
		if strings.Contains(lower, kw) {
			return &Classification{
				Type:          TypeCompetency,
				SuggestedName: h,
				Category:      "Competency",
				IsExpiring:    false,
			}
		}
	}

	return nil
}

// MatchCredentialType finds an existing catalog record for a classification:
// exact name match first, then containment either way. The first catalog
// entry in list order wins ambiguous matches.
func MatchCredentialType(c *Classification, types []CredentialType) (int64, bool) {
	if c == nil {
		return 0, false
	}

	want := strings.ToLower(strings.TrimSpace(c.SuggestedName))
	if want == "" {
		return 0, false
	}

	for _, t := range types {
		if strings.EqualFold(t.Name, c.SuggestedName) {
			return t.ID, true
		}
	}
	for _, t := range types {
		have := strings.ToLower(t.Name)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return t.ID, true
		}
	}
	return 0, false
}
