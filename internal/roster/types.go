// Package roster converts loosely structured staff roster spreadsheets into
// normalized staff, credential, and competency records.
//
// The workflow has three phases driven by one user session: analyze the sheet
// (detect role groups and classify columns), build a reviewable staging
// dataset from a user-adjusted column mapping, then commit the possibly
// edited dataset to storage. This package has no HTTP or UI dependencies.
package roster

import (
	"context"
	"fmt"
	"strings"
)

// ColumnType says whether a mapped column produces renewing credentials or
// one-time competencies.
type ColumnType string

const (
	TypeCredential ColumnType = "credential"
	TypeCompetency ColumnType = "competency"
)

// Classification is the classifier's verdict for one column header.
type Classification struct {
	Type          ColumnType `json:"type"`
	SuggestedName string     `json:"suggestedName"`
	Category      string     `json:"category"`
	IsExpiring    bool       `json:"isExpiring"`
}

// ColumnAnalysis describes one spreadsheet column after the analyze phase.
// Immutable once produced.
type ColumnAnalysis struct {
	Index          int             `json:"index"`
	Header         string          `json:"header"`
	HasData        bool            `json:"hasData"`
	SampleValues   []string        `json:"sampleValues,omitempty"`
	Classification *Classification `json:"classification,omitempty"`

	// MatchedTypeID is set when the suggested name matches an existing
	// credential type in the catalog, so the mapping can be prefilled.
	MatchedTypeID int64 `json:"matchedTypeId,omitempty"`
}

// CredentialType is a catalog record. IDs are opaque to this package.
type CredentialType struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	RenewalPeriodMonths int    `json:"renewalPeriodMonths,omitempty"`
	IsExpiring          bool   `json:"isExpiring"`
}

// NewCredentialType holds the fields needed to create a catalog record.
type NewCredentialType struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	IsExpiring bool   `json:"isExpiring"`
}

// StagedCredential is a renewing-credential assignment pending creation.
type StagedCredential struct {
	CredentialTypeID int64  `json:"credentialTypeId"`
	ExpirationDate   string `json:"expirationDate,omitempty"`
}

// StagedCompetency is a one-time competency completion pending creation.
type StagedCompetency struct {
	CredentialTypeID int64  `json:"credentialTypeId"`
	CompletionDate   string `json:"completionDate,omitempty"`
}

// StagedStaff is one reviewer-editable staff row of the staging dataset.
// FullName is derived from FirstName and LastName; edits must go through
// Preview.EditName so it stays consistent.
type StagedStaff struct {
	FirstName     string             `json:"firstName"`
	LastName      string             `json:"lastName"`
	FullName      string             `json:"fullName"`
	Role          string             `json:"role"`
	Contact       string             `json:"contact,omitempty"`
	LicenseNumber string             `json:"licenseNumber,omitempty"`
	Credentials   []StagedCredential `json:"credentials"`
	Competencies  []StagedCompetency `json:"competencies"`
	Warnings      []string           `json:"warnings,omitempty"`
	SourceRow     int                `json:"sourceRowNumber"`
}

// joinName derives the display name from its parts.
func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// ImportWarning aggregates one staging row's warnings for display.
type ImportWarning struct {
	Row      int      `json:"row"`
	Name     string   `json:"name"`
	Warnings []string `json:"warnings"`
}

// ImportStats are running counts over the staging dataset.
type ImportStats struct {
	TotalStaff        int `json:"totalStaff"`
	TotalCredentials  int `json:"totalCredentials"`
	TotalCompetencies int `json:"totalCompetencies"`
}

// CommitError reports one failed persistence operation, attributed to the
// staff identity it belonged to.
type CommitError struct {
	Staff string `json:"staff"`
	Error string `json:"error"`
}

// CommitResult summarizes what the commit pipeline actually created.
// Produced once per commit and never mutated afterward.
type CommitResult struct {
	StaffCreated         int           `json:"staffCreated"`
	CredentialsAssigned  int           `json:"credentialsAssigned"`
	CompetenciesAssigned int           `json:"competenciesAssigned"`
	Errors               []CommitError `json:"errors"`
}

// NewStaff holds the staff fields handed to the persistence layer.
type NewStaff struct {
	FirstName     string
	LastName      string
	FullName      string
	Role          string
	Contact       string
	LicenseNumber string
}

// Catalog is the external credential-type catalog.
type Catalog interface {
	ListCredentialTypes(ctx context.Context) ([]CredentialType, error)
	CreateCredentialType(ctx context.Context, p NewCredentialType) (int64, error)
}

// Persister is the external staff/assignment store. Each call may fail
// independently; the commit pipeline isolates failures per row.
type Persister interface {
	CreateStaff(ctx context.Context, rec NewStaff) (int64, error)
	CreateCredentialAssignment(ctx context.Context, staffID int64, a StagedCredential) error
	CreateCompetencyAssignment(ctx context.Context, staffID int64, a StagedCompetency) error
}

// Warnings is an append-only sink for recoverable parse diagnostics. Parsing
// helpers receive one explicitly; nothing in this package keeps a shared log.
type Warnings struct {
	msgs []string
}

// Add appends one warning message.
func (w *Warnings) Add(msg string) {
	w.msgs = append(w.msgs, msg)
}

// Addf appends one formatted warning message.
func (w *Warnings) Addf(format string, args ...any) {
	w.msgs = append(w.msgs, fmt.Sprintf(format, args...))
}

// Messages returns the collected warnings in append order.
func (w *Warnings) Messages() []string {
	return w.msgs
}

// Len returns the number of collected warnings.
func (w *Warnings) Len() int {
	return len(w.msgs)
}
