package roster

// mapping.go holds the coordinator-adjustable association between spreadsheet
// columns and extraction targets. A column binds to at most one target: the
// binding table is a single map from column index to a tagged variant, so
// credential/competency exclusivity holds by construction rather than by
// convention.

import (
	"context"
	"fmt"
	"sort"
)

type bindingKind int

const (
	bindCredential bindingKind = iota
	bindCompetency
)

type binding struct {
	kind   bindingKind
	typeID int64
}

// Mapping is the mutable column mapping owned by one import session. It is
// not safe for concurrent use; the owning session serializes access.
type Mapping struct {
	nameColumn    int
	contactColumn int
	licenseColumn int
	bindings      map[int]binding
}

// NewMapping returns a mapping with no columns assigned.
func NewMapping() *Mapping {
	return &Mapping{
		nameColumn:    -1,
		contactColumn: -1,
		licenseColumn: -1,
		bindings:      make(map[int]binding),
	}
}

// NameColumn returns the column holding the staff name, or -1 when unset.
func (m *Mapping) NameColumn() int { return m.nameColumn }

// SetNameColumn assigns the staff-name column.
func (m *Mapping) SetNameColumn(col int) { m.nameColumn = col }

// ContactColumn returns the contact column, or -1 when unset.
func (m *Mapping) ContactColumn() int { return m.contactColumn }

// SetContactColumn assigns the contact column.
func (m *Mapping) SetContactColumn(col int) { m.contactColumn = col }

// LicenseColumn returns the license-number column, or -1 when unset.
func (m *Mapping) LicenseColumn() int { return m.licenseColumn }

// SetLicenseColumn assigns the license-number column.
func (m *Mapping) SetLicenseColumn(col int) { m.licenseColumn = col }

// BindCredential maps col to a credential type as a renewing credential,
// clearing any competency binding the column had.
func (m *Mapping) BindCredential(col int, typeID int64) {
	m.bindings[col] = binding{kind: bindCredential, typeID: typeID}
}

// BindCompetency maps col to a credential type as a one-time competency,
// clearing any credential binding the column had.
func (m *Mapping) BindCompetency(col int, typeID int64) {
	m.bindings[col] = binding{kind: bindCompetency, typeID: typeID}
}

// Unbind removes any binding for col.
func (m *Mapping) Unbind(col int) {
	delete(m.bindings, col)
}

// Credentials returns a copy of the column→type map for renewing credentials.
func (m *Mapping) Credentials() map[int]int64 {
	return m.byKind(bindCredential)
}

// Competencies returns a copy of the column→type map for competencies.
func (m *Mapping) Competencies() map[int]int64 {
	return m.byKind(bindCompetency)
}

func (m *Mapping) byKind(kind bindingKind) map[int]int64 {
	out := make(map[int]int64)
	for col, b := range m.bindings {
		if b.kind == kind {
			out[col] = b.typeID
		}
	}
	return out
}

// columnsByKind returns the bound columns of one kind in ascending order, so
// extraction and its warnings are reproducible.
func (m *Mapping) columnsByKind(kind bindingKind) []int {
	var cols []int
	for col, b := range m.bindings {
		if b.kind == kind {
			cols = append(cols, col)
		}
	}
	sort.Ints(cols)
	return cols
}

// CreateAndBind creates a credential type in the catalog and binds col to it
// in one step. The catalog create happens first; if it fails, the mapping is
// left untouched, so a binding can never point at a type that was not
// created.
func (m *Mapping) CreateAndBind(ctx context.Context, catalog Catalog, col int, t ColumnType, p NewCredentialType) (int64, error) {
	id, err := catalog.CreateCredentialType(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("create credential type %q: %w", p.Name, err)
	}

	switch t {
	case TypeCompetency:
		m.BindCompetency(col, id)
	default:
		m.BindCredential(col, id)
	}
	return id, nil
}

// MappingState is the wire representation of a Mapping.
type MappingState struct {
	NameColumn    int           `json:"nameColumn"`
	ContactColumn int           `json:"contactColumn"`
	LicenseColumn *int          `json:"licenseNumColumn,omitempty"`
	Credentials   map[int]int64 `json:"credentials"`
	Competencies  map[int]int64 `json:"competencies"`
}

// State snapshots the mapping for transport.
func (m *Mapping) State() MappingState {
	st := MappingState{
		NameColumn:    m.nameColumn,
		ContactColumn: m.contactColumn,
		Credentials:   m.Credentials(),
		Competencies:  m.Competencies(),
	}
	if m.licenseColumn >= 0 {
		col := m.licenseColumn
		st.LicenseColumn = &col
	}
	return st
}

// Apply replaces the mapping's contents with st. If a hand-built payload
// lists a column in both maps, the competency entry wins; the column ends up
// bound exactly once either way.
func (m *Mapping) Apply(st MappingState) {
	m.nameColumn = st.NameColumn
	m.contactColumn = st.ContactColumn
	m.licenseColumn = -1
	if st.LicenseColumn != nil {
		m.licenseColumn = *st.LicenseColumn
	}

	m.bindings = make(map[int]binding, len(st.Credentials)+len(st.Competencies))
	for col, id := range st.Credentials {
		m.BindCredential(col, id)
	}
	for col, id := range st.Competencies {
		m.BindCompetency(col, id)
	}
}
