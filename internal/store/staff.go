package store

import (
	"context"
	"fmt"

	"github.com/mkellner/credtrack/internal/roster"
)

// CreateStaff inserts one staff record and returns its id.
func (s *Store) CreateStaff(ctx context.Context, rec roster.NewStaff) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO staff (first_name, last_name, full_name, role, contact, license_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		toPgText(rec.FirstName),
		toPgText(rec.LastName),
		rec.FullName,
		rec.Role,
		toPgText(rec.Contact),
		toPgText(rec.LicenseNumber),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create staff %q: %w", rec.FullName, err)
	}
	return id, nil
}

// CreateCredentialAssignment inserts one renewing-credential assignment.
func (s *Store) CreateCredentialAssignment(ctx context.Context, staffID int64, a roster.StagedCredential) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO staff_credentials (staff_id, credential_type_id, expiration_date)
		VALUES ($1, $2, $3)`,
		staffID, a.CredentialTypeID, toPgDate(a.ExpirationDate),
	)
	if err != nil {
		return fmt.Errorf("assign credential %d: %w", a.CredentialTypeID, err)
	}
	return nil
}

// CreateCompetencyAssignment inserts one competency completion.
func (s *Store) CreateCompetencyAssignment(ctx context.Context, staffID int64, a roster.StagedCompetency) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO staff_competencies (staff_id, credential_type_id, completion_date)
		VALUES ($1, $2, $3)`,
		staffID, a.CredentialTypeID, toPgDate(a.CompletionDate),
	)
	if err != nil {
		return fmt.Errorf("assign competency %d: %w", a.CredentialTypeID, err)
	}
	return nil
}
