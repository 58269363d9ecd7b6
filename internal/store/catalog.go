package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mkellner/credtrack/internal/roster"
)

// defaultRenewalMonths is assigned to newly created expiring types until a
// coordinator tunes it; most certifications in practice renew on two years.
const defaultRenewalMonths = 24

// ListCredentialTypes returns the whole catalog in name order.
func (s *Store) ListCredentialTypes(ctx context.Context) ([]roster.CredentialType, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, category, renewal_period_months, is_expiring
		FROM credential_types
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list credential types: %w", err)
	}
	defer rows.Close()

	var types []roster.CredentialType
	for rows.Next() {
		var t roster.CredentialType
		var renewal pgtype.Int4
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &renewal, &t.IsExpiring); err != nil {
			return nil, fmt.Errorf("scan credential type: %w", err)
		}
		if renewal.Valid {
			t.RenewalPeriodMonths = int(renewal.Int32)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credential types: %w", err)
	}
	return types, nil
}

// CreateCredentialType inserts a catalog record and returns its id.
func (s *Store) CreateCredentialType(ctx context.Context, p roster.NewCredentialType) (int64, error) {
	renewal := pgtype.Int4{Valid: false}
	if p.IsExpiring {
		renewal = pgtype.Int4{Int32: defaultRenewalMonths, Valid: true}
	}

	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO credential_types (name, category, renewal_period_months, is_expiring)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		p.Name, p.Category, renewal, p.IsExpiring,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create credential type: %w", err)
	}
	return id, nil
}
