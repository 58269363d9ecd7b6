package roster

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "duplicate key",
			err:      errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode: "DB001",
		},
		{
			name:     "unique constraint",
			err:      errors.New("ERROR: unique constraint violated"),
			wantCode: "DB002",
		},
		{
			name:     "foreign key",
			err:      errors.New("violates foreign key constraint"),
			wantCode: "DB003",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode: "DB004",
		},
		{
			name:     "connection reset",
			err:      errors.New("read tcp: connection reset by peer"),
			wantCode: "DB005",
		},
		{
			name:     "timeout",
			err:      errors.New("context deadline exceeded (timeout)"),
			wantCode: "DB006",
		},
		{
			name:     "unsupported file",
			err:      errors.New("unsupported file type: .pdf"),
			wantCode: "FILE001",
		},
		{
			name:     "csv parse failure",
			err:      errors.New("parse CSV: record on line 3: wrong number of fields"),
			wantCode: "FILE002",
		},
		{
			name:     "workbook open failure",
			err:      errors.New("open workbook: zip: not a valid zip file"),
			wantCode: "FILE002",
		},
		{
			name:     "missing header row",
			err:      ErrNoHeaderRow,
			wantCode: "FILE003",
		},
		{
			name:     "missing name column",
			err:      ErrNameColumnUnset,
			wantCode: "MAP001",
		},
		{
			name:     "expired session",
			err:      ErrSessionNotFound,
			wantCode: "SES001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "GEN001",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("DUPLICATE KEY value violates"),
			wantCode: "DB001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("non-nil error must map to a message")
			}
			if tt.err != nil && got.Action == "" {
				t.Error("non-nil error must map to an action")
			}
		})
	}
}

func TestMapError_FirstMatchWins(t *testing.T) {
	// "duplicate key" errors usually also mention "unique constraint"; the
	// more specific DB001 pattern sits first.
	got := MapError(errors.New("duplicate key value violates unique constraint \"staff_pkey\""))
	if got.Code != "DB001" {
		t.Errorf("code = %q, want DB001", got.Code)
	}
}
