package roster

// commit.go persists the reviewed staging dataset. Rows are independent of
// each other and run with bounded parallelism; within one row, staff creation
// must succeed and yield an id before any of that row's assignments are
// attempted. A failed row never stops the rest.

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultCommitConcurrency is how many staff rows are persisted in flight
// when the committer is not configured otherwise.
const DefaultCommitConcurrency = 4

// Committer runs the commit phase against a Persister.
type Committer struct {
	persister   Persister
	logger      *slog.Logger
	concurrency int
}

// NewCommitter returns a Committer. concurrency < 1 falls back to
// DefaultCommitConcurrency; 1 commits rows strictly sequentially.
func NewCommitter(p Persister, logger *slog.Logger, concurrency int) *Committer {
	if concurrency < 1 {
		concurrency = DefaultCommitConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Committer{persister: p, logger: logger, concurrency: concurrency}
}

// rowOutcome is the result of persisting one staff row.
type rowOutcome struct {
	staffCreated         bool
	credentialsAssigned  int
	competenciesAssigned int
	errors               []CommitError
}

// Commit persists every non-excluded staff row and returns what was actually
// created. Per-row results are collected positionally and flattened in input
// order afterward, so the errors sequence is deterministic regardless of how
// rows interleave.
func (c *Committer) Commit(ctx context.Context, staff []StagedStaff, excluded map[int]bool) *CommitResult {
	outcomes := make([]rowOutcome, len(staff))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i := range staff {
		if excluded[i] {
			continue
		}
		g.Go(func() error {
			outcomes[i] = c.commitRow(ctx, staff[i])
			return nil
		})
	}
	g.Wait()

	res := &CommitResult{}
	for i := range staff {
		o := outcomes[i]
		if o.staffCreated {
			res.StaffCreated++
		}
		res.CredentialsAssigned += o.credentialsAssigned
		res.CompetenciesAssigned += o.competenciesAssigned
		res.Errors = append(res.Errors, o.errors...)
	}

	c.logger.Info("commit finished",
		"staff_created", res.StaffCreated,
		"credentials_assigned", res.CredentialsAssigned,
		"competencies_assigned", res.CompetenciesAssigned,
		"errors", len(res.Errors),
	)
	return res
}

// commitRow creates one staff record and its assignments. When staff creation
// fails the row contributes a single error and none of its assignments run;
// when an individual assignment fails it is skipped and reported while the
// staff record is kept.
func (c *Committer) commitRow(ctx context.Context, rec StagedStaff) rowOutcome {
	var o rowOutcome

	staffID, err := c.persister.CreateStaff(ctx, NewStaff{
		FirstName:     rec.FirstName,
		LastName:      rec.LastName,
		FullName:      rec.FullName,
		Role:          rec.Role,
		Contact:       rec.Contact,
		LicenseNumber: rec.LicenseNumber,
	})
	if err != nil {
		c.logger.Warn("staff creation failed", "staff", rec.FullName, "row", rec.SourceRow, "error", err)
		o.errors = append(o.errors, CommitError{Staff: rec.FullName, Error: err.Error()})
		return o
	}
	o.staffCreated = true

	for _, cr := range rec.Credentials {
		if err := c.persister.CreateCredentialAssignment(ctx, staffID, cr); err != nil {
			c.logger.Warn("credential assignment failed",
				"staff", rec.FullName, "credential_type", cr.CredentialTypeID, "error", err)
			o.errors = append(o.errors, CommitError{
				Staff: rec.FullName,
				Error: fmt.Sprintf("credential type %d: %v", cr.CredentialTypeID, err),
			})
			continue
		}
		o.credentialsAssigned++
	}

	for _, cp := range rec.Competencies {
		if err := c.persister.CreateCompetencyAssignment(ctx, staffID, cp); err != nil {
			c.logger.Warn("competency assignment failed",
				"staff", rec.FullName, "credential_type", cp.CredentialTypeID, "error", err)
			o.errors = append(o.errors, CommitError{
				Staff: rec.FullName,
				Error: fmt.Sprintf("competency type %d: %v", cp.CredentialTypeID, err),
			})
			continue
		}
		o.competenciesAssigned++
	}

	return o
}
