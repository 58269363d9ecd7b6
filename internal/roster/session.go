package roster

// session.go owns the in-progress import sessions. One session spans the
// analyze, preview, and confirm phases of a single upload; its mapping and
// staging dataset are discarded unconditionally when the session closes,
// whether committed or cancelled.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkellner/credtrack/internal/workbook"
)

// ErrSessionNotFound means the session id is unknown, expired, or closed.
var ErrSessionNotFound = errors.New("import session not found")

// SessionTTL is how long an idle session is kept before it is discarded.
var SessionTTL = 30 * time.Minute

// Session is one in-progress import. Its fields are guarded by mu; callers
// go through Service methods rather than touching the session directly.
type Session struct {
	ID        string
	FileName  string
	CreatedAt time.Time

	mu       sync.Mutex
	rows     []workbook.Row
	analysis *Analysis
	mapping  *Mapping
	preview  *Preview
}

// Service is the entry point for the import workflow. It holds the external
// collaborators and the registry of open sessions.
type Service struct {
	catalog     Catalog
	persister   Persister
	logger      *slog.Logger
	concurrency int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService wires a Service to its catalog and persistence collaborators.
// commitConcurrency < 1 uses DefaultCommitConcurrency.
func NewService(catalog Catalog, persister Persister, logger *slog.Logger, commitConcurrency int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:     catalog,
		persister:   persister,
		logger:      logger,
		concurrency: commitConcurrency,
		sessions:    make(map[string]*Session),
	}
}

// Analyze reads the uploaded file, produces the column analysis, and opens a
// session for it. The returned session id keys all subsequent phase calls.
func (s *Service) Analyze(ctx context.Context, fileName string, data []byte) (string, *Analysis, error) {
	rows, err := workbook.Read(fileName, data)
	if err != nil {
		return "", nil, err
	}

	types, err := s.catalog.ListCredentialTypes(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("list credential types: %w", err)
	}

	analysis, err := Analyze(rows, types)
	if err != nil {
		return "", nil, err
	}

	sess := &Session{
		ID:        uuid.New().String(),
		FileName:  fileName,
		CreatedAt: time.Now(),
		rows:      rows,
		analysis:  analysis,
		mapping:   NewMapping(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.expireAfter(sess.ID, SessionTTL)

	s.logger.Info("import analyzed",
		"session_id", sess.ID,
		"file", fileName,
		"columns", len(analysis.Columns),
		"data_rows", analysis.TotalDataRows,
	)
	return sess.ID, analysis, nil
}

// expireAfter discards the session after the TTL unless it closed earlier.
func (s *Service) expireAfter(id string, ttl time.Duration) {
	time.AfterFunc(ttl, func() {
		s.mu.Lock()
		_, ok := s.sessions[id]
		delete(s.sessions, id)
		s.mu.Unlock()
		if ok {
			s.logger.Info("import session expired", "session_id", id)
		}
	})
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// AnalysisFor returns the stored analysis for a session.
func (s *Service) AnalysisFor(id string) (*Analysis, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.analysis, nil
}

// Mapping returns the session's current mapping state.
func (s *Service) Mapping(id string) (MappingState, error) {
	sess, err := s.session(id)
	if err != nil {
		return MappingState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.mapping.State(), nil
}

// UpdateMapping replaces the session's mapping. The mapping survives across
// the analyze->preview transition; an existing preview is invalidated since
// it was built from the old mapping.
func (s *Service) UpdateMapping(id string, st MappingState) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.mapping.Apply(st)
	sess.preview = nil
	return nil
}

// CreateAndBindType atomically creates a credential type and binds a column
// to it. On catalog failure no binding is left behind.
func (s *Service) CreateAndBindType(ctx context.Context, id string, col int, t ColumnType, p NewCredentialType) (int64, error) {
	sess, err := s.session(id)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	typeID, err := sess.mapping.CreateAndBind(ctx, s.catalog, col, t, p)
	if err != nil {
		return 0, err
	}
	sess.preview = nil
	return typeID, nil
}

// BuildPreview builds (or rebuilds) the session's staging dataset from the
// stored rows and the current mapping. Rebuilding discards earlier edits.
func (s *Service) BuildPreview(id string) (*Preview, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	preview, err := BuildPreview(sess.rows, sess.mapping)
	if err != nil {
		return nil, err
	}
	sess.preview = preview

	s.logger.Info("preview built",
		"session_id", id,
		"staff", preview.Stats.TotalStaff,
		"credentials", preview.Stats.TotalCredentials,
		"competencies", preview.Stats.TotalCompetencies,
		"warned_rows", len(preview.Warnings),
	)
	return preview, nil
}

// ErrNoPreview means an edit or commit was requested before a preview was
// built for the session.
var ErrNoPreview = errors.New("no preview built for this import session")

// EditPreview runs fn against the session's staging dataset while holding the
// session lock. All reviewer edits funnel through here.
func (s *Service) EditPreview(id string, fn func(*Preview) error) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.preview == nil {
		return ErrNoPreview
	}
	return fn(sess.preview)
}

// PreviewFor returns the session's current staging dataset.
func (s *Service) PreviewFor(id string) (*Preview, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.preview == nil {
		return nil, ErrNoPreview
	}
	return sess.preview, nil
}

// Commit persists the session's staging dataset, skipping excluded rows, and
// closes the session. The session is discarded even when some rows fail;
// partial results are reported, never silently retried.
func (s *Service) Commit(ctx context.Context, id string) (*CommitResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.preview == nil {
		sess.mu.Unlock()
		return nil, ErrNoPreview
	}
	staff := sess.preview.Staff
	excluded := sess.preview.Excluded()
	sess.mu.Unlock()

	committer := NewCommitter(s.persister, s.logger.With("session_id", id), s.concurrency)
	result := committer.Commit(ctx, staff, excluded)

	s.close(id)
	return result, nil
}

// Cancel discards a session and everything staged in it.
func (s *Service) Cancel(id string) error {
	if _, err := s.session(id); err != nil {
		return err
	}
	s.close(id)
	s.logger.Info("import session cancelled", "session_id", id)
	return nil
}

// ListCredentialTypes exposes the catalog to the mapping UI.
func (s *Service) ListCredentialTypes(ctx context.Context) ([]CredentialType, error) {
	return s.catalog.ListCredentialTypes(ctx)
}
