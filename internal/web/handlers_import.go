package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mkellner/credtrack/internal/logging"
	"github.com/mkellner/credtrack/internal/roster"
)

// analyzeResponse is the phase-1 payload: the session that now owns the
// uploaded sheet plus the column analysis to drive the mapping UI.
type analyzeResponse struct {
	SessionID string           `json:"sessionId"`
	FileName  string           `json:"fileName"`
	Analysis  *roster.Analysis `json:"analysis"`
}

// previewResponse is the staging dataset plus its review summary.
type previewResponse struct {
	Staff       []roster.StagedStaff   `json:"staff"`
	Warnings    []roster.ImportWarning `json:"warnings"`
	Stats       roster.ImportStats     `json:"stats"`
	CommitStats roster.ImportStats     `json:"commitStats"`
	Summary     roster.ReviewSummary   `json:"summary"`
}

func toPreviewResponse(p *roster.Preview) previewResponse {
	return previewResponse{
		Staff:       p.Staff,
		Warnings:    p.Warnings,
		Stats:       p.Stats,
		CommitStats: p.CommitStats(),
		Summary:     p.Summary(),
	}
}

// handleListCredentialTypes returns the catalog for the mapping UI.
func (s *Server) handleListCredentialTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.service.ListCredentialTypes(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credentialTypes": types})
}

// handleAnalyze accepts the roster upload and runs the analyze phase.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	sessionID, analysis, err := s.service.Analyze(r.Context(), header.Filename, data)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	logging.FromContext(r.Context()).Info("roster analyzed",
		"session_id", sessionID,
		"file", header.Filename,
		"data_rows", analysis.TotalDataRows,
	)
	writeJSON(w, http.StatusCreated, analyzeResponse{
		SessionID: sessionID,
		FileName:  header.Filename,
		Analysis:  analysis,
	})
}

// handleGetAnalysis re-serves the stored analysis for a session.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.service.AnalysisFor(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleGetMapping returns the session's current column mapping.
func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Mapping(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleUpdateMapping replaces the session's column mapping.
func (s *Server) handleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	var st roster.MappingState
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid mapping payload")
		return
	}

	if err := s.service.UpdateMapping(chi.URLParam(r, "sessionID"), st); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	// Echo the applied state so clients see exclusivity resolution.
	applied, err := s.service.Mapping(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, applied)
}

// createTypeRequest asks for a new credential type bound to a column.
type createTypeRequest struct {
	Column     int               `json:"column"`
	Type       roster.ColumnType `json:"type"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	IsExpiring bool              `json:"isExpiring"`
}

// handleCreateAndBindType creates a credential type and binds the column to
// it atomically.
func (s *Server) handleCreateAndBindType(w http.ResponseWriter, r *http.Request) {
	var req createTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Column < 0 {
		writeError(w, http.StatusBadRequest, "column must be non-negative")
		return
	}
	if req.Type != roster.TypeCredential && req.Type != roster.TypeCompetency {
		writeError(w, http.StatusBadRequest, "type must be credential or competency")
		return
	}

	id, err := s.service.CreateAndBindType(r.Context(), chi.URLParam(r, "sessionID"), req.Column, req.Type, roster.NewCredentialType{
		Name:       req.Name,
		Category:   req.Category,
		IsExpiring: req.IsExpiring,
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleBuildPreview runs the preview phase over the stored sheet.
func (s *Server) handleBuildPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.service.BuildPreview(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, toPreviewResponse(preview))
}

// handleGetPreview re-serves the current staging dataset with edits applied.
func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.service.PreviewFor(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, toPreviewResponse(preview))
}

// staffEditRequest carries field-level edits to one staged staff row. Nil
// fields are left unchanged.
type staffEditRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Contact   *string `json:"contact"`
	Role      *string `json:"role"`
}

// handleEditStaff applies field edits to one staged row. Name edits go
// through the preview so the derived full name stays consistent.
func (s *Server) handleEditStaff(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}

	var req staffEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	var edited roster.StagedStaff
	err := s.service.EditPreview(chi.URLParam(r, "sessionID"), func(p *roster.Preview) error {
		if index >= len(p.Staff) {
			return fmt.Errorf("staff index %d (0-%d): %w", index, len(p.Staff)-1, roster.ErrOutOfRange)
		}
		if req.FirstName != nil || req.LastName != nil {
			first := p.Staff[index].FirstName
			last := p.Staff[index].LastName
			if req.FirstName != nil {
				first = *req.FirstName
			}
			if req.LastName != nil {
				last = *req.LastName
			}
			if err := p.EditName(index, first, last); err != nil {
				return err
			}
		}
		if req.Contact != nil {
			if err := p.EditContact(index, *req.Contact); err != nil {
				return err
			}
		}
		if req.Role != nil {
			if err := p.EditRole(index, *req.Role); err != nil {
				return err
			}
		}
		edited = p.Staff[index]
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, edited)
}

// dateEditRequest carries a replacement date in canonical form.
type dateEditRequest struct {
	Date string `json:"date"`
}

func validEditDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// handleEditCredentialDate replaces one staged credential's expiration date.
func (s *Server) handleEditCredentialDate(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	item, ok := pathIndex(w, r, "item")
	if !ok {
		return
	}

	var req dateEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validEditDate(req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD or empty")
		return
	}

	err := s.service.EditPreview(chi.URLParam(r, "sessionID"), func(p *roster.Preview) error {
		return p.EditCredentialDate(index, item, req.Date)
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEditCompetencyDate replaces one staged competency's completion date.
func (s *Server) handleEditCompetencyDate(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	item, ok := pathIndex(w, r, "item")
	if !ok {
		return
	}

	var req dateEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validEditDate(req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD or empty")
		return
	}

	err := s.service.EditPreview(chi.URLParam(r, "sessionID"), func(p *roster.Preview) error {
		return p.EditCompetencyDate(index, item, req.Date)
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveCredential drops one staged credential and returns the updated
// stats so clients can refresh their counters.
func (s *Server) handleRemoveCredential(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	item, ok := pathIndex(w, r, "item")
	if !ok {
		return
	}

	var stats roster.ImportStats
	err := s.service.EditPreview(chi.URLParam(r, "sessionID"), func(p *roster.Preview) error {
		if err := p.RemoveCredential(index, item); err != nil {
			return err
		}
		stats = p.Stats
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

// handleRemoveCompetency drops one staged competency.
func (s *Server) handleRemoveCompetency(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	item, ok := pathIndex(w, r, "item")
	if !ok {
		return
	}

	var stats roster.ImportStats
	err := s.service.EditPreview(chi.URLParam(r, "sessionID"), func(p *roster.Preview) error {
		if err := p.RemoveCompetency(index, item); err != nil {
			return err
		}
		stats = p.Stats
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

// handleToggleExcluded flips a staff row's exclusion flag.
func (s *Server) handleToggleExcluded(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}

	var excluded bool
	var summary roster.ReviewSummary
	err := s.service.EditPreview(chi.URLParam(r, "sessionID"), func(p *roster.Preview) error {
		var err error
		excluded, err = p.ToggleExcluded(index)
		if err != nil {
			return err
		}
		summary = p.Summary()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"excluded": excluded, "summary": summary})
}

// handleCommit persists the staging dataset and closes the session.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	result, err := s.service.Commit(r.Context(), sessionID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("import committed",
		"session_id", sessionID,
		"staff_created", result.StaffCreated,
		"errors", len(result.Errors),
	)
	writeJSON(w, http.StatusOK, result)
}

// handleCancel discards the session.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Cancel(chi.URLParam(r, "sessionID")); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathIndex parses a non-negative integer URL parameter, writing a 400 on
// failure.
func pathIndex(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s parameter", name))
		return 0, false
	}
	return v, true
}
