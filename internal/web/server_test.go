package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellner/credtrack/internal/config"
	"github.com/mkellner/credtrack/internal/roster"
)

// memStore is an in-memory Catalog and Persister for handler tests.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	types  []roster.CredentialType
	staff  map[int64]roster.NewStaff
	creds  int
	comps  int
}

func newMemStore(types ...roster.CredentialType) *memStore {
	next := int64(1)
	for _, t := range types {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return &memStore{nextID: next, types: types, staff: make(map[int64]roster.NewStaff)}
}

func (m *memStore) ListCredentialTypes(ctx context.Context) ([]roster.CredentialType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types, nil
}

func (m *memStore) CreateCredentialType(ctx context.Context, p roster.NewCredentialType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.types = append(m.types, roster.CredentialType{ID: id, Name: p.Name, Category: p.Category, IsExpiring: p.IsExpiring})
	return id, nil
}

func (m *memStore) CreateStaff(ctx context.Context, rec roster.NewStaff) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.staff[id] = rec
	return id, nil
}

func (m *memStore) CreateCredentialAssignment(ctx context.Context, staffID int64, a roster.StagedCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds++
	return nil
}

func (m *memStore) CreateCompetencyAssignment(ctx context.Context, staffID int64, a roster.StagedCompetency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comps++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			RequestTimeout:  time.Minute,
			ShutdownTimeout: time.Second,
		},
		Import: config.ImportConfig{
			MaxFileSize:       1 << 20,
			CommitConcurrency: 1,
			SessionTTL:        time.Minute,
		},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := newMemStore(roster.CredentialType{
		ID: 5, Name: "BLS", Category: "Certification", IsExpiring: true,
	})
	service := roster.NewService(store, store, nil, 1)
	srv := NewServer(service, testConfig())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func uploadRoster(t *testing.T, ts *httptest.Server, fileName string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/imports", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

var rosterCSV = []byte(`Name,Phone,License #,BLS Exp
RN,,,
Jane Doe,555-0100,RN123,6/302026
John Roe,555-0101,RN124,1/15/2026
`)

func TestAPI_FullImportWorkflow(t *testing.T) {
	ts, store := newTestServer(t)

	// Upload and analyze.
	resp := uploadRoster(t, ts, "roster.csv", rosterCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	analyzed := decode[struct {
		SessionID string           `json:"sessionId"`
		FileName  string           `json:"fileName"`
		Analysis  *roster.Analysis `json:"analysis"`
	}](t, resp)
	require.NotEmpty(t, analyzed.SessionID)
	assert.Equal(t, "roster.csv", analyzed.FileName)
	require.Len(t, analyzed.Analysis.Columns, 4)
	assert.Equal(t, int64(5), analyzed.Analysis.Columns[3].MatchedTypeID)

	base := ts.URL + "/api/imports/" + analyzed.SessionID

	// Set the mapping.
	license := 2
	resp = doJSON(t, http.MethodPut, base+"/mapping", roster.MappingState{
		NameColumn:    0,
		ContactColumn: 1,
		LicenseColumn: &license,
		Credentials:   map[int]int64{3: 5},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	applied := decode[roster.MappingState](t, resp)
	assert.Equal(t, map[int]int64{3: 5}, applied.Credentials)

	// Build the preview.
	resp = doJSON(t, http.MethodPost, base+"/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decode[previewResponse](t, resp)
	require.Len(t, preview.Staff, 2)
	assert.Equal(t, "2026-06-30", preview.Staff[0].Credentials[0].ExpirationDate)
	assert.Equal(t, roster.ImportStats{TotalStaff: 2, TotalCredentials: 2}, preview.Stats)

	// Fix Jane's name.
	first := "Janet"
	resp = doJSON(t, http.MethodPatch, base+"/staff/0", staffEditRequest{FirstName: &first})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	edited := decode[roster.StagedStaff](t, resp)
	assert.Equal(t, "Janet Doe", edited.FullName)

	// Exclude John.
	resp = doJSON(t, http.MethodPost, base+"/staff/1/exclude", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	toggled := decode[struct {
		Excluded bool                 `json:"excluded"`
		Summary  roster.ReviewSummary `json:"summary"`
	}](t, resp)
	assert.True(t, toggled.Excluded)
	assert.Equal(t, 1, toggled.Summary.Excluded)

	// Commit.
	resp = doJSON(t, http.MethodPost, base+"/commit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[roster.CommitResult](t, resp)
	assert.Equal(t, 1, result.StaffCreated)
	assert.Equal(t, 1, result.CredentialsAssigned)
	assert.Empty(t, result.Errors)
	assert.Len(t, store.staff, 1)

	// The session is gone.
	resp = doJSON(t, http.MethodGet, base+"/analysis", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_EditDatesAndRemove(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := uploadRoster(t, ts, "roster.csv", rosterCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	analyzed := decode[struct {
		SessionID string `json:"sessionId"`
	}](t, resp)
	base := ts.URL + "/api/imports/" + analyzed.SessionID

	resp = doJSON(t, http.MethodPut, base+"/mapping", roster.MappingState{
		NameColumn:    0,
		ContactColumn: -1,
		Credentials:   map[int]int64{3: 5},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, base+"/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Replace a date.
	resp = doJSON(t, http.MethodPut, base+"/staff/0/credentials/0", dateEditRequest{Date: "2027-06-30"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Reject a malformed date.
	resp = doJSON(t, http.MethodPut, base+"/staff/0/credentials/0", dateEditRequest{Date: "6/30/2027"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Remove a credential and get updated stats back.
	resp = doJSON(t, http.MethodDelete, base+"/staff/1/credentials/0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed := decode[struct {
		Stats roster.ImportStats `json:"stats"`
	}](t, resp)
	assert.Equal(t, 1, removed.Stats.TotalCredentials)

	// Out-of-range indices map to 404 with a support code.
	resp = doJSON(t, http.MethodDelete, base+"/staff/99/credentials/0", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_CreateAndBindType(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := uploadRoster(t, ts, "roster.csv", rosterCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	analyzed := decode[struct {
		SessionID string `json:"sessionId"`
	}](t, resp)
	base := ts.URL + "/api/imports/" + analyzed.SessionID

	resp = doJSON(t, http.MethodPost, base+"/credential-types", createTypeRequest{
		Column:     3,
		Type:       roster.TypeCredential,
		Name:       "NRP",
		Category:   "Certification",
		IsExpiring: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]int64](t, resp)
	assert.NotZero(t, created["id"])

	// The new type shows up in the catalog listing.
	resp, err := http.Get(ts.URL + "/api/credential-types")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decode[struct {
		CredentialTypes []roster.CredentialType `json:"credentialTypes"`
	}](t, resp)
	assert.Len(t, listing.CredentialTypes, 2)

	// Invalid payloads are rejected before touching the catalog.
	resp = doJSON(t, http.MethodPost, base+"/credential-types", createTypeRequest{Column: 3, Type: "bogus", Name: "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_SessionLifecycleErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	// Unknown session ids are 404 everywhere.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/imports/nope/analysis", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "SES001", body.Code)

	// Preview before a name column is mapped is a 422.
	resp = uploadRoster(t, ts, "roster.csv", rosterCSV)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	analyzed := decode[struct {
		SessionID string `json:"sessionId"`
	}](t, resp)
	base := ts.URL + "/api/imports/" + analyzed.SessionID

	resp = doJSON(t, http.MethodPost, base+"/preview", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body = decode[ErrorResponse](t, resp)
	assert.Equal(t, "MAP001", body.Code)

	// Commit before any preview is a 422 too.
	resp = doJSON(t, http.MethodPost, base+"/commit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// Cancel closes the session for good.
	resp = doJSON(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AnalyzeRejectsBadUploads(t *testing.T) {
	ts, _ := newTestServer(t)

	// Unsupported extension.
	resp := uploadRoster(t, ts, "roster.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, "FILE001", body.Code)

	// No file field at all.
	resp, err := http.Post(ts.URL+"/api/imports", "multipart/form-data; boundary=x", strings.NewReader("--x--\r\n"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_SecurityHeaders(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/credential-types")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
