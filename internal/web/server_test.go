package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/JonMunkholm/docimport/internal/catalog"
	"github.com/JonMunkholm/docimport/internal/config"
	"github.com/JonMunkholm/docimport/internal/core"
	"github.com/JonMunkholm/docimport/internal/reconcile"
)

type memStore struct {
	mu    sync.Mutex
	links map[int64][]reconcile.Link
	runs  []core.Run
}

func (m *memStore) ApplyLinks(_ context.Context, projectID int64, links []reconcile.Link) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[projectID] = append(m.links[projectID], links...)
	return len(links), nil
}

func (m *memStore) ProjectLinks(_ context.Context, projectID int64) ([]core.ProjectLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.ProjectLink
	for _, l := range m.links[projectID] {
		out = append(out, core.ProjectLink{Link: l})
	}
	return out, nil
}

func (m *memStore) RecordRun(_ context.Context, run core.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memStore) ListRuns(_ context.Context, projectID int64, limit int) ([]core.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Run
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.runs[i].ProjectID == projectID {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *memStore) GetRun(_ context.Context, id string) (core.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Run{}, core.ErrRunNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second},
		Import: config.ImportConfig{
			MaxFileSize:    1 << 20,
			MaxConcurrent:  2,
			MaxWaitTime:    time.Second,
			Timeout:        time.Minute,
			RequireColumns: true,
			HistoryLimit:   20,
		},
		Rate:     config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ImportLimit: 3},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, ping PingFunc) (*Server, *memStore) {
	t.Helper()
	cfg := testConfig()
	store := &memStore{links: make(map[int64][]reconcile.Link)}
	src := catalog.NewStatic(catalog.Snapshot{
		Disciplines:   []reconcile.Discipline{{ID: 1, Code: "ME", Name: "Mechanical"}},
		DocumentTypes: []reconcile.DocumentType{{ID: 2, Code: "DRW", Name: "Drawing"}},
	})
	svc := core.NewService(src, store, core.Options{
		MaxFileSize:    cfg.Import.MaxFileSize,
		MaxConcurrent:  cfg.Import.MaxConcurrent,
		MaxWaitTime:    cfg.Import.MaxWaitTime,
		Timeout:        cfg.Import.Timeout,
		RequireColumns: cfg.Import.RequireColumns,
		HistoryLimit:   cfg.Import.HistoryLimit,
	})
	s := NewServer(svc, cfg, ping)
	t.Cleanup(s.Close)
	return s, store
}

const sheetCSV = "discipline_code,document_type_code,document_type_name,drs\nME,DRW,Drawing,A\nXX,DRW,Drawing,\n"

func uploadRequest(t *testing.T, path, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.1:1234"
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestImport_Apply(t *testing.T) {
	s, store := newTestServer(t, nil)

	rec := serve(s, uploadRequest(t, "/api/projects/7/imports", "types.csv", sheetCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, core.StatusApplied, res.Status)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, []string{"Disciplines not found by code: XX"}, res.Warnings)

	assert.Len(t, store.links[7], 1)
	require.Len(t, store.runs, 1)
	assert.Equal(t, "192.0.2.1", store.runs[0].IPAddress)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/7/import-warnings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entry core.WarningsEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, res.Warnings, entry.Warnings)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/imports/"+res.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/7/imports?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []core.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 1)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/7/document-types", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"disciplineId":1,"documentTypeId":2,"drs":"A","createdAt":"0001-01-01T00:00:00Z"}]`, rec.Body.String())
}

func TestImport_Preview(t *testing.T) {
	s, store := newTestServer(t, nil)

	rec := serve(s, uploadRequest(t, "/api/projects/7/imports/preview", "types.csv", sheetCSV))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"preview"`)
	assert.Empty(t, store.links)
	assert.Empty(t, store.runs)
}

func TestImport_HTMX(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := uploadRequest(t, "/api/projects/7/imports/preview", "types.csv", sheetCSV)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Processed 2, matched 1")
	assert.Equal(t, "import-warnings-changed", rec.Header().Get("HX-Trigger"))
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		status   int
		wantCode string
	}{
		{
			name: "invalid project",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/projects/abc/imports", "a.csv", sheetCSV)
			},
			status:   http.StatusBadRequest,
			wantCode: "IMP005",
		},
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/projects/1/imports", nil)
			},
			status:   http.StatusBadRequest,
			wantCode: "FILE004",
		},
		{
			name: "unreadable workbook",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/projects/1/imports", "a.xlsx", "not a workbook")
			},
			status:   http.StatusUnprocessableEntity,
			wantCode: "FILE003",
		},
		{
			name: "missing columns",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/projects/1/imports", "a.csv", "drs\nA\n")
			},
			status:   http.StatusUnprocessableEntity,
			wantCode: "IMP001",
		},
		{
			name: "unsupported format",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/projects/1/imports", "a.pdf", "%PDF")
			},
			status:   http.StatusUnprocessableEntity,
			wantCode: "FILE002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, nil)
			rec := serve(s, tt.req(t))

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestImport_UnreadableFileSetsGenericWarning(t *testing.T) {
	s, _ := newTestServer(t, nil)

	serve(s, uploadRequest(t, "/api/projects/3/imports", "a.xlsx", "not a workbook"))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/3/import-warnings", nil))
	var entry core.WarningsEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, []string{core.ReadFailedWarning}, entry.Warnings)
}

func TestWarnings_HTMXAndClear(t *testing.T) {
	s, _ := newTestServer(t, nil)
	serve(s, uploadRequest(t, "/api/projects/4/imports/preview", "t.csv", sheetCSV))

	req := httptest.NewRequest(http.MethodGet, "/api/projects/4/import-warnings", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)
	assert.Contains(t, rec.Body.String(), "<li>Disciplines not found by code: XX</li>")

	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/projects/4/import-warnings", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/4/import-warnings", nil))
	assert.JSONEq(t, `{"warnings":[],"updatedAt":"0001-01-01T00:00:00Z"}`, rec.Body.String())
}

func TestGetImport_NotFound(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/imports/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "IMP004")
}

func TestCatalogEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/disciplines", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"code":"ME","name":"Mechanical"}]`, rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/document-types", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"DRW"`)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, func(context.Context) error { return nil })
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	down, _ := newTestServer(t, func(context.Context) error { return errors.New("down") })
	rec = serve(down, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestImport_RateLimited(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for i := 0; i < 3; i++ {
		rec := serve(s, uploadRequest(t, "/api/projects/1/imports/preview", "t.csv", sheetCSV))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(s, uploadRequest(t, "/api/projects/1/imports/preview", "t.csv", sheetCSV))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE001")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/1/import-warnings", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "other routes use the general bucket")
}

func TestRateLimiter_Window(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"), "buckets are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("a"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNoFile, http.StatusBadRequest},
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{core.ErrTooManyImports, http.StatusServiceUnavailable},
		{core.ErrRunNotFound, http.StatusNotFound},
		{errors.Join(catalog.ErrUnavailable, errors.New("x")), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 7},
		{"limit=25", 25},
		{"limit=0", 7},
		{"limit=-3", 7},
		{"limit=ten", 7},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, parseIntParam(req, "limit", 7))
		})
	}
}
