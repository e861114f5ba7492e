package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/docimport/internal/core"
	"github.com/JonMunkholm/docimport/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size limit for the
// multipart framing and form fields.
const multipartOverhead = 1 << 20

// maxMemory is how much of a multipart form is buffered in memory before
// spilling to temp files.
const maxMemory = 8 << 20

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func projectID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidProject
	}
	return id, nil
}

// handleImport accepts a multipart "file" field. With apply unset the
// import is a dry run.
func (s *Server) handleImport(apply bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, err := projectID(r)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}

		maxSize := s.cfg.Import.MaxFileSize
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				respondError(w, r, core.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
				return
			}
			respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
			return
		}
		defer file.Close()

		ctx := WithRequestMetadata(r.Context(), r)
		res, err := s.service.Import(ctx, core.ImportRequest{
			ProjectID: pid,
			FileName:  header.Filename,
			Reader:    file,
			Size:      header.Size,
			SheetName: r.FormValue("sheet"),
			Apply:     apply,
		})
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}

		if isHTMX(r) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("HX-Trigger", "import-warnings-changed")
			if err := templates.ImportSummary(res).Render(r.Context(), w); err != nil {
				respondError(w, r, err, http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	runs, err := s.service.History(r.Context(), pid, parseIntParam(r, "limit", 0))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []core.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.Run(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetWarnings(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	entry, _ := s.service.Warnings().Get(pid)
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.WarningsPanel(pid, entry).Render(r.Context(), w); err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleClearWarnings(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.service.Warnings().Clear(pid)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProjectDocumentTypes(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	links, err := s.service.ProjectLinks(r.Context(), pid)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if links == nil {
		links = []core.ProjectLink{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Server) handleListDisciplines(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Catalog(r.Context())
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, snap.Disciplines)
}

func (s *Server) handleListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Catalog(r.Context())
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, snap.DocumentTypes)
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database,omitempty"`
	Imports  core.ImportLimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Imports: s.service.Limiter().Status(),
	}
	status := http.StatusOK

	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	writeJSON(w, status, resp)
}
