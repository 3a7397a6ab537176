package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pks0715/seggy-the-analyst-v4/internal/pipeline"
	"github.com/pks0715/seggy-the-analyst-v4/internal/report"
)

const internalErrorMessage = "Internal server error"

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			jsonError(w, fmt.Sprintf("Upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			jsonError(w, pipeline.ErrNoFilesUploaded.Error(), http.StatusBadRequest)
		default:
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		// Empty file inputs arrive as form values with no filename.
		if _, ok := r.MultipartForm.Value["files"]; ok {
			jsonError(w, pipeline.ErrNoFilesSelected.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, pipeline.ErrNoFilesUploaded.Error(), http.StatusBadRequest)
		return
	}

	docs := make([]pipeline.Document, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.serverError(w, r, fmt.Errorf("open upload %s: %w", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.serverError(w, r, fmt.Errorf("read upload %s: %w", fh.Filename, err))
			return
		}
		docs = append(docs, pipeline.Document{Name: sanitizeFilename(fh.Filename), Data: data})
	}

	rep, err := s.runner.Run(r.Context(), docs)
	if err != nil {
		if pipeline.IsClientError(err) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.serverError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := report.RenderHTML(rep.Content)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Report-Status", string(rep.Status))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, html)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("analyze request failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	jsonError(w, internalErrorMessage, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		name = "unnamed"
	}
	return name
}
