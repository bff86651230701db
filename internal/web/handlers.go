package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/storeops/imports-api/internal/imports"
)

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleOpenAPI serves the embedded API schema document.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(openapiYAML)
}

// handleCreateImport accepts a multipart spend file upload and runs it
// through the import pipeline.
//
// Expected form fields: store_id (integer), imported_by (text), file (the
// CSV payload). A missing or unusable field is a bad request; row-level
// validation failures come back as bad requests naming the offending row;
// persistence failures are internal errors.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, errors.New("file too large or invalid form"), http.StatusBadRequest)
		return
	}

	storeID, err := strconv.ParseInt(r.FormValue("store_id"), 10, 64)
	if err != nil {
		s.respondError(w, r, errors.New("store_id is required"), http.StatusBadRequest)
		return
	}

	importedBy := r.FormValue("imported_by")
	if importedBy == "" {
		s.respondError(w, r, errors.New("imported_by is required"), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("file is required"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	result, err := s.service.Run(r.Context(), imports.ImportRequest{
		StoreID:    storeID,
		ImportedBy: importedBy,
		FileName:   header.Filename,
		FileBytes:  fileBytes,
	})
	if err != nil {
		s.respondError(w, r, err, importStatusCode(err))
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// importStatusCode maps a pipeline error to its HTTP status.
func importStatusCode(err error) int {
	var parseErr *imports.ParseError
	switch {
	case errors.As(err, &parseErr), errors.Is(err, imports.ErrNotText):
		return http.StatusBadRequest
	case errors.Is(err, imports.ErrTooManyImports):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleGetImport returns a persisted import's metadata.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, errors.New("a valid import id is required"), http.StatusBadRequest)
		return
	}

	rec, err := s.service.GetImport(r.Context(), id)
	if errors.Is(err, imports.ErrNotFound) {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleGetReport returns a persisted report snapshot.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		s.respondError(w, r, errors.New("a valid report id is required"), http.StatusBadRequest)
		return
	}

	rec, err := s.service.GetReport(r.Context(), id)
	if errors.Is(err, imports.ErrNotFound) {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
