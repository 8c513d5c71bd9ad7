package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tcoboard/internal/log"
	"tcoboard/internal/storage"
)

// Workbooks for a full year of warehouse costs stay well under this.
const maxUploadBytes = 20 << 20

// importJSON is the wire representation of an import job.
type importJSON struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	RowCount  int       `json:"rowCount"`
	Warnings  []string  `json:"warnings,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toImportJSON(imp storage.Import) importJSON {
	return importJSON{
		ID:        imp.ID,
		Filename:  imp.Filename,
		Source:    imp.Source,
		Status:    imp.Status,
		RowCount:  imp.RowCount,
		Warnings:  imp.Warnings,
		Error:     imp.Error,
		CreatedAt: imp.CreatedAt,
		UpdatedAt: imp.UpdatedAt,
	}
}

// handleUpload accepts an xlsx workbook and queues it for ingestion.
// Responds 202 with the created import job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	filename := sanitizeInput(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		writeError(w, http.StatusBadRequest, "only .xlsx workbooks are accepted")
		return
	}

	imp, err := s.imports.SubmitUpload(ctx, filename, file)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Upload submission failed",
			log.FieldOperation, log.OpUpload,
			log.FieldFilename, filename,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to accept upload")
		return
	}

	// The new rows may already be visible when processing ran inline.
	s.InvalidateCaches()

	log.FromContext(ctx).InfoContext(ctx, "Upload accepted",
		log.FieldOperation, log.OpUpload,
		log.FieldImportID, imp.ID,
		log.FieldFilename, filename,
		"status", imp.Status)
	writeJSON(w, http.StatusAccepted, toImportJSON(imp))
}

// handleUploadStatus reports the state of one import job by ID.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	idStr := strings.TrimPrefix(r.URL.Path, "/api/uploads/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid import id")
		return
	}

	imp, err := s.imports.GetImport(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrImportNotFound) {
			writeError(w, http.StatusNotFound, "import not found")
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Failed to load import",
			log.FieldImportID, id, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load import")
		return
	}

	writeJSON(w, http.StatusOK, toImportJSON(imp))
}
