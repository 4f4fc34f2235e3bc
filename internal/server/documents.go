package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyassist/internal/docstore"
)

// maxUploadBytes caps the size of an uploaded document.
const maxUploadBytes = 100 << 20 // 100 MiB

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	if !s.store.Supported(header.Filename) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unsupported file type: %s", filepath.Ext(header.Filename)),
		})
		return
	}

	docID := uuid.NewString()
	destPath := filepath.Join(s.store.UploadsDir(), docID+filepath.Ext(header.Filename))
	dest, err := os.Create(destPath)
	if err != nil {
		s.log.Error("saving upload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save upload"})
		return
	}
	if _, err := io.Copy(dest, file); err != nil {
		dest.Close()
		os.Remove(destPath)
		s.log.Error("saving upload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save upload"})
		return
	}
	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		s.log.Error("saving upload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save upload"})
		return
	}

	result := s.store.Ingest(r.Context(), destPath, docID)
	result.Filename = header.Filename
	if result.Status == "error" {
		os.Remove(destPath)
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	if err := s.store.Registry().SetFilename(r.Context(), docID, header.Filename); err != nil {
		s.log.Warn("recording upload filename", "doc_id", docID, "error", err)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Registry().List(r.Context())
	if err != nil {
		s.log.Error("listing documents", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list documents"})
		return
	}
	if records == nil {
		records = []docstore.DocumentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": records})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	deleted := s.store.Delete(r.Context(), docID)
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": deleted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
