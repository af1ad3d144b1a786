package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mentora/ragline/services/ingest_service"
	"github.com/mentora/ragline/services/vector_store"
)

// maxUploadBytes caps multipart uploads at 50MB.
const maxUploadBytes = 50 << 20

type DocumentHandler struct {
	Processor *ingest_service.Processor
	Store     vector_store.VectorStore
	Logger    *slog.Logger
}

func NewDocumentHandler(processor *ingest_service.Processor, store vector_store.VectorStore, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		Processor: processor,
		Store:     store,
		Logger:    logger,
	}
}

// UploadDocument accepts a multipart form with a "file" part and an optional
// "collection" field, indexes the document and reports what was stored.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer file.Close()

	collection := r.FormValue("collection")
	if collection == "" {
		writeJSONError(w, http.StatusBadRequest, "collection is required")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	result, err := h.Processor.ProcessDocument(r.Context(), collection, header.Filename, content)
	if err != nil {
		h.Logger.Error("Document ingestion failed",
			slog.String("collection", collection),
			slog.String("file_name", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// ListDocuments returns the distinct files indexed in a collection.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]

	files, err := h.Store.ListFiles(r.Context(), collection)
	if err != nil {
		h.Logger.Error("Failed to list documents",
			slog.String("collection", collection),
			slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"files": files})
}

// DeleteDocument removes every chunk of one file from a collection.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection := vars["collection"]
	fileID := vars["file_id"]

	if err := h.Processor.DeleteDocument(r.Context(), collection, fileID); err != nil {
		h.Logger.Error("Failed to delete document",
			slog.String("collection", collection),
			slog.String("file_id", fileID),
			slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
