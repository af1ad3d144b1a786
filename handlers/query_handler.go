package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mentora/ragline/pipeline"
	"github.com/mentora/ragline/pipeline_type"
)

type QueryHandler struct {
	Orchestrator *pipeline.Orchestrator
	Logger       *slog.Logger
}

func NewQueryHandler(orchestrator *pipeline.Orchestrator, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		Orchestrator: orchestrator,
		Logger:       logger,
	}
}

type queryRequestBody struct {
	Query      string                   `json:"query"`
	Collection string                   `json:"collection"`
	History    []pipeline_type.ChatTurn `json:"history,omitempty"`
}

func (h *QueryHandler) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var body queryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Collection == "" {
		writeJSONError(w, http.StatusBadRequest, "collection is required")
		return
	}

	result, err := h.Orchestrator.ProcessQuery(r.Context(), pipeline.QueryRequest{
		Query:      body.Query,
		Collection: body.Collection,
		History:    body.History,
	})
	if err != nil {
		if errors.Is(err, pipeline_type.ErrEmptyQuery) {
			writeJSONError(w, http.StatusBadRequest, "query must not be empty")
			return
		}
		h.Logger.Error("Query processing failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to process query")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
