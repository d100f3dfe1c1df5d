// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/store"
)

type ResultsHandler struct {
	store *store.SQL
}

func NewResultsHandler(s *store.SQL) *ResultsHandler {
	return &ResultsHandler{store: s}
}

// GetResults handles GET /polls/{id}/results
// Public: per-option vote counts ordered by count descending.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	if _, err := h.store.GetPoll(r.Context(), pollID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
			return
		}
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	results, err := h.store.Results(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to query results", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
