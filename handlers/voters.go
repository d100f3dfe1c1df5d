// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pollbox/pollbox/cliparse"
	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/provision"
	"github.com/pollbox/pollbox/store"
)

type VoterHandler struct {
	store       *store.SQL
	provisioner *provision.Service
	cfg         cliparse.Config
}

func NewVoterHandler(s *store.SQL, p *provision.Service, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{store: s, provisioner: p, cfg: cfg}
}

// UploadVoters handles POST /polls/{id}/voters
// Requires an authenticated creator.
func (h *VoterHandler) UploadVoters(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization required")
		return
	}
	creator, ok := resolveCreator(r, h.store, h.cfg)
	if !ok || creator == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid access token")
		return
	}

	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	poll, err := h.store.GetPoll(r.Context(), pollID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.UploadVotersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Voters) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voters cannot be empty")
		return
	}

	emails := make([]string, len(req.Voters))
	for i, entry := range req.Voters {
		emails[i] = entry.Email
	}

	results, err := h.provisioner.ProvisionVoters(r.Context(), poll, emails)
	if errors.Is(err, provision.ErrMissingEmail) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to provision voters", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload voters")
		return
	}

	slog.Info("voters uploaded", "poll_id", poll.ID, "count", len(results))

	middleware.JSONResponse(w, http.StatusCreated, models.UploadVotersResponse{
		Created: results,
	})
}
