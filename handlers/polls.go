// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pollbox/pollbox/cliparse"
	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/store"
)

type PollHandler struct {
	store *store.SQL
	cfg   cliparse.Config
}

func NewPollHandler(s *store.SQL, cfg cliparse.Config) *PollHandler {
	return &PollHandler{store: s, cfg: cfg}
}

// CreatePoll handles POST /polls
// The creator principal is optional: an absent Bearer token creates a
// legacy ownerless poll.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	creator, ok := resolveCreator(r, h.store, h.cfg)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid access token")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.PollType == "" {
		req.PollType = models.PollTypeSingleChoice
	}
	if req.PollType != models.PollTypeSingleChoice && req.PollType != models.PollTypeMultipleChoice {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_type must be single_choice or multiple_choice")
		return
	}
	if len(req.Options) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "options cannot be empty")
		return
	}
	for _, label := range req.Options {
		if strings.TrimSpace(label) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option labels cannot be blank")
			return
		}
	}

	now := time.Now().UTC()

	var creatorID *string
	if creator != nil {
		creatorID = &creator.ID
	}

	poll := models.Poll{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		PollType:       req.PollType,
		AllowAnonymous: req.AllowAnonymous,
		IsActive:       true,
		ExpiresAt:      req.ExpiresAt,
		CreatorID:      creatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	options := make([]models.PollOption, len(req.Options))
	for i, label := range req.Options {
		options[i] = models.PollOption{
			ID:     uuid.NewString(),
			PollID: poll.ID,
			Label:  label,
			// Distinct timestamps preserve creation order under the
			// created_at ordering and the results tie-break.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
	}

	// Poll and options commit as one unit; a poll without options is
	// never observable.
	if err := h.store.CreatePoll(r.Context(), poll, options); err != nil {
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "poll_type", poll.PollType)

	middleware.JSONResponse(w, http.StatusCreated, models.PollWithOptions{
		Poll:    poll,
		Options: options,
	})
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.store.ListPolls(r.Context())
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
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

	options, err := h.store.ListOptions(r.Context(), poll.ID)
	if err != nil {
		slog.Error("failed to query options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.attachVoteCounts(r, poll.ID, options); err != nil {
		slog.Error("failed to query results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithOptions{
		Poll:    poll,
		Options: options,
	})
}

// attachVoteCounts fills in each option's tally from the vote ledger.
func (h *PollHandler) attachVoteCounts(r *http.Request, pollID string, options []models.PollOption) error {
	results, err := h.store.Results(r.Context(), pollID)
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(results))
	for _, res := range results {
		counts[res.OptionID] = res.VotesCount
	}
	for i := range options {
		options[i].VotesCount = counts[options[i].ID]
	}
	return nil
}

// ListOptions handles GET /polls/{id}/options
func (h *PollHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
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

	options, err := h.store.ListOptions(r.Context(), pollID)
	if err != nil {
		slog.Error("failed to query options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.attachVoteCounts(r, pollID, options); err != nil {
		slog.Error("failed to query results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, options)
}
