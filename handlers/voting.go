// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/cliparse"
	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/store"
	"github.com/pollbox/pollbox/voting"
)

const voterTokenTTL = time.Hour

type VoteHandler struct {
	store        *store.SQL
	orchestrator *voting.Orchestrator
	cfg          cliparse.Config
}

func NewVoteHandler(s *store.SQL, o *voting.Orchestrator, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{store: s, orchestrator: o, cfg: cfg}
}

// CastVote handles POST /polls/{id}/vote
// Casting requires no creator authentication, only an identity claim.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.PollOption == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_option is required")
		return
	}

	vote, err := h.orchestrator.CastVote(r.Context(), voting.CastRequest{
		PollID:     pollID,
		OptionID:   req.PollOption,
		AnonID:     req.AnonID,
		VoterToken: req.VoterToken,
		VoterID:    req.Voter,
	})

	var rejection *voting.Error
	if errors.As(err, &rejection) {
		status := http.StatusBadRequest
		if rejection.Code == voting.CodePollNotFound {
			status = http.StatusNotFound
		}
		middleware.ErrorResponse(w, status, rejection.Message)
		return
	}
	if err != nil {
		slog.Error("failed to cast vote", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, vote)
}

// VoterLogin handles POST /voter-login
// Exchanges a roster voter's temporary credentials for a poll-scoped
// session token.
func (h *VoteHandler) VoterLogin(w http.ResponseWriter, r *http.Request) {
	var req models.VoterLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" || req.TempPassword == "" || req.PollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email, temp_password and poll_id are required")
		return
	}

	voter, err := h.store.FindVoterByEmail(r.Context(), req.PollID, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// One-way comparison against the stored hash only
	if !auth.CheckPassword(voter.TempPasswordHash, req.TempPassword) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.IssueVoterToken(voter.ID, voter.PollID, []byte(h.cfg.JWTSecret), voterTokenTTL)
	if err != nil {
		slog.Error("failed to issue voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("voter logged in", "poll_id", voter.PollID)

	middleware.JSONResponse(w, http.StatusOK, models.VoterLoginResponse{
		VoterToken: token,
		AnonID:     voter.AnonID,
	})
}
