// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/cliparse"
	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/store"
)

const accessTokenTTL = time.Hour

type AuthHandler struct {
	store *store.SQL
	cfg   cliparse.Config
}

func NewAuthHandler(s *store.SQL, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{store: s, cfg: cfg}
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password is required")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	creator := models.Creator{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	err = h.store.InsertCreator(r.Context(), creator)
	if errors.Is(err, store.ErrDuplicate) {
		middleware.ErrorResponse(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		slog.Error("failed to insert creator", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("creator registered", "creator_id", creator.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		CreatorID: creator.ID,
		Email:     creator.Email,
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	creator, err := h.store.FindCreatorByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		slog.Error("failed to query creator", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !creator.IsActive || !auth.CheckPassword(creator.PasswordHash, req.Password) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.IssueAccessToken(creator.ID, []byte(h.cfg.JWTSecret), accessTokenTTL)
	if err != nil {
		slog.Error("failed to issue access token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{AccessToken: token})
}

// resolveCreator resolves the optional Bearer principal. Returns
// (nil, true) when no token is present: poll creation accepts an
// absent creator. A present-but-invalid token is not accepted.
func resolveCreator(r *http.Request, s *store.SQL, cfg cliparse.Config) (*models.Creator, bool) {
	token := middleware.BearerToken(r)
	if token == "" {
		return nil, true
	}

	creatorID, err := auth.ResolveAccessToken(token, []byte(cfg.JWTSecret))
	if err != nil {
		return nil, false
	}

	creator, err := s.FindCreatorByID(r.Context(), creatorID)
	if err != nil || !creator.IsActive {
		return nil, false
	}
	return &creator, true
}
