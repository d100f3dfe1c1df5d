// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll type constants
const (
	PollTypeSingleChoice   = "single_choice"
	PollTypeMultipleChoice = "multiple_choice"
)

// Request types

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	PollType       string     `json:"poll_type"`
	AllowAnonymous bool       `json:"allow_anonymous"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Options        []string   `json:"options"`
}

type CastVoteRequest struct {
	PollOption string `json:"poll_option"`
	AnonID     string `json:"anon_id,omitempty"`
	VoterToken string `json:"voter_token,omitempty"`
	Voter      string `json:"voter,omitempty"`
}

type VoterEntry struct {
	Email string `json:"email"`
}

type UploadVotersRequest struct {
	Voters []VoterEntry `json:"voters"`
}

type VoterLoginRequest struct {
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
	PollID       string `json:"poll_id"`
}

// Response types

type RegisterResponse struct {
	CreatorID string `json:"creator_id"`
	Email     string `json:"email"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type VoterLoginResponse struct {
	VoterToken string `json:"voter_token"`
	AnonID     string `json:"anon_id"`
}

type ProvisionResult struct {
	Email        string `json:"email"`
	TempPassword string `json:"temp_password,omitempty"`
	AnonID       string `json:"anon_id"`
	Created      bool   `json:"created"`
}

type UploadVotersResponse struct {
	Created []ProvisionResult `json:"created"`
}

type OptionResult struct {
	OptionID   string `json:"option_id"`
	Label      string `json:"text"`
	VotesCount int    `json:"votes_count"`
}

// Domain types

type Creator struct {
	ID           string    `json:"creator_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Poll struct {
	ID             string     `json:"poll_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	PollType       string     `json:"poll_type"`
	AllowAnonymous bool       `json:"allow_anonymous"`
	IsActive       bool       `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatorID      *string    `json:"creator_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type PollOption struct {
	ID         string    `json:"option_id"`
	PollID     string    `json:"poll_id"`
	Label      string    `json:"text"`
	VotesCount int       `json:"votes_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type PollWithOptions struct {
	Poll    Poll         `json:"poll"`
	Options []PollOption `json:"options"`
}

type Voter struct {
	ID               string    `json:"voter_id"`
	PollID           string    `json:"poll_id"`
	Email            string    `json:"email"`
	TempPasswordHash string    `json:"-"` // Never expose in JSON
	AnonID           string    `json:"anon_id"`
	HasVoted         bool      `json:"has_voted"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Vote struct {
	ID         string    `json:"vote_id"`
	PollOption string    `json:"poll_option"`
	AnonID     string    `json:"anon_id"`
	VoterID    *string   `json:"voter,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
