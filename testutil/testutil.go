// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/cliparse"
	"github.com/pollbox/pollbox/db"
	"github.com/pollbox/pollbox/models"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. A single pooled connection keeps the in-memory database alive
// and shared across the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8080,
		DatabaseURL:  "file::memory:",
		DatabaseType: "sqlite",
		JWTSecret:    "test-jwt-secret",
		FrontendURL:  "http://localhost:3000",
	}
}

// CreateTestPoll creates an active poll that allows anonymous voting
// and returns its ID. pollType is models.PollTypeSingleChoice or
// models.PollTypeMultipleChoice.
func CreateTestPoll(t *testing.T, conn *sql.DB, pollType string) string {
	t.Helper()

	pollID := uuid.NewString()
	now := time.Now().UTC()

	_, err := conn.Exec(`
		INSERT INTO poll (id, title, description, poll_type, allow_anonymous,
		                  is_active, created_at, updated_at)
		VALUES ($1, 'Test Poll', 'A test poll', $2, TRUE, TRUE, $3, $4)
	`, pollID, pollType, now, now)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestOption adds an option to a poll and returns the option ID.
// Successive calls get strictly increasing created_at values.
func AddTestOption(t *testing.T, conn *sql.DB, pollID, label string) string {
	t.Helper()

	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll_option (id, poll_id, label, created_at)
		VALUES ($1, $2, $3, $4)
	`, optionID, pollID, label, nextTimestamp())
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CreateTestVoter inserts a roster voter with the given plaintext
// temporary password and returns the stored voter.
func CreateTestVoter(t *testing.T, conn *sql.DB, pollID, email, tempPassword string) models.Voter {
	t.Helper()

	hashed, err := auth.HashPassword(tempPassword)
	if err != nil {
		t.Fatalf("Failed to hash temp password: %v", err)
	}
	anonID, err := auth.GenerateAnonID(email, pollID)
	if err != nil {
		t.Fatalf("Failed to generate anon id: %v", err)
	}

	voter := models.Voter{
		ID:               uuid.NewString(),
		PollID:           pollID,
		Email:            email,
		TempPasswordHash: hashed,
		AnonID:           anonID,
		HasVoted:         false,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	_, err = conn.Exec(`
		INSERT INTO voter (id, poll_id, email, temp_password_hash, anon_id,
		                   has_voted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, voter.ID, voter.PollID, voter.Email, voter.TempPasswordHash, voter.AnonID,
		voter.HasVoted, voter.CreatedAt, voter.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voter
}

// InsertTestVote writes a vote row directly and returns its ID
func InsertTestVote(t *testing.T, conn *sql.DB, optionID, anonID string, voterID *string) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, option_id, anon_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, optionID, anonID, voterID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// DeactivatePoll flips is_active off
func DeactivatePoll(t *testing.T, conn *sql.DB, pollID string) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE poll SET is_active = FALSE WHERE id = $1`, pollID); err != nil {
		t.Fatalf("Failed to deactivate poll: %v", err)
	}
}

// ExpirePoll sets expires_at in the past
func ExpirePoll(t *testing.T, conn *sql.DB, pollID string) {
	t.Helper()

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := conn.Exec(`UPDATE poll SET expires_at = $1 WHERE id = $2`, past, pollID); err != nil {
		t.Fatalf("Failed to expire poll: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

var lastTimestamp time.Time

// nextTimestamp returns a strictly increasing timestamp so option
// creation order is stable even when the clock doesn't move.
func nextTimestamp() time.Time {
	now := time.Now().UTC()
	if !now.After(lastTimestamp) {
		now = lastTimestamp.Add(time.Microsecond)
	}
	lastTimestamp = now
	return now
}
