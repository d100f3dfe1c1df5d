// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/pollbox/pollbox/models"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert hits a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate row")
)

// CreatorStore persists poll-owner accounts.
type CreatorStore interface {
	InsertCreator(ctx context.Context, c models.Creator) error
	FindCreatorByEmail(ctx context.Context, email string) (models.Creator, error)
	FindCreatorByID(ctx context.Context, id string) (models.Creator, error)
}

// PollStore persists polls and their options.
type PollStore interface {
	// CreatePoll inserts the poll and all options in one transaction.
	// A poll without its options is never observable.
	CreatePoll(ctx context.Context, poll models.Poll, options []models.PollOption) error
	GetPoll(ctx context.Context, id string) (models.Poll, error)
	ListPolls(ctx context.Context) ([]models.Poll, error)
	// GetOption resolves an option within the given poll only.
	GetOption(ctx context.Context, pollID, optionID string) (models.PollOption, error)
	// ListOptions returns a poll's options in creation order.
	ListOptions(ctx context.Context, pollID string) ([]models.PollOption, error)
	// Results returns per-option vote counts from a single query snapshot,
	// ordered by count descending, ties broken by option creation order.
	Results(ctx context.Context, pollID string) ([]models.OptionResult, error)
}

// VoterStore persists controlled roster entries.
type VoterStore interface {
	InsertVoter(ctx context.Context, v models.Voter) error
	FindVoterByEmail(ctx context.Context, pollID, email string) (models.Voter, error)
	FindVoterByID(ctx context.Context, pollID, voterID string) (models.Voter, error)
	// ReissueCredentials overwrites the anon_id and temp password hash of a
	// voter that has not voted yet.
	ReissueCredentials(ctx context.Context, voterID, anonID, tempPasswordHash string, now time.Time) error
	CountVoters(ctx context.Context, pollID string) (int, error)
}

// VoteStore is the append-only vote ledger.
type VoteStore interface {
	// HasVoteForOption reports whether (optionID, anonID) already exists.
	HasVoteForOption(ctx context.Context, optionID, anonID string) (bool, error)
	// HasVoteInPoll reports whether the identity has any vote across the
	// poll's options, matching by anon_id or, when given, the voter ref.
	HasVoteInPoll(ctx context.Context, pollID, anonID string, voterID *string) (bool, error)
	// CastVote inserts the vote and, when the vote came from a roster
	// voter, flips has_voted in the same transaction. A race on the
	// (option_id, anon_id) constraint, or a roster voter whose has_voted
	// was already set, returns ErrDuplicate.
	CastVote(ctx context.Context, v models.Vote) (models.Vote, error)
}

// isUniqueViolation detects constraint errors from both wired drivers.
// lib/pq exposes SQLSTATE 23505; modernc/sqlite only the message text.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
