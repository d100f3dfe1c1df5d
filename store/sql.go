// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pollbox/pollbox/models"
)

// SQL implements all store ports against a database/sql connection.
// Queries use $N placeholders, each bound once in order, which both
// lib/pq and modernc/sqlite accept.
type SQL struct {
	db *sql.DB
}

func New(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// --- creators ---

func (s *SQL) InsertCreator(ctx context.Context, c models.Creator) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO creator (id, email, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Email, c.PasswordHash, c.IsActive, c.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert creator: %w", err)
	}
	return nil
}

func (s *SQL) FindCreatorByEmail(ctx context.Context, email string) (models.Creator, error) {
	var c models.Creator
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_active, created_at
		FROM creator WHERE email = $1
	`, email).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.IsActive, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Creator{}, ErrNotFound
	}
	if err != nil {
		return models.Creator{}, fmt.Errorf("failed to query creator: %w", err)
	}
	return c, nil
}

func (s *SQL) FindCreatorByID(ctx context.Context, id string) (models.Creator, error) {
	var c models.Creator
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_active, created_at
		FROM creator WHERE id = $1
	`, id).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.IsActive, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Creator{}, ErrNotFound
	}
	if err != nil {
		return models.Creator{}, fmt.Errorf("failed to query creator: %w", err)
	}
	return c, nil
}

// --- polls and options ---

func (s *SQL) CreatePoll(ctx context.Context, poll models.Poll, options []models.PollOption) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, title, description, poll_type, allow_anonymous,
		                  is_active, expires_at, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, poll.ID, poll.Title, poll.Description, poll.PollType, poll.AllowAnonymous,
		poll.IsActive, poll.ExpiresAt, poll.CreatorID, poll.CreatedAt, poll.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for _, opt := range options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_option (id, poll_id, label, created_at)
			VALUES ($1, $2, $3, $4)
		`, opt.ID, opt.PollID, opt.Label, opt.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit poll creation: %w", err)
	}
	return nil
}

func (s *SQL) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	var p models.Poll
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, poll_type, allow_anonymous,
		       is_active, expires_at, creator_id, created_at, updated_at
		FROM poll WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.PollType, &p.AllowAnonymous,
		&p.IsActive, &p.ExpiresAt, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	return p, nil
}

func (s *SQL) ListPolls(ctx context.Context) ([]models.Poll, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, poll_type, allow_anonymous,
		       is_active, expires_at, creator_id, created_at, updated_at
		FROM poll
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.PollType, &p.AllowAnonymous,
			&p.IsActive, &p.ExpiresAt, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

func (s *SQL) GetOption(ctx context.Context, pollID, optionID string) (models.PollOption, error) {
	var o models.PollOption
	err := s.db.QueryRowContext(ctx, `
		SELECT id, poll_id, label, created_at
		FROM poll_option
		WHERE poll_id = $1 AND id = $2
	`, pollID, optionID).Scan(&o.ID, &o.PollID, &o.Label, &o.CreatedAt)

	if err == sql.ErrNoRows {
		return models.PollOption{}, ErrNotFound
	}
	if err != nil {
		return models.PollOption{}, fmt.Errorf("failed to query option: %w", err)
	}
	return o, nil
}

func (s *SQL) ListOptions(ctx context.Context, pollID string) ([]models.PollOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, label, created_at
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY created_at ASC, id ASC
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.PollOption{}
	for rows.Next() {
		var o models.PollOption
		if err := rows.Scan(&o.ID, &o.PollID, &o.Label, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

func (s *SQL) Results(ctx context.Context, pollID string) ([]models.OptionResult, error) {
	// One query, one snapshot: counts never mix two ledger states.
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.label, COUNT(v.id)
		FROM poll_option o
		LEFT JOIN vote v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.label, o.created_at
		ORDER BY COUNT(v.id) DESC, o.created_at ASC, o.id ASC
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.OptionResult{}
	for rows.Next() {
		var r models.OptionResult
		if err := rows.Scan(&r.OptionID, &r.Label, &r.VotesCount); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- voters ---

func (s *SQL) InsertVoter(ctx context.Context, v models.Voter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voter (id, poll_id, email, temp_password_hash, anon_id,
		                   has_voted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, v.ID, v.PollID, v.Email, v.TempPasswordHash, v.AnonID,
		v.HasVoted, v.CreatedAt, v.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert voter: %w", err)
	}
	return nil
}

func (s *SQL) FindVoterByEmail(ctx context.Context, pollID, email string) (models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, poll_id, email, temp_password_hash, anon_id,
		       has_voted, created_at, updated_at
		FROM voter
		WHERE poll_id = $1 AND email = $2
	`, pollID, email).Scan(&v.ID, &v.PollID, &v.Email, &v.TempPasswordHash, &v.AnonID,
		&v.HasVoted, &v.CreatedAt, &v.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

func (s *SQL) FindVoterByID(ctx context.Context, pollID, voterID string) (models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, poll_id, email, temp_password_hash, anon_id,
		       has_voted, created_at, updated_at
		FROM voter
		WHERE poll_id = $1 AND id = $2
	`, pollID, voterID).Scan(&v.ID, &v.PollID, &v.Email, &v.TempPasswordHash, &v.AnonID,
		&v.HasVoted, &v.CreatedAt, &v.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.Voter{}, ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

func (s *SQL) ReissueCredentials(ctx context.Context, voterID, anonID, tempPasswordHash string, now time.Time) error {
	// Guarded on has_voted so a voted voter's identity linkage can never
	// be invalidated by a concurrent re-provision.
	res, err := s.db.ExecContext(ctx, `
		UPDATE voter
		SET anon_id = $1, temp_password_hash = $2, updated_at = $3
		WHERE id = $4 AND has_voted = FALSE
	`, anonID, tempPasswordHash, now, voterID)
	if err != nil {
		return fmt.Errorf("failed to reissue credentials: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reissue credentials: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) CountVoters(ctx context.Context, pollID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM voter WHERE poll_id = $1
	`, pollID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return count, nil
}

// --- votes ---

func (s *SQL) HasVoteForOption(ctx context.Context, optionID, anonID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE option_id = $1 AND anon_id = $2
		)
	`, optionID, anonID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

func (s *SQL) HasVoteInPoll(ctx context.Context, pollID, anonID string, voterID *string) (bool, error) {
	// voter_id = NULL never matches, so a nil voterID reduces this to the
	// anon_id check.
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote v
			JOIN poll_option o ON o.id = v.option_id
			WHERE o.poll_id = $1 AND (v.anon_id = $2 OR v.voter_id = $3)
		)
	`, pollID, anonID, voterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check poll votes: %w", err)
	}
	return exists, nil
}

func (s *SQL) CastVote(ctx context.Context, v models.Vote) (models.Vote, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The (option_id, anon_id) constraint is the source of truth; a race
	// with a concurrent identical cast loses here.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, option_id, anon_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.PollOption, v.AnonID, v.VoterID, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Vote{}, ErrDuplicate
		}
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	if v.VoterID != nil {
		// Guarded on has_voted: a concurrent cast from the same roster
		// voter for a different option loses here, where the vote
		// constraint alone would let it through.
		res, err := tx.ExecContext(ctx, `
			UPDATE voter
			SET has_voted = TRUE, updated_at = $1
			WHERE id = $2 AND has_voted = FALSE
		`, v.CreatedAt, *v.VoterID)
		if err != nil {
			return models.Vote{}, fmt.Errorf("failed to mark voter as voted: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return models.Vote{}, fmt.Errorf("failed to mark voter as voted: %w", err)
		}
		if affected == 0 {
			return models.Vote{}, ErrDuplicate
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Vote{}, fmt.Errorf("failed to commit vote: %w", err)
	}
	return v, nil
}
