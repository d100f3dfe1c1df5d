// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/store"
)

// Orchestrator resolves a vote request into an eligibility decision and,
// if eligible, a ledger write. It is stateless per request; concurrency
// correctness rests on the store's transactional guarantees.
type Orchestrator struct {
	polls  store.PollStore
	voters store.VoterStore
	votes  store.VoteStore
	secret []byte
	now    func() time.Time
}

func NewOrchestrator(polls store.PollStore, voters store.VoterStore, votes store.VoteStore, jwtSecret []byte) *Orchestrator {
	return &Orchestrator{
		polls:  polls,
		voters: voters,
		votes:  votes,
		secret: jwtSecret,
		now:    time.Now,
	}
}

// CastRequest carries the caller's identity claim: exactly one of
// VoterToken, VoterID, or AnonID is used, in that precedence. All three
// absent means a fresh anonymous identity.
type CastRequest struct {
	PollID     string
	OptionID   string
	AnonID     string
	VoterToken string
	VoterID    string
}

// CastVote runs the ordered eligibility checks and commits the vote.
// Check order is a contract: identity resolution overrides the caller's
// anon_id before any dedup check runs, and the first failing check wins.
func (o *Orchestrator) CastVote(ctx context.Context, req CastRequest) (models.Vote, error) {
	// 1. Resolve poll
	poll, err := o.polls.GetPoll(ctx, req.PollID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Vote{}, rejected(CodePollNotFound, "poll not found")
	}
	if err != nil {
		return models.Vote{}, err
	}

	// 2. Resolve option within this poll
	option, err := o.polls.GetOption(ctx, poll.ID, req.OptionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Vote{}, rejected(CodeOptionNotFound, "option does not exist for this poll")
	}
	if err != nil {
		return models.Vote{}, err
	}

	// 3. Resolve casting identity
	var voter *models.Voter
	anonID := req.AnonID

	switch {
	case req.VoterToken != "":
		claims, err := auth.ResolveVoterToken(req.VoterToken, o.secret)
		if err != nil || claims.PollID != poll.ID {
			return models.Vote{}, rejected(CodeInvalidVoterToken, "invalid voter token")
		}
		v, err := o.voters.FindVoterByID(ctx, poll.ID, claims.VoterID)
		if errors.Is(err, store.ErrNotFound) {
			return models.Vote{}, rejected(CodeVoterNotFound, "voter not found")
		}
		if err != nil {
			return models.Vote{}, err
		}
		voter = &v
	case req.VoterID != "":
		v, err := o.voters.FindVoterByID(ctx, poll.ID, req.VoterID)
		if errors.Is(err, store.ErrNotFound) {
			return models.Vote{}, rejected(CodeVoterNotFound, "voter not found")
		}
		if err != nil {
			return models.Vote{}, err
		}
		voter = &v
	default:
		if !poll.AllowAnonymous {
			return models.Vote{}, rejected(CodeAnonymousNotAllowed, "poll does not allow anonymous voting")
		}
		if anonID == "" {
			// Fresh unlinkable identity
			anonID, err = auth.GenerateID(16)
			if err != nil {
				return models.Vote{}, err
			}
		}
	}

	// A roster voter's stored anon_id always wins over the caller's.
	if voter != nil {
		anonID = voter.AnonID
	}

	// 4. Poll eligibility
	if !poll.IsActive {
		return models.Vote{}, rejected(CodeNotActive, "poll is not active")
	}
	if poll.ExpiresAt != nil && poll.ExpiresAt.Before(o.now()) {
		return models.Vote{}, rejected(CodeExpired, "poll has expired")
	}

	// 5. Prior-vote checks, identity-scoped
	var voterRef *string
	if voter != nil {
		if voter.HasVoted {
			return models.Vote{}, rejected(CodeAlreadyVoted, "already voted")
		}
		voterRef = &voter.ID
	}

	dup, err := o.votes.HasVoteForOption(ctx, option.ID, anonID)
	if err != nil {
		return models.Vote{}, err
	}
	if dup {
		return models.Vote{}, rejected(CodeDuplicateOption, "already voted for this option")
	}

	if poll.PollType == models.PollTypeSingleChoice {
		voted, err := o.votes.HasVoteInPoll(ctx, poll.ID, anonID, voterRef)
		if err != nil {
			return models.Vote{}, err
		}
		if voted {
			return models.Vote{}, rejected(CodeAlreadyVotedInPoll, "can only vote once in this poll")
		}
	}

	// 6. Commit: constrained insert plus has_voted flip in one transaction
	vote := models.Vote{
		ID:         uuid.NewString(),
		PollOption: option.ID,
		AnonID:     anonID,
		VoterID:    voterRef,
		CreatedAt:  o.now().UTC(),
	}

	committed, err := o.votes.CastVote(ctx, vote)
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent identical cast
		return models.Vote{}, rejected(CodeAlreadyVoted, "already voted")
	}
	if err != nil {
		return models.Vote{}, err
	}

	slog.Info("vote cast",
		"poll_id", poll.ID,
		"option_id", option.ID,
		"controlled", voter != nil,
	)

	return committed, nil
}
