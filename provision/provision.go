// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/mailer"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/store"
)

// ErrMissingEmail rejects a batch before any entry is provisioned.
var ErrMissingEmail = errors.New("each voter entry requires an email")

// Service builds controlled roster entries and dispatches credential
// notifications.
type Service struct {
	voters      store.VoterStore
	mail        mailer.Sender
	frontendURL string
	now         func() time.Time
}

func NewService(voters store.VoterStore, mail mailer.Sender, frontendURL string) *Service {
	return &Service{
		voters:      voters,
		mail:        mail,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// ProvisionVoter creates or re-issues the (poll, email) roster entry.
// Returns the voter, whether it was newly created, and the plaintext
// temporary password when one was issued.
//
// A voter who already voted is never touched: re-provisioning would
// silently invalidate the identity linkage of their vote. That call
// returns the stored voter with an empty password.
func (s *Service) ProvisionVoter(ctx context.Context, poll models.Poll, email string, notify bool) (models.Voter, bool, string, error) {
	plainPW, err := auth.GenerateTempPassword()
	if err != nil {
		return models.Voter{}, false, "", err
	}
	anonID, err := auth.GenerateAnonID(email, poll.ID)
	if err != nil {
		return models.Voter{}, false, "", err
	}
	hashed, err := auth.HashPassword(plainPW)
	if err != nil {
		return models.Voter{}, false, "", err
	}

	now := s.now().UTC()

	voter, err := s.voters.FindVoterByEmail(ctx, poll.ID, email)
	if errors.Is(err, store.ErrNotFound) {
		voter = models.Voter{
			ID:               uuid.NewString(),
			PollID:           poll.ID,
			Email:            email,
			TempPasswordHash: hashed,
			AnonID:           anonID,
			HasVoted:         false,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		err = s.voters.InsertVoter(ctx, voter)
		if errors.Is(err, store.ErrDuplicate) {
			// Concurrent provision won; fall through to the re-issue path
			voter, err = s.voters.FindVoterByEmail(ctx, poll.ID, email)
			if err != nil {
				return models.Voter{}, false, "", err
			}
		} else if err != nil {
			return models.Voter{}, false, "", err
		} else {
			if notify {
				s.notify(poll, email, anonID, plainPW)
			}
			return voter, true, plainPW, nil
		}
	} else if err != nil {
		return models.Voter{}, false, "", err
	}

	if voter.HasVoted {
		return voter, false, "", nil
	}

	// Re-issue: fresh anon_id and password, so lost credentials can be
	// re-sent before the voter has voted.
	if err := s.voters.ReissueCredentials(ctx, voter.ID, anonID, hashed, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Voter voted between the read and the guarded update
			return voter, false, "", nil
		}
		return models.Voter{}, false, "", err
	}
	voter.AnonID = anonID
	voter.TempPasswordHash = hashed
	voter.UpdatedAt = now

	return voter, false, plainPW, nil
}

// ProvisionVoters provisions a roster batch. The whole batch is rejected
// before any write when an entry lacks an email; after that, entries are
// independent and an entry's failure never rolls back earlier ones.
//
// Unlike the single-entry path, the batch notifies every entry that
// received a credential, re-issued ones included.
func (s *Service) ProvisionVoters(ctx context.Context, poll models.Poll, emails []string) ([]models.ProvisionResult, error) {
	for _, email := range emails {
		if strings.TrimSpace(email) == "" {
			return nil, ErrMissingEmail
		}
	}

	results := make([]models.ProvisionResult, 0, len(emails))
	for _, email := range emails {
		voter, created, plainPW, err := s.ProvisionVoter(ctx, poll, email, false)
		if err != nil {
			slog.Error("voter provisioning failed",
				"error", err,
				"poll_id", poll.ID,
			)
			continue
		}

		if plainPW != "" {
			s.notify(poll, email, voter.AnonID, plainPW)
		}

		results = append(results, models.ProvisionResult{
			Email:        email,
			TempPassword: plainPW,
			AnonID:       voter.AnonID,
			Created:      created,
		})
	}

	return results, nil
}

// notify dispatches the credentials mail. Delivery failure is logged and
// never fails provisioning.
func (s *Service) notify(poll models.Poll, email, anonID, plainPW string) {
	subject := mailer.CredentialsSubject(poll.Title)
	body := mailer.CredentialsBody(poll.Title, plainPW, anonID, s.frontendURL, poll.ExpiresAt)

	if err := s.mail.Send(email, subject, body); err != nil {
		slog.Warn("failed to send voter credentials",
			"error", fmt.Errorf("credentials mail: %w", err),
			"poll_id", poll.ID,
		)
	}
}
