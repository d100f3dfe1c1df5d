// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package provision_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/provision"
	"github.com/pollbox/pollbox/store"
	"github.com/pollbox/pollbox/testutil"
)

// fakeSender records every dispatched mail.
type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fixture struct {
	svc    *provision.Service
	store  *store.SQL
	mail   *fakeSender
	conn   *sql.DB
	pollID string
}

func setupService(t *testing.T) fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	mail := &fakeSender{}
	return fixture{
		svc:    provision.NewService(s, mail, "http://localhost:3000"),
		store:  s,
		mail:   mail,
		conn:   conn,
		pollID: testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice),
	}
}

func (f fixture) poll(t *testing.T) models.Poll {
	t.Helper()
	poll, err := f.store.GetPoll(context.Background(), f.pollID)
	if err != nil {
		t.Fatalf("GetPoll() error = %v", err)
	}
	return poll
}

func TestProvisionVoter_CreatesAndNotifies(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	voter, created, plainPW, err := f.svc.ProvisionVoter(ctx, f.poll(t), "voter@test.com", true)
	if err != nil {
		t.Fatalf("ProvisionVoter() error = %v", err)
	}
	if !created {
		t.Error("created = false for a new voter, want true")
	}
	if plainPW == "" {
		t.Error("no temporary password issued")
	}
	if voter.Email != "voter@test.com" {
		t.Errorf("Email = %q, want voter@test.com", voter.Email)
	}
	if voter.AnonID == "" {
		t.Error("no anon id assigned")
	}

	// The password is stored hashed, never in plaintext
	if voter.TempPasswordHash == plainPW {
		t.Error("temporary password stored in plaintext")
	}
	if !auth.CheckPassword(voter.TempPasswordHash, plainPW) {
		t.Error("stored hash does not match the issued password")
	}

	if len(f.mail.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(f.mail.sent))
	}
	if f.mail.sent[0].to != "voter@test.com" {
		t.Errorf("mail to = %q, want voter@test.com", f.mail.sent[0].to)
	}
	if !strings.Contains(f.mail.sent[0].body, plainPW) {
		t.Error("credentials mail does not contain the temporary password")
	}
}

func TestProvisionVoter_ReissueRotatesCredentials(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	poll := f.poll(t)

	first, _, firstPW, err := f.svc.ProvisionVoter(ctx, poll, "voter@test.com", false)
	if err != nil {
		t.Fatalf("first ProvisionVoter() error = %v", err)
	}

	second, created, secondPW, err := f.svc.ProvisionVoter(ctx, poll, "voter@test.com", false)
	if err != nil {
		t.Fatalf("second ProvisionVoter() error = %v", err)
	}
	if created {
		t.Error("created = true on re-provision, want false")
	}
	if second.ID != first.ID {
		t.Error("re-provision created a second roster entry")
	}
	if second.AnonID == first.AnonID {
		t.Error("anon id not rotated on re-provision")
	}
	if secondPW == firstPW {
		t.Error("temporary password not rotated on re-provision")
	}

	// The roster holds exactly one entry for the email
	count, err := f.store.CountVoters(ctx, f.pollID)
	if err != nil {
		t.Fatalf("CountVoters() error = %v", err)
	}
	if count != 1 {
		t.Errorf("roster size = %d, want 1", count)
	}
}

func TestProvisionVoter_VotedVoterUntouched(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	poll := f.poll(t)

	voter, _, _, err := f.svc.ProvisionVoter(ctx, poll, "voter@test.com", false)
	if err != nil {
		t.Fatalf("ProvisionVoter() error = %v", err)
	}

	optionID := testutil.AddTestOption(t, f.conn, f.pollID, "Yes")
	if _, err := f.store.CastVote(ctx, models.Vote{
		ID:         uuid.NewString(),
		PollOption: optionID,
		AnonID:     voter.AnonID,
		VoterID:    &voter.ID,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	got, created, plainPW, err := f.svc.ProvisionVoter(ctx, poll, "voter@test.com", true)
	if err != nil {
		t.Fatalf("re-provision after vote error = %v", err)
	}
	if created {
		t.Error("created = true for an existing voted voter")
	}
	if plainPW != "" {
		t.Error("credentials issued for a voted voter")
	}
	if got.AnonID != voter.AnonID {
		t.Error("voted voter's anon id was rotated")
	}
	if len(f.mail.sent) != 0 {
		t.Errorf("sent %d mails for a voted voter, want 0", len(f.mail.sent))
	}
}

func TestProvisionVoters_Batch(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	results, err := f.svc.ProvisionVoters(ctx, f.poll(t), []string{"a@test.com", "b@test.com"})
	if err != nil {
		t.Fatalf("ProvisionVoters() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if !r.Created {
			t.Errorf("Created = false for %s, want true", r.Email)
		}
		if r.TempPassword == "" {
			t.Errorf("no password issued for %s", r.Email)
		}
	}
	if len(f.mail.sent) != 2 {
		t.Errorf("sent %d mails, want 2", len(f.mail.sent))
	}
}

func TestProvisionVoters_MissingEmailRejectsBatch(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	_, err := f.svc.ProvisionVoters(ctx, f.poll(t), []string{"a@test.com", "  "})
	if !errors.Is(err, provision.ErrMissingEmail) {
		t.Fatalf("ProvisionVoters() error = %v, want ErrMissingEmail", err)
	}

	// Nothing was written
	count, _ := f.store.CountVoters(ctx, f.pollID)
	if count != 0 {
		t.Errorf("roster size = %d after rejected batch, want 0", count)
	}
}

func TestProvisionVoters_ReissueNotifiesAgain(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	poll := f.poll(t)

	if _, err := f.svc.ProvisionVoters(ctx, poll, []string{"a@test.com"}); err != nil {
		t.Fatalf("first batch error = %v", err)
	}
	results, err := f.svc.ProvisionVoters(ctx, poll, []string{"a@test.com"})
	if err != nil {
		t.Fatalf("second batch error = %v", err)
	}

	if results[0].Created {
		t.Error("Created = true on re-provision, want false")
	}
	// Both batches carried credentials for a not-yet-voted voter
	if len(f.mail.sent) != 2 {
		t.Errorf("sent %d mails, want 2", len(f.mail.sent))
	}

	count, _ := f.store.CountVoters(ctx, f.pollID)
	if count != 1 {
		t.Errorf("roster size = %d, want 1", count)
	}
}

func TestProvisionVoter_MailFailureIsNotFatal(t *testing.T) {
	f := setupService(t)
	f.mail.err = errors.New("relay down")
	ctx := context.Background()

	_, created, plainPW, err := f.svc.ProvisionVoter(ctx, f.poll(t), "voter@test.com", true)
	if err != nil {
		t.Fatalf("ProvisionVoter() error = %v, want delivery failure swallowed", err)
	}
	if !created || plainPW == "" {
		t.Error("provisioning did not complete despite mail failure")
	}
}
