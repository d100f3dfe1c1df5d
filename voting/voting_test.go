// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting_test

import (
	"context"
	"testing"
	"time"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/store"
	"github.com/pollbox/pollbox/testutil"
	"github.com/pollbox/pollbox/voting"
)

func wantRejection(t *testing.T, err error, code voting.Code, message string) {
	t.Helper()
	verr, ok := err.(*voting.Error)
	if !ok {
		t.Fatalf("error = %v, want *voting.Error", err)
	}
	if verr.Code != code {
		t.Errorf("Code = %v, want %v", verr.Code, code)
	}
	if verr.Message != message {
		t.Errorf("Message = %q, want %q", verr.Message, message)
	}
}

func TestCastVote_AnonymousSucceeds(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")

	vote, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:   pollID,
		OptionID: optionID,
		AnonID:   "anon-1",
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if vote.AnonID != "anon-1" {
		t.Errorf("AnonID = %q, want anon-1", vote.AnonID)
	}
	if vote.PollOption != optionID {
		t.Errorf("PollOption = %q, want %q", vote.PollOption, optionID)
	}
	if vote.VoterID != nil {
		t.Error("VoterID set on an anonymous vote")
	}
}

func TestCastVote_FreshAnonIDWhenOmitted(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")

	v1, err := o.CastVote(context.Background(), voting.CastRequest{PollID: pollID, OptionID: optionID})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if v1.AnonID == "" {
		t.Fatal("AnonID empty, want a fresh generated id")
	}
	if len(v1.AnonID) != 32 {
		t.Errorf("AnonID length = %d, want 32 hex chars", len(v1.AnonID))
	}

	// A second identity-less cast gets its own fresh id and is allowed
	v2, err := o.CastVote(context.Background(), voting.CastRequest{PollID: pollID, OptionID: optionID})
	if err != nil {
		t.Fatalf("second CastVote() error = %v", err)
	}
	if v1.AnonID == v2.AnonID {
		t.Error("two identity-less casts shared an anon id")
	}
}

func TestCastVote_PollNotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:   "missing-poll",
		OptionID: "whatever",
		AnonID:   "anon-1",
	})
	wantRejection(t, err, voting.CodePollNotFound, "poll not found")
}

func TestCastVote_OptionNotInPoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollA := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	pollB := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	foreignOption := testutil.AddTestOption(t, conn, pollB, "Elsewhere")

	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:   pollA,
		OptionID: foreignOption,
		AnonID:   "anon-1",
	})
	wantRejection(t, err, voting.CodeOptionNotFound, "option does not exist for this poll")
}

func TestCastVote_InactivePoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")
	testutil.DeactivatePoll(t, conn, pollID)

	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:   pollID,
		OptionID: optionID,
		AnonID:   "anon-1",
	})
	wantRejection(t, err, voting.CodeNotActive, "poll is not active")
}

func TestCastVote_ExpiredPoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")
	testutil.ExpirePoll(t, conn, pollID)

	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:   pollID,
		OptionID: optionID,
		AnonID:   "anon-1",
	})
	wantRejection(t, err, voting.CodeExpired, "poll has expired")
}

func TestCastVote_DuplicateOption(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeMultipleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")

	req := voting.CastRequest{PollID: pollID, OptionID: optionID, AnonID: "anon-1"}
	if _, err := o.CastVote(context.Background(), req); err != nil {
		t.Fatalf("first CastVote() error = %v", err)
	}

	_, err := o.CastVote(context.Background(), req)
	wantRejection(t, err, voting.CodeDuplicateOption, "already voted for this option")
}

func TestCastVote_SingleChoiceOnePerPoll(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optYes := testutil.AddTestOption(t, conn, pollID, "Yes")
	optNo := testutil.AddTestOption(t, conn, pollID, "No")

	if _, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID: pollID, OptionID: optYes, AnonID: "anon-1",
	}); err != nil {
		t.Fatalf("first CastVote() error = %v", err)
	}

	// Same identity, different option: blocked on a single-choice poll
	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID: pollID, OptionID: optNo, AnonID: "anon-1",
	})
	wantRejection(t, err, voting.CodeAlreadyVotedInPoll, "can only vote once in this poll")

	// A different identity is unaffected
	if _, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID: pollID, OptionID: optNo, AnonID: "anon-2",
	}); err != nil {
		t.Errorf("CastVote() for a second identity error = %v", err)
	}
}

func TestCastVote_MultipleChoiceAllowsSeveralOptions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeMultipleChoice)
	optA := testutil.AddTestOption(t, conn, pollID, "Apple")
	optB := testutil.AddTestOption(t, conn, pollID, "Banana")

	for _, opt := range []string{optA, optB} {
		if _, err := o.CastVote(context.Background(), voting.CastRequest{
			PollID: pollID, OptionID: opt, AnonID: "anon-1",
		}); err != nil {
			t.Fatalf("CastVote() for option %s error = %v", opt, err)
		}
	}
}

func TestCastVote_AnonymousNotAllowed(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")
	if _, err := conn.Exec(`UPDATE poll SET allow_anonymous = FALSE WHERE id = $1`, pollID); err != nil {
		t.Fatalf("failed to restrict poll: %v", err)
	}

	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:   pollID,
		OptionID: optionID,
		AnonID:   "anon-1",
	})
	wantRejection(t, err, voting.CodeAnonymousNotAllowed, "poll does not allow anonymous voting")
}

func TestCastVote_VoterTokenIdentity(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")
	voter := testutil.CreateTestVoter(t, conn, pollID, "voter@test.com", "temppw1234")

	token, err := auth.IssueVoterToken(voter.ID, pollID, []byte("test-jwt-secret"), time.Hour)
	if err != nil {
		t.Fatalf("IssueVoterToken() error = %v", err)
	}

	// The caller's anon id is ignored; the roster identity wins
	vote, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:     pollID,
		OptionID:   optionID,
		AnonID:     "spoofed-anon",
		VoterToken: token,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if vote.AnonID != voter.AnonID {
		t.Errorf("AnonID = %q, want roster anon id %q", vote.AnonID, voter.AnonID)
	}
	if vote.VoterID == nil || *vote.VoterID != voter.ID {
		t.Error("VoterID not linked to the roster voter")
	}
}

func TestCastVote_InvalidVoterToken(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	otherPoll := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")
	voter := testutil.CreateTestVoter(t, conn, otherPoll, "voter@test.com", "temppw1234")

	crossPollToken, _ := auth.IssueVoterToken(voter.ID, otherPoll, []byte("test-jwt-secret"), time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage token", "not-a-jwt"},
		{"token for a different poll", crossPollToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.CastVote(context.Background(), voting.CastRequest{
				PollID:     pollID,
				OptionID:   optionID,
				VoterToken: tt.token,
			})
			wantRejection(t, err, voting.CodeInvalidVoterToken, "invalid voter token")
		})
	}
}

func TestCastVote_VoterAlreadyVoted(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeMultipleChoice)
	optA := testutil.AddTestOption(t, conn, pollID, "Apple")
	optB := testutil.AddTestOption(t, conn, pollID, "Banana")
	voter := testutil.CreateTestVoter(t, conn, pollID, "voter@test.com", "temppw1234")

	if _, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID: pollID, OptionID: optA, VoterID: voter.ID,
	}); err != nil {
		t.Fatalf("first CastVote() error = %v", err)
	}

	// has_voted blocks roster voters even on multiple-choice polls
	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID: pollID, OptionID: optB, VoterID: voter.ID,
	})
	wantRejection(t, err, voting.CodeAlreadyVoted, "already voted")
}

func TestCastVote_UnknownVoterID(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeSingleChoice)
	optionID := testutil.AddTestOption(t, conn, pollID, "Yes")

	_, err := o.CastVote(context.Background(), voting.CastRequest{
		PollID:   pollID,
		OptionID: optionID,
		VoterID:  "no-such-voter",
	})
	wantRejection(t, err, voting.CodeVoterNotFound, "voter not found")
}

func TestCastVote_FruitPollScenario(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	o := voting.NewOrchestrator(s, s, s, []byte("test-jwt-secret"))
	ctx := context.Background()

	pollID := testutil.CreateTestPoll(t, conn, models.PollTypeMultipleChoice)
	apple := testutil.AddTestOption(t, conn, pollID, "Apple")
	banana := testutil.AddTestOption(t, conn, pollID, "Banana")
	cherry := testutil.AddTestOption(t, conn, pollID, "Cherry")

	casts := []struct {
		anonID string
		option string
	}{
		{"alice", apple},
		{"alice", banana},
		{"bob", banana},
		{"carol", banana},
		{"carol", cherry},
	}
	for _, c := range casts {
		if _, err := o.CastVote(ctx, voting.CastRequest{
			PollID: pollID, OptionID: c.option, AnonID: c.anonID,
		}); err != nil {
			t.Fatalf("CastVote(%s, %s) error = %v", c.anonID, c.option, err)
		}
	}

	results, err := s.Results(ctx, pollID)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}

	want := []struct {
		id    string
		count int
	}{
		{banana, 3},
		{apple, 1},
		{cherry, 1},
	}
	for i, w := range want {
		if results[i].OptionID != w.id || results[i].VotesCount != w.count {
			t.Errorf("results[%d] = {%s, %d}, want {%s, %d}",
				i, results[i].OptionID, results[i].VotesCount, w.id, w.count)
		}
	}
}
