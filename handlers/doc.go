// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Pollbox API.

# Handler Types

Each handler is a struct with store, service, and config dependencies:

  - AuthHandler: creator registration and login
  - PollHandler: poll creation and read endpoints
  - VoteHandler: vote casting and voter login
  - VoterHandler: roster upload
  - ResultsHandler: per-option tallies

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(sqlStore, cfg)

# Creator Flow

	POST /register → Register
	POST /login    → Login (returns access_token)
	POST /polls    → CreatePoll (Bearer optional; ownerless polls allowed)
	POST /polls/{id}/voters → UploadVoters (Bearer required)

# Voting Flow

Roster voters exchange their emailed one-time password for a
poll-scoped session token, then vote with it:

	POST /voter-login     → VoterLogin (returns voter_token, anon_id)
	POST /polls/{id}/vote → CastVote

Anonymous voters post directly with an optional anon_id; absent one, a
fresh random identity is generated.

# Results

	GET /polls/{id}/results → GetResults

Public, ordered by votes_count descending with creation-order
tie-breaks.

# Error Mapping

Orchestrator rejections map to 400 with the rejection message, except
unknown polls which map to 404. Credential failures are 401 so clients
can re-authenticate.
*/
package handlers
