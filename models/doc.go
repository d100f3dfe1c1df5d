// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest / LoginRequest: creator credentials
  - CreatePollRequest: title, description, poll_type, options
  - CastVoteRequest: poll_option plus one of anon_id, voter_token, voter
  - UploadVotersRequest: list of {email} roster entries
  - VoterLoginRequest: email, temp_password, poll_id

# Response Types

Types for JSON responses:

  - LoginResponse: access_token
  - VoterLoginResponse: voter_token, anon_id
  - UploadVotersResponse: per-entry provisioning outcomes
  - OptionResult: option_id, text, votes_count
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Creator: poll-owner account
  - Poll: poll metadata, type, expiry, active flag
  - PollOption: voting option with label
  - Voter: controlled roster entry with pseudonymous anon_id
  - Vote: a single cast vote, keyed by (poll_option, anon_id)

Credential hashes and voter tokens are never serialized.

# Constants

Poll types:

	PollTypeSingleChoice   = "single_choice"
	PollTypeMultipleChoice = "multiple_choice"
*/
package models
