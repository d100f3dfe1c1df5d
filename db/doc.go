// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables for the chosen dialect:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - creator: Poll-owner accounts
  - poll: Poll metadata, type, expiry, active flag
  - poll_option: Voting options per poll
  - voter: Controlled roster entries with hashed temp credentials
  - vote: The append-only vote ledger

# Relationships

	creator 1──* poll
	poll 1──* poll_option
	poll 1──* voter
	poll_option 1──* vote
	voter 1──* vote (optional linkage)

Poll-owned rows cascade on poll deletion.

# Uniqueness Constraints

Correctness of the voting core rests on these:

  - vote.(option_id, anon_id) — at most one vote per identity per option;
    the insert races resolve here, not in application code
  - voter.(poll_id, email) — one roster entry per email per poll
  - voter.(poll_id, anon_id) — pseudonymous ids are unique within a poll
  - creator.email
*/
package db
