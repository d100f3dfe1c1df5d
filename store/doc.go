// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines narrow storage ports per entity and their SQL
implementation.

# Ports

Each entity gets its own interface with point operations:

  - CreatorStore: insert, find by email/id
  - PollStore: transactional poll+options creation, lookups, results
  - VoterStore: insert, unique-key lookups, credential reissue
  - VoteStore: existence checks and the atomic CastVote commit

Services depend on these interfaces, never on a *sql.DB.

# Errors

Row absence is ErrNotFound; uniqueness-constraint hits are ErrDuplicate.
Driver-level errors (pq SQLSTATE 23505, sqlite "UNIQUE constraint
failed") never leak past this package.

# Transactions

CreatePoll writes the poll and every option in one transaction. CastVote
inserts the vote row and flips the roster voter's has_voted flag in one
transaction; the (option_id, anon_id) uniqueness constraint resolves
concurrent duplicate casts at commit time.

# Implementation

New(db) returns a *SQL implementing all ports. Queries use $N
placeholders bound once each, in order, so the same statements run on
both lib/pq and modernc/sqlite.
*/
package store
