// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the vote-cast state machine.

# Checks

CastVote evaluates checks strictly in order; the first failure wins:

 1. Poll exists
 2. Option exists within that poll
 3. Casting identity resolves (voter token > voter id > anon_id >
    fresh random id); a roster voter's stored anon_id overrides the
    caller's
 4. Poll is active and not expired
 5. No prior vote: has_voted for roster voters, exact
    (option, anon_id) duplicate, and the poll-wide single-choice check
 6. Commit: one transaction inserting the vote and flipping has_voted

# Errors

Rejections are *voting.Error values tagged with a Code so transports can
map them (CodePollNotFound → 404, the rest → 400). A storage-level
uniqueness race on commit surfaces as CodeAlreadyVoted, identical to the
pre-check result - never as a server error.

# Single vs Multiple Choice

Multiple-choice polls allow the same identity to vote for distinct
options; single-choice polls reject any second vote poll-wide, matching
by anon_id or the voter reference.
*/
package voting
