// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and token primitives.

# Passwords

Creator passwords and voter temporary passwords are stored as bcrypt
hashes and verified one-way:

	hash, err := auth.HashPassword(plain)
	ok := auth.CheckPassword(hash, plain)

GenerateTempPassword produces the 10-character alphanumeric one-time
credential issued to controlled voters.

# Pseudonymous Identity

GenerateAnonID derives a voter's pseudonymous identity from the email,
the poll id, and a fresh random nonce:

	anonID, err := auth.GenerateAnonID(email, pollID)

The nonce makes ids unlinkable across re-issues; votes carry only the
anon_id, never the email.

# Session Tokens

HS256 JWTs scope a voter session to a single poll:

	token, err := auth.IssueVoterToken(voterID, pollID, secret, ttl)
	claims, err := auth.ResolveVoterToken(token, secret)

Creator access tokens work the same way with a creator_id claim.
ResolveVoterToken and ResolveAccessToken return ErrInvalidToken on
expiry, tamper, or malformed input.

# IDs

GenerateID creates random hex identifiers for anonymous fallback
identities and other non-entity tokens.
*/
package auth
