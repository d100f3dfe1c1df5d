// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

// Code tags the reason a vote was rejected.
type Code int

const (
	CodePollNotFound Code = iota
	CodeOptionNotFound
	CodeInvalidVoterToken
	CodeVoterNotFound
	CodeNotActive
	CodeExpired
	CodeAnonymousNotAllowed
	CodeAlreadyVoted
	CodeDuplicateOption
	CodeAlreadyVotedInPoll
)

// Error is the typed rejection produced by the vote state machine. The
// ordered checks return the first failing variant; callers map Code to
// transport semantics.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func rejected(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}
