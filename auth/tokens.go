// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// VoterClaims identifies a roster voter within a single poll.
type VoterClaims struct {
	VoterID string
	PollID  string
}

// IssueAccessToken creates a signed creator access token.
func IssueAccessToken(creatorID string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"creator_id": creatorID,
		"exp":        time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ResolveAccessToken verifies a creator access token and returns the creator id.
func ResolveAccessToken(tokenString string, secret []byte) (string, error) {
	claims, err := parseHS256(tokenString, secret)
	if err != nil {
		return "", err
	}

	creatorID, ok := claims["creator_id"].(string)
	if !ok || creatorID == "" {
		return "", ErrInvalidToken
	}
	return creatorID, nil
}

// IssueVoterToken creates a short-lived session token embedding the voter
// and poll identity. Voter tokens are scoped to exactly one poll.
func IssueVoterToken(voterID, pollID string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"voter_id": voterID,
		"poll_id":  pollID,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ResolveVoterToken verifies a voter session token. Returns ErrInvalidToken
// on expiry, tamper, or a malformed token.
func ResolveVoterToken(tokenString string, secret []byte) (VoterClaims, error) {
	claims, err := parseHS256(tokenString, secret)
	if err != nil {
		return VoterClaims{}, err
	}

	voterID, ok1 := claims["voter_id"].(string)
	pollID, ok2 := claims["poll_id"].(string)
	if !ok1 || !ok2 || voterID == "" || pollID == "" {
		return VoterClaims{}, ErrInvalidToken
	}

	return VoterClaims{VoterID: voterID, PollID: pollID}, nil
}

func parseHS256(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
