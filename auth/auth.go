// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const tempPasswordLen = 10

const tempPasswordChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt hash.
// The plaintext is never compared to anything but the hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GenerateTempPassword creates a random fixed-length alphanumeric password.
// It is a one-time shared secret delivered out-of-band, not a long-term
// credential.
func GenerateTempPassword() (string, error) {
	b := make([]byte, tempPasswordLen)
	max := big.NewInt(int64(len(tempPasswordChars)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate temp password: %w", err)
		}
		b[i] = tempPasswordChars[n.Int64()]
	}
	return string(b), nil
}

// GenerateAnonID derives a pseudonymous voter identity from the email, the
// poll and a fresh random component. The random component makes the id
// unlinkable across re-issues and across polls.
func GenerateAnonID(email, pollID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate anon id: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(email))
	h.Write([]byte(pollID))
	h.Write(nonce)
	sum := h.Sum(nil)

	// 32 hex chars is plenty for per-poll uniqueness
	return hex.EncodeToString(sum[:16]), nil
}

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}
