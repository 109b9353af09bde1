// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package tokens issues and redeems the one-time links that gate account
// activation and password reset. Tokens are single-use and time-boxed:
// presenting one after its window deletes it.
package tokens

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/services/password"
)

const (
	// TokenLength is the number of random bytes in a token.
	TokenLength = 32
	// VerificationTTL is how long a signup verification link is valid.
	VerificationTTL = 24 * time.Hour
	// ResetTTL is how long a password reset link is valid.
	ResetTTL = time.Hour
)

var (
	ErrNotFound     = errors.New("token not found")
	ErrExpired      = errors.New("token expired")
	ErrWeakPassword = password.ErrWeak
	ErrMismatch     = password.ErrMismatch
	ErrSend         = errors.New("failed to send email")
)

// Notifier delivers the links that carry a token.
type Notifier interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Generate returns a new random token and the SHA256 hash stored for it.
func Generate() (plaintext, hash string, err error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	plaintext = hex.EncodeToString(b)
	return plaintext, Hash(plaintext), nil
}

// Hash computes the SHA256 hash of a token.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
