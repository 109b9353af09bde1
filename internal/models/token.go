// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// VerificationToken binds a pending account to a signup verification link.
// An account holds at most one.
type VerificationToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	TokenHash string    `db:"token_hash" json:"-"` // SHA256 hash
	UserID    int64     `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ResetToken binds an account to a password reset link.
type ResetToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	TokenHash string    `db:"token_hash" json:"-"` // SHA256 hash
	UserID    int64     `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether a token created at createdAt is past its window at now.
// A token presented exactly at createdAt+ttl is still valid.
func Expired(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	return now.After(createdAt.Add(ttl))
}
