// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/models"
)

// CreateVerificationToken stores a verification token hash for a user.
func (r *Repository) CreateVerificationToken(ctx context.Context, userID int64, tokenHash string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_tokens (user_id, token_hash, created_at) VALUES (?, ?, ?)`,
		userID, tokenHash, now)
	return wrapError(err)
}

// GetVerificationToken retrieves a verification token by hash.
func (r *Repository) GetVerificationToken(ctx context.Context, tokenHash string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM verification_tokens WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// DeleteVerificationToken deletes a token by ID.
// It returns ErrNotFound when the token was already removed.
func (r *Repository) DeleteVerificationToken(ctx context.Context, tokenID int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE id = ?`, tokenID))
}

// DeleteExpiredVerificationTokens deletes tokens created before cutoff.
func (r *Repository) DeleteExpiredVerificationTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateResetToken stores a password reset token hash for a user.
func (r *Repository) CreateResetToken(ctx context.Context, userID int64, tokenHash string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reset_tokens (user_id, token_hash, created_at) VALUES (?, ?, ?)`,
		userID, tokenHash, now)
	return wrapError(err)
}

// GetResetToken retrieves a reset token by hash.
func (r *Repository) GetResetToken(ctx context.Context, tokenHash string) (*models.ResetToken, error) {
	var token models.ResetToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM reset_tokens WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// DeleteResetToken deletes a token by ID.
// It returns ErrNotFound when the token was already removed.
func (r *Repository) DeleteResetToken(ctx context.Context, tokenID int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE id = ?`, tokenID))
}

// DeleteUserResetTokens deletes all reset tokens of a user.
func (r *Repository) DeleteUserResetTokens(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE user_id = ?`, userID)
	return err
}

// CountUserResetTokens returns how many reset tokens a user holds.
func (r *Repository) CountUserResetTokens(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM reset_tokens WHERE user_id = ?`, userID)
	return n, err
}

// DeleteExpiredResetTokens deletes tokens created before cutoff.
func (r *Repository) DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
