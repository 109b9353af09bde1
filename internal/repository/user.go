// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/models"
)

// CreateUser inserts an inactive account.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string, now time.Time) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		username, email, passwordHash, now, now)
	if err != nil {
		return nil, wrapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UsernameExists checks whether a username is already taken.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
	return exists, err
}

// EmailTaken checks whether another account than exceptID uses email.
// Pass 0 to check against all accounts.
func (r *Repository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id != ?)`, email, exceptID)
	return exists, err
}

// ActivateUser marks an account as verified.
func (r *Repository) ActivateUser(ctx context.Context, id int64, now time.Time) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE users SET is_active = 1, updated_at = ? WHERE id = ?`, now, id))
}

// UpdateUserPassword stores a new password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string, now time.Time) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, now, id))
}

// UpdateUserEmail changes an account's email address.
func (r *Repository) UpdateUserEmail(ctx context.Context, id int64, email string, now time.Time) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`, email, now, id))
}

// DeleteUser deletes an account; tokens, reviews and favorites cascade.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

// DeleteStaleInactiveUsers deletes inactive accounts created before cutoff
// that no longer hold a verification token. Returns the number removed.
func (r *Repository) DeleteStaleInactiveUsers(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE is_active = 0
		  AND created_at < ?
		  AND id NOT IN (SELECT user_id FROM verification_tokens)`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
