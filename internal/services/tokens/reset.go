// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/services/password"
)

// ResetManager lets users set a new password through an emailed link.
// Each account holds at most one live reset token.
type ResetManager struct {
	repo      *repository.Repository
	notifier  Notifier
	validator *password.Validator
	ttl       time.Duration
	now       func() time.Time
}

// NewResetManager creates a manager. A zero ttl means ResetTTL.
func NewResetManager(repo *repository.Repository, notifier Notifier, ttl time.Duration, now func() time.Time) *ResetManager {
	if ttl <= 0 {
		ttl = ResetTTL
	}
	return &ResetManager{
		repo:      repo,
		notifier:  notifier,
		validator: password.DefaultValidator(),
		ttl:       ttl,
		now:       now,
	}
}

// Issue replaces any reset tokens of the account registered under email and
// emails the new link. An unknown email is a silent no-op.
// Send failures are returned wrapped in ErrSend.
func (m *ResetManager) Issue(ctx context.Context, email string) error {
	user, err := m.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Info("password_reset_unknown_email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, hash, err := Generate()
	if err != nil {
		return err
	}

	err = m.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.DeleteUserResetTokens(ctx, user.ID); err != nil {
			return err
		}
		return tx.CreateResetToken(ctx, user.ID, hash, m.now())
	})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := m.notifier.SendPasswordReset(ctx, user.Email, token); err != nil {
		slog.Error("password_reset_send_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	slog.Info("password_reset_requested", "user_id", user.ID)
	return nil
}

// Validate returns the account bound to an unexpired token without consuming it.
// An expired token is deleted and ErrExpired returned.
func (m *ResetManager) Validate(ctx context.Context, token string) (*models.User, error) {
	rt, err := m.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := m.repo.GetUserByID(ctx, rt.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Complete sets a new password and deletes the token. The token is checked
// for freshness again, and the password rules are enforced before anything
// is written. No session is created.
func (m *ResetManager) Complete(ctx context.Context, token, newPassword, confirmation string) error {
	rt, err := m.lookup(ctx, token)
	if err != nil {
		return err
	}

	if err := m.validator.Check(newPassword, confirmation); err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	now := m.now()
	err = m.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.DeleteResetToken(ctx, rt.ID); err != nil {
			return err
		}
		return tx.UpdateUserPassword(ctx, rt.UserID, hash, now)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	slog.Info("password_reset_success", "user_id", rt.UserID)
	return nil
}

// PruneExpired deletes reset tokens whose window has closed.
func (m *ResetManager) PruneExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpiredResetTokens(ctx, m.now().Add(-m.ttl))
}

func (m *ResetManager) lookup(ctx context.Context, token string) (*models.ResetToken, error) {
	rt, err := m.repo.GetResetToken(ctx, Hash(token))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	if models.Expired(rt.CreatedAt, m.ttl, m.now()) {
		if err := m.repo.DeleteResetToken(ctx, rt.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to delete expired token: %w", err)
		}
		slog.Info("password_reset_expired", "user_id", rt.UserID)
		return nil, ErrExpired
	}
	return rt, nil
}
