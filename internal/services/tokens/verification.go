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
)

// VerificationManager activates accounts through emailed signup links.
type VerificationManager struct {
	repo     *repository.Repository
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
}

// NewVerificationManager creates a manager. A zero ttl means VerificationTTL.
func NewVerificationManager(repo *repository.Repository, notifier Notifier, ttl time.Duration, now func() time.Time) *VerificationManager {
	if ttl <= 0 {
		ttl = VerificationTTL
	}
	return &VerificationManager{repo: repo, notifier: notifier, ttl: ttl, now: now}
}

// Issue stores a verification token for an inactive account and emails the link.
// A failed send is logged only; the token stays valid.
func (m *VerificationManager) Issue(ctx context.Context, user *models.User) (string, error) {
	token, err := m.Store(ctx, m.repo, user)
	if err != nil {
		return "", err
	}
	m.Send(ctx, user, token)
	return token, nil
}

// Store writes a new verification token for user through repo, which may be
// bound to a transaction. Nothing is mailed.
func (m *VerificationManager) Store(ctx context.Context, repo *repository.Repository, user *models.User) (string, error) {
	if user.IsActive {
		return "", fmt.Errorf("user %d is already active", user.ID)
	}

	token, hash, err := Generate()
	if err != nil {
		return "", err
	}

	if err := repo.CreateVerificationToken(ctx, user.ID, hash, m.now()); err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}
	return token, nil
}

// Send mails the verification link. Failures are logged only.
func (m *VerificationManager) Send(ctx context.Context, user *models.User, token string) {
	if err := m.notifier.SendVerification(ctx, user.Email, token); err != nil {
		slog.Error("verification_send_failed", "user_id", user.ID, "error", err)
	}
}

// Consume activates the account bound to token and deletes the token.
// An expired token is deleted and ErrExpired returned; the account stays inactive.
func (m *VerificationManager) Consume(ctx context.Context, token string) (*models.User, error) {
	vt, err := m.repo.GetVerificationToken(ctx, Hash(token))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}

	now := m.now()
	if models.Expired(vt.CreatedAt, m.ttl, now) {
		if err := m.repo.DeleteVerificationToken(ctx, vt.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to delete expired token: %w", err)
		}
		slog.Info("verification_expired", "user_id", vt.UserID)
		return nil, ErrExpired
	}

	var user *models.User
	err = m.repo.InTx(ctx, func(tx *repository.Repository) error {
		// A concurrent consumer that deleted the row first wins.
		if err := tx.DeleteVerificationToken(ctx, vt.ID); err != nil {
			return err
		}
		if err := tx.ActivateUser(ctx, vt.UserID, now); err != nil {
			return err
		}
		var err error
		user, err = tx.GetUserByID(ctx, vt.UserID)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	slog.Info("verification_success", "user_id", user.ID)
	return user, nil
}

// PruneExpired deletes verification tokens whose window has closed.
func (m *VerificationManager) PruneExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpiredVerificationTokens(ctx, m.now().Add(-m.ttl))
}

// TTL returns the verification window.
func (m *VerificationManager) TTL() time.Duration {
	return m.ttl
}
