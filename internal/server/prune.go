// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"codeberg.org/oliverandrich/localeats/internal/database"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/services/tokens"
	"github.com/urfave/cli/v3"
)

// PruneResult counts the rows removed by a prune run.
type PruneResult struct {
	VerificationTokens int64
	ResetTokens        int64
	InactiveAccounts   int64
}

// Prune is the CLI action deleting expired tokens and, with
// --inactive-accounts, accounts that were never verified.
func Prune(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(&cfg.Log)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	res, err := prune(ctx, repository.New(db), &cfg.Auth, cmd.Bool("inactive-accounts"), Now)
	if err != nil {
		return err
	}

	slog.Info("prune_done",
		"verification_tokens", res.VerificationTokens,
		"reset_tokens", res.ResetTokens,
		"inactive_accounts", res.InactiveAccounts,
	)
	return nil
}

func prune(ctx context.Context, repo *repository.Repository, cfg *config.AuthConfig, inactive bool, now func() time.Time) (*PruneResult, error) {
	// Pruning never sends mail.
	verification := tokens.NewVerificationManager(repo, nil, cfg.VerificationTTL, now)
	reset := tokens.NewResetManager(repo, nil, cfg.ResetTTL, now)

	var (
		res PruneResult
		err error
	)
	if res.VerificationTokens, err = verification.PruneExpired(ctx); err != nil {
		return nil, fmt.Errorf("failed to prune verification tokens: %w", err)
	}
	if res.ResetTokens, err = reset.PruneExpired(ctx); err != nil {
		return nil, fmt.Errorf("failed to prune reset tokens: %w", err)
	}

	if inactive {
		cutoff := now().Add(-verification.TTL())
		if res.InactiveAccounts, err = repo.DeleteStaleInactiveUsers(ctx, cutoff); err != nil {
			return nil, fmt.Errorf("failed to prune inactive accounts: %w", err)
		}
	}
	return &res, nil
}
