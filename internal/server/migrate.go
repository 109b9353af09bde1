// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"codeberg.org/oliverandrich/localeats/internal/database"
	"github.com/urfave/cli/v3"
)

// MigrateStatus is the CLI action printing the applied state of each migration.
// Opening the database applies pending migrations first.
func MigrateStatus(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(&cfg.Log)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	states, err := database.Status(ctx, db.DB)
	if err != nil {
		return err
	}
	return printStatus(cmd.Root().Writer, states)
}

// MigrateDown is the CLI action rolling back the most recent migration.
func MigrateDown(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(&cfg.Log)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return database.MigrateDown(ctx, db.DB)
}

func printStatus(w io.Writer, states []database.MigrationState) error {
	for _, s := range states {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		if _, err := fmt.Fprintf(w, "%05d  %-8s %s\n", s.Version, state, s.Path); err != nil {
			return err
		}
	}
	return nil
}
