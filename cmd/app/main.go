// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"codeberg.org/oliverandrich/localeats/internal/server"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "localeats",
		Usage:  "Start the LocalEats web application",
		Flags:  config.Flags(),
		Action: server.Run,
		Commands: []*cli.Command{
			{
				Name:  "prune",
				Usage: "Delete expired verification and reset tokens",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "inactive-accounts",
						Usage: "Also delete unverified accounts older than the verification window",
					},
				},
				Action: server.Prune,
			},
			{
				Name:  "migrate",
				Usage: "Inspect or roll back database migrations",
				Commands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "List migrations and whether they are applied",
						Action: server.MigrateStatus,
					},
					{
						Name:   "down",
						Usage:  "Roll back the most recent migration",
						Action: server.MigrateDown,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
