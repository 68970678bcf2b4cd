// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/krishimitra/internal/platform/migration"
)

type migrateOptions struct {
	databaseURL string
	path        string
	steps       int
}

// newMigrateCmd applies PostgreSQL migrations. DATABASE_URL and
// MIGRATION_PATH provide the defaults so the API's environment can be reused.
func newMigrateCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL schema migrations",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flags.StringVar(&opts.path, "path", envOr("MIGRATION_PATH", "./data/migrations"), "Directory holding *.sql migrations")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migration.RunUp(opts.databaseURL, opts.path, logger(cmd))
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migration.RunDown(opts.databaseURL, opts.path, opts.steps, logger(cmd))
		},
	}
	down.Flags().IntVar(&opts.steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
