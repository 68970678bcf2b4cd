// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command krishictl is the operator CLI for Krishi Mitra.
//
// It answers advisory queries against the same engine as the API and applies
// PostgreSQL migrations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Tests build their own tree per case.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "krishictl",
		Short:         "Operator tools for the Krishi Mitra API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	logger := func(cmd *cobra.Command) *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(
		newAdviseCmd(),
		newCatalogueCmd(),
		newMigrateCmd(logger),
	)
	return root
}
