// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sqlite opens the embedded single-file database used when
STORE_DRIVER=sqlite.

It exists for local runs and end-to-end tests where a PostgreSQL server is not
available. The schema is bootstrapped in place; versioned migrations only run
against PostgreSQL.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// bootstrapDDL mirrors data/migrations in SQLite's dialect. Timestamps are
// stored as unix nanoseconds.
const bootstrapDDL = `
CREATE TABLE IF NOT EXISTS farmer_identity (
	id             TEXT PRIMARY KEY,
	mobile_number  TEXT    NOT NULL UNIQUE,
	email          TEXT,
	username       TEXT,
	password_hash  TEXT,
	otp            TEXT,
	otp_expires_at INTEGER,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS farmer_identity_email_key
	ON farmer_identity (lower(email))
	WHERE email IS NOT NULL;
`

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite serialises writers; a single connection also keeps an in-memory
	// database alive and shared for the life of the pool.
	db.SetMaxOpenConns(1)

	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite_database_opened", slog.String("path", path))
	return db, nil
}

// Bootstrap applies connection pragmas and creates missing tables.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	statements := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		bootstrapDDL,
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("sqlite: bootstrap failed: %w", err)
		}
	}
	return nil
}

// Ping verifies that the database answers queries.
func Ping(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}
