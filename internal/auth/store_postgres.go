// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/krishimitra/internal/platform/database/schema"
	"github.com/taibuivan/krishimitra/internal/platform/dberr"
	"github.com/taibuivan/krishimitra/pkg/pointer"
)

var (
	identityTable   = schema.FarmerIdentity.Table
	identityColumns = strings.Join(schema.FarmerIdentity.Columns(), ", ")
)

// PostgresStore implements [IdentityRepository] and [CodeRepository] using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the credential store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// # Identity Queries

// FindByMobile retrieves an identity by its mobile number.
func (store *PostgresStore) FindByMobile(ctx context.Context, mobile string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE mobile_number = $1`, identityColumns, identityTable)
	return store.findOne(ctx, "identity_find_by_mobile", query, mobile)
}

// FindByEmail retrieves an identity by its email, case-insensitively.
func (store *PostgresStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(email) = lower($1)`, identityColumns, identityTable)
	return store.findOne(ctx, "identity_find_by_email", query, email)
}

// FindByID retrieves an identity by its unique ID.
func (store *PostgresStore) FindByID(ctx context.Context, id string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, identityColumns, identityTable)
	return store.findOne(ctx, "identity_find_by_id", query, id)
}

func (store *PostgresStore) findOne(ctx context.Context, action, query string, arg any) (*Identity, error) {
	var (
		identity                    Identity
		email, username, hash, code *string
		codeExpiresAt               *time.Time
	)

	err := store.pool.QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Mobile,
		&email,
		&username,
		&hash,
		&code,
		&codeExpiresAt,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	identity.Email = pointer.Val(email)
	identity.Username = pointer.Val(username)
	identity.PasswordHash = pointer.Val(hash)
	identity.Code = pointer.Val(code)
	identity.CodeExpiresAt = codeExpiresAt
	return &identity, nil
}

// # Identity Mutations

// Create persists a new identity record.
func (store *PostgresStore) Create(ctx context.Context, identity *Identity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, mobile_number, email, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, identityTable)

	_, err := store.pool.Exec(ctx, query,
		identity.ID,
		identity.Mobile,
		pointer.NonZero(identity.Email),
		pointer.NonZero(identity.Username),
		pointer.NonZero(identity.PasswordHash),
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	return dberr.Wrap(err, "identity_create")
}

// Ensure inserts a code-only identity unless the mobile number is taken.
func (store *PostgresStore) Ensure(ctx context.Context, identity *Identity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, mobile_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (mobile_number) DO NOTHING`, identityTable)

	_, err := store.pool.Exec(ctx, query, identity.ID, identity.Mobile, identity.CreatedAt, identity.UpdatedAt)
	return dberr.Wrap(err, "identity_ensure")
}

// Claim sets a password and profile on a passwordless identity.
func (store *PostgresStore) Claim(ctx context.Context, identity *Identity) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET password_hash = $2,
		    email = COALESCE($3, email),
		    username = COALESCE($4, username),
		    updated_at = $5
		WHERE mobile_number = $1 AND password_hash IS NULL`, identityTable)

	tag, err := store.pool.Exec(ctx, query,
		identity.Mobile,
		identity.PasswordHash,
		pointer.NonZero(identity.Email),
		pointer.NonZero(identity.Username),
		identity.UpdatedAt,
	)
	if err != nil {
		return false, dberr.Wrap(err, "identity_claim")
	}
	return tag.RowsAffected() == 1, nil
}

// # Code Storage

// Save overwrites the pending code on the identity row.
func (store *PostgresStore) Save(ctx context.Context, mobile, code string, expiresAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET otp = $2, otp_expires_at = $3, updated_at = now()
		WHERE mobile_number = $1`, identityTable)

	tag, err := store.pool.Exec(ctx, query, mobile, code, expiresAt)
	if err != nil {
		return dberr.Wrap(err, "code_save")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "code_save")
	}
	return nil
}

// Consume clears a matching, unexpired code in a single statement, so two
// concurrent verifications cannot both succeed.
func (store *PostgresStore) Consume(ctx context.Context, mobile, code string, now time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET otp = NULL, otp_expires_at = NULL, updated_at = $3
		WHERE mobile_number = $1 AND otp = $2 AND otp_expires_at > $3`, identityTable)

	tag, err := store.pool.Exec(ctx, query, mobile, code, now)
	if err != nil {
		return false, dberr.Wrap(err, "code_consume")
	}
	return tag.RowsAffected() == 1, nil
}
