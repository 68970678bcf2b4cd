// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taibuivan/krishimitra/internal/platform/dberr"
	"github.com/taibuivan/krishimitra/pkg/pointer"
)

// SQLiteStore implements [IdentityRepository] and [CodeRepository] on a
// database/sql handle opened with the modernc "sqlite" driver.
//
// Timestamps are stored as unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database whose schema is already bootstrapped.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// FindByMobile retrieves an identity by its mobile number.
func (store *SQLiteStore) FindByMobile(ctx context.Context, mobile string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE mobile_number = ?`, identityColumns, identityTable)
	return store.findOne(ctx, "identity_find_by_mobile", query, mobile)
}

// FindByEmail retrieves an identity by its email, case-insensitively.
func (store *SQLiteStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(email) = lower(?)`, identityColumns, identityTable)
	return store.findOne(ctx, "identity_find_by_email", query, email)
}

// FindByID retrieves an identity by its unique ID.
func (store *SQLiteStore) FindByID(ctx context.Context, id string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, identityColumns, identityTable)
	return store.findOne(ctx, "identity_find_by_id", query, id)
}

func (store *SQLiteStore) findOne(ctx context.Context, action, query string, arg any) (*Identity, error) {
	var (
		identity                    Identity
		email, username, hash, code sql.NullString
		codeExpiresAt               sql.NullInt64
		createdAt, updatedAt        int64
	)

	err := store.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Mobile,
		&email,
		&username,
		&hash,
		&code,
		&codeExpiresAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	identity.Email = email.String
	identity.Username = username.String
	identity.PasswordHash = hash.String
	identity.Code = code.String
	identity.CreatedAt = fromNanos(createdAt)
	identity.UpdatedAt = fromNanos(updatedAt)
	if codeExpiresAt.Valid {
		identity.CodeExpiresAt = pointer.To(fromNanos(codeExpiresAt.Int64))
	}
	return &identity, nil
}

// Create persists a new identity record.
func (store *SQLiteStore) Create(ctx context.Context, identity *Identity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, mobile_number, email, username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, identityTable)

	_, err := store.db.ExecContext(ctx, query,
		identity.ID,
		identity.Mobile,
		nullText(identity.Email),
		nullText(identity.Username),
		nullText(identity.PasswordHash),
		identity.CreatedAt.UnixNano(),
		identity.UpdatedAt.UnixNano(),
	)
	return dberr.Wrap(err, "identity_create")
}

// Ensure inserts a code-only identity unless the mobile number is taken.
func (store *SQLiteStore) Ensure(ctx context.Context, identity *Identity) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, mobile_number, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (mobile_number) DO NOTHING`, identityTable)

	_, err := store.db.ExecContext(ctx, query,
		identity.ID, identity.Mobile, identity.CreatedAt.UnixNano(), identity.UpdatedAt.UnixNano())
	return dberr.Wrap(err, "identity_ensure")
}

// Claim sets a password and profile on a passwordless identity.
func (store *SQLiteStore) Claim(ctx context.Context, identity *Identity) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET password_hash = ?, email = COALESCE(?, email), username = COALESCE(?, username), updated_at = ?
		WHERE mobile_number = ? AND password_hash IS NULL`, identityTable)

	result, err := store.db.ExecContext(ctx, query,
		identity.PasswordHash,
		nullText(identity.Email),
		nullText(identity.Username),
		identity.UpdatedAt.UnixNano(),
		identity.Mobile,
	)
	if err != nil {
		return false, dberr.Wrap(err, "identity_claim")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, dberr.Wrap(err, "identity_claim")
	}
	return affected == 1, nil
}

// Save overwrites the pending code on the identity row.
func (store *SQLiteStore) Save(ctx context.Context, mobile, code string, expiresAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET otp = ?, otp_expires_at = ?, updated_at = ?
		WHERE mobile_number = ?`, identityTable)

	result, err := store.db.ExecContext(ctx, query, code, expiresAt.UnixNano(), time.Now().UnixNano(), mobile)
	if err != nil {
		return dberr.Wrap(err, "code_save")
	}
	if affected, err := result.RowsAffected(); err != nil || affected == 0 {
		return dberr.Wrap(sql.ErrNoRows, "code_save")
	}
	return nil
}

// Consume clears a matching, unexpired code in a single statement.
func (store *SQLiteStore) Consume(ctx context.Context, mobile, code string, now time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET otp = NULL, otp_expires_at = NULL, updated_at = ?
		WHERE mobile_number = ? AND otp = ? AND otp_expires_at > ?`, identityTable)

	result, err := store.db.ExecContext(ctx, query, now.UnixNano(), mobile, code, now.UnixNano())
	if err != nil {
		return false, dberr.Wrap(err, "code_consume")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, dberr.Wrap(err, "code_consume")
	}
	return affected == 1, nil
}

// nullText maps an empty string to SQL NULL using only driver-native values.
func nullText(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func fromNanos(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}
