// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/krishimitra/internal/auth"
	"github.com/taibuivan/krishimitra/internal/platform/apperr"
	"github.com/taibuivan/krishimitra/internal/platform/sqlite"
	"github.com/taibuivan/krishimitra/pkg/uuid"
)

func newSQLiteStore(t *testing.T) *auth.SQLiteStore {
	t.Helper()
	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return auth.NewSQLiteStore(db)
}

func newIdentity(mobile, email string) *auth.Identity {
	now := time.Now().UTC()
	return &auth.Identity{
		ID:           uuid.New(),
		Mobile:       mobile,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSQLiteStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	identity := newIdentity("9876543210", "ramesh@example.com")
	require.NoError(t, store.Create(ctx, identity))

	byMobile, err := store.FindByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, byMobile.ID)
	assert.Equal(t, "$2a$10$hash", byMobile.PasswordHash)
	assert.True(t, identity.CreatedAt.Equal(byMobile.CreatedAt))

	byEmail, err := store.FindByEmail(ctx, "RAMESH@example.com")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, byEmail.ID)

	byID, err := store.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", byID.Mobile)

	_, err = store.FindByMobile(ctx, "9000000000")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestSQLiteStore_UniqueKeys(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	require.NoError(t, store.Create(ctx, newIdentity("9876543210", "a@example.com")))
	// Identities without email never collide with each other.
	require.NoError(t, store.Create(ctx, newIdentity("9876543211", "")))
	require.NoError(t, store.Create(ctx, newIdentity("9876543212", "")))

	err := store.Create(ctx, newIdentity("9876543210", "b@example.com"))
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "mobile: %v", err)

	err = store.Create(ctx, newIdentity("9876543299", "A@example.com"))
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "email: %v", err)
}

func TestSQLiteStore_EnsureKeepsExistingRow(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	original := newIdentity("9876543210", "")
	require.NoError(t, store.Create(ctx, original))

	codeOnly := newIdentity("9876543210", "")
	codeOnly.PasswordHash = ""
	require.NoError(t, store.Ensure(ctx, codeOnly))

	found, err := store.FindByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, original.ID, found.ID)
	assert.True(t, found.HasPassword())
}

func TestSQLiteStore_CodeLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	now := time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Ensure(ctx, newIdentity("9876543210", "")))
	require.NoError(t, store.Save(ctx, "9876543210", "1111", now.Add(5*time.Minute)))

	// A second request overwrites the first code.
	require.NoError(t, store.Save(ctx, "9876543210", "2222", now.Add(5*time.Minute)))

	consumed, err := store.Consume(ctx, "9876543210", "1111", now)
	require.NoError(t, err)
	assert.False(t, consumed, "superseded code")

	consumed, err = store.Consume(ctx, "9876543210", "2222", now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.False(t, consumed, "expired at exactly the deadline")

	consumed, err = store.Consume(ctx, "9876543210", "2222", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, consumed)

	consumed, err = store.Consume(ctx, "9876543210", "2222", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, consumed, "codes are single use")

	found, err := store.FindByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Empty(t, found.Code)
	assert.Nil(t, found.CodeExpiresAt)
}

func TestSQLiteStore_SaveWithoutIdentity(t *testing.T) {
	store := newSQLiteStore(t)

	err := store.Save(context.Background(), "9876543210", "1234", time.Now().Add(time.Minute))

	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestSQLiteStore_DriverErrors checks error mapping with a scripted driver.
*/
func TestSQLiteStore_DriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := auth.NewSQLiteStore(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM farmer_identity WHERE mobile_number = ?")).
		WithArgs("9876543210").
		WillReturnError(sql.ErrNoRows)
	_, err = store.FindByMobile(ctx, "9876543210")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO farmer_identity")).
		WillReturnError(errors.New("disk I/O error"))
	err = store.Create(ctx, newIdentity("9876543210", ""))
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE farmer_identity SET otp = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	consumed, err := store.Consume(ctx, "9876543210", "1234", time.Now())
	require.NoError(t, err)
	assert.False(t, consumed)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE farmer_identity SET otp = NULL")).
		WillReturnError(errors.New("database is locked"))
	_, err = store.Consume(ctx, "9876543210", "1234", time.Now())
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ClaimCodeOnlyIdentity(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	codeOnly := newIdentity("9123456780", "")
	codeOnly.PasswordHash = ""
	require.NoError(t, store.Ensure(ctx, codeOnly))

	profile := newIdentity("9123456780", "sita@example.com")
	profile.Username = "sita"
	claimed, err := store.Claim(ctx, profile)
	require.NoError(t, err)
	assert.True(t, claimed)

	found, err := store.FindByMobile(ctx, "9123456780")
	require.NoError(t, err)
	assert.Equal(t, codeOnly.ID, found.ID)
	assert.Equal(t, "$2a$10$hash", found.PasswordHash)
	assert.Equal(t, "sita@example.com", found.Email)
	assert.Equal(t, "sita", found.Username)

	// A row that already has a password cannot be claimed again.
	claimed, err = store.Claim(ctx, newIdentity("9123456780", ""))
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestSQLiteStore_ClaimEmailTaken(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	require.NoError(t, store.Create(ctx, newIdentity("9876543210", "ramesh@example.com")))
	codeOnly := newIdentity("9123456780", "")
	codeOnly.PasswordHash = ""
	require.NoError(t, store.Ensure(ctx, codeOnly))

	_, err := store.Claim(ctx, newIdentity("9123456780", "ramesh@example.com"))
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}
