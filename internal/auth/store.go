// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// IdentityRepository defines the data access contract for farmer identities.
//
// # Implementations
//
// PostgreSQL ([PostgresStore]) is canonical; SQLite ([SQLiteStore]) serves
// single-node deployments and tests.
type IdentityRepository interface {
	// FindByMobile returns the identity owning the mobile number.
	//
	// Returns [apperr.NotFound] if no identity uses it.
	FindByMobile(ctx context.Context, mobile string) (*Identity, error)

	// FindByEmail returns the identity with the given (lower-cased) email.
	//
	// Returns [apperr.NotFound] if no identity uses it.
	FindByEmail(ctx context.Context, email string) (*Identity, error)

	// FindByID returns the identity with the given ID.
	FindByID(ctx context.Context, id string) (*Identity, error)

	// Create persists a new identity. A unique-key collision on mobile or
	// email returns [apperr.Conflict].
	Create(ctx context.Context, identity *Identity) error

	// Ensure inserts the identity unless its mobile number already exists.
	// Existing rows are left untouched.
	Ensure(ctx context.Context, identity *Identity) error

	// Claim sets the password hash, email and username on the identity with
	// the same mobile number, but only while it has no password. It reports
	// whether the row was claimed. An email collision returns [apperr.Conflict].
	Claim(ctx context.Context, identity *Identity) (bool, error)
}

// CodeRepository stores pending one-time codes.
type CodeRepository interface {
	// Save records the code for mobile, replacing any earlier one.
	Save(ctx context.Context, mobile, code string, expiresAt time.Time) error

	// Consume atomically clears the code if it matches and has not expired
	// at now. It reports whether a code was consumed.
	Consume(ctx context.Context, mobile, code string, now time.Time) (bool, error)
}
