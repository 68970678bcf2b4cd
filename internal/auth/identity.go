// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Identity Entity

// Identity is a farmer account keyed by mobile number.
//
// An identity created through the one-time code flow has no password and no
// email until the farmer signs up with the same mobile number, which claims
// the existing row.
type Identity struct {
	ID           string    `json:"id"`
	Mobile       string    `json:"mobileNumber"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"` // Never exposed in API responses.
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Pending one-time code. Empty when none is outstanding or when codes
	// live in a separate store.
	Code          string     `json:"-"`
	CodeExpiresAt *time.Time `json:"-"`
}

// HasPassword reports whether the identity can use password login.
func (identity *Identity) HasPassword() bool {
	return identity.PasswordHash != ""
}

// Session is the outcome of a successful authentication.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  *Identity
}

// # Policy Constants

const (
	// TokenTTL is the validity window of a session token.
	TokenTTL = time.Hour

	// CodeTTL is how long a one-time code stays verifiable.
	CodeTTL = 5 * time.Minute

	// CodeDigits is the width of a one-time code.
	CodeDigits = 4

	MinPasswordLength = 6
	MaxPasswordBytes  = 72 // bcrypt input limit
	MinMobileLength   = 10
	MaxMobileLength   = 15
	MaxUsernameLength = 64
	MaxEmailLength    = 254
)
