// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns shared by every SQL store, so
// queries for PostgreSQL and SQLite are assembled from one definition.
package schema

// FarmerIdentityTable represents the 'farmer_identity' table
type FarmerIdentityTable struct {
	Table         string
	ID            string
	Mobile        string
	Email         string
	Username      string
	PasswordHash  string
	Code          string
	CodeExpiresAt string
	CreatedAt     string
	UpdatedAt     string
}

// FarmerIdentity is the schema definition for farmer_identity
var FarmerIdentity = FarmerIdentityTable{
	Table:         "farmer_identity",
	ID:            "id",
	Mobile:        "mobile_number",
	Email:         "email",
	Username:      "username",
	PasswordHash:  "password_hash",
	Code:          "otp",
	CodeExpiresAt: "otp_expires_at",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}

// Columns returns all standard column names
func (t FarmerIdentityTable) Columns() []string {
	return []string{
		t.ID, t.Mobile, t.Email, t.Username, t.PasswordHash,
		t.Code, t.CodeExpiresAt, t.CreatedAt, t.UpdatedAt,
	}
}
