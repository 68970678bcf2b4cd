// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/krishimitra/internal/platform/apperr"
	"github.com/taibuivan/krishimitra/internal/platform/dberr"
)

/*
TestWrap classifies driver errors into application errors.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"pgx_no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"sql_no_rows", fmt.Errorf("scan: %w", sql.ErrNoRows), apperr.CodeNotFound},
		{"pg_unique", &pgconn.PgError{Code: "23505"}, apperr.CodeConflict},
		{"pg_other", &pgconn.PgError{Code: "42P01"}, apperr.CodeInternal},
		{"opaque", errors.New("connection reset"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dberr.Wrap(tt.err, "identity_find")
			assert.True(t, apperr.HasCode(got, tt.wantCode), "got %v", got)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "noop"))
}
