// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/krishimitra/internal/advisory"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAdvise_Text(t *testing.T) {
	out, err := execute(t, "advise", "--lat", "26.85", "--lon", "80.95", "--month", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "Indo-Gangetic Plain (indo-gangetic-plain)")
	assert.Contains(t, out, "Kharif (July)")
	assert.Contains(t, out, "Rice (Paddy), Maize, Sugarcane, Soybean, Cotton")
}

func TestAdvise_JSON(t *testing.T) {
	out, err := execute(t, "advise", "--lat", "18.5", "--lon", "73.9", "--month", "11", "--json")
	require.NoError(t, err)

	var got advisory.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "deccan-plateau", got.RegionCode)
	assert.Equal(t, advisory.SeasonRabi, got.Season)
}

func TestAdvise_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing_lon", []string{"advise", "--lat", "26"}, "lon"},
		{"bad_month", []string{"advise", "--lat", "26", "--lon", "80", "--month", "13"}, "--month"},
		{"out_of_range", []string{"advise", "--lat", "95", "--lon", "80"}, "out of range"},
		{"unknown_region", []string{"advise", "--lat", "0", "--lon", "0", "--month", "1"}, "Could not determine region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogueCheck(t *testing.T) {
	out, err := execute(t, "catalogue", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 2 regions, 6 region/season entries")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regions:\n  - name: X\n    crops: {monsoon: [Rice]}\n"), 0o600))
	_, err = execute(t, "catalogue", "check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown season")
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
