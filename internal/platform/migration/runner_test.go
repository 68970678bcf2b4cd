// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/krishi":   "pgx5://u:p@db:5432/krishi",
		"postgresql://u:p@db:5432/krishi": "pgx5://u:p@db:5432/krishi",
		"pgx5://u:p@db:5432/krishi":       "pgx5://u:p@db:5432/krishi",
		"host=db user=u":                  "host=db user=u",
	}
	for input, want := range tests {
		assert.Equal(t, want, toPgx5DSN(input), input)
	}
}

func TestRunDown_RejectsNonPositiveSteps(t *testing.T) {
	assert.Error(t, RunDown("postgres://x", "data/migrations", 0, nil))
}
