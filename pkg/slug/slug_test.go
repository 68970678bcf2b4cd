// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/krishimitra/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Indo-Gangetic Plain", "indo-gangetic-plain"},
		{"Deccan Plateau", "deccan-plateau"},
		{"  Kōṅkaṇ   Coast ", "konkan-coast"},
		{"Western Ghats (North)", "western-ghats-north"},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.in))
		})
	}
}
