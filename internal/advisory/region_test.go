// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package advisory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/krishimitra/internal/advisory"
)

func TestClassifier_DefaultRegions(t *testing.T) {
	classifier := advisory.NewClassifier(advisory.DefaultCatalogue().Regions)

	tests := []struct {
		name     string
		lat, lon float64
		wantCode string
	}{
		{"lucknow", 26.85, 80.95, "indo-gangetic-plain"},
		{"pune", 18.52, 73.85, "deccan-plateau"},
		{"south_west_corner_inclusive", 23, 74, "indo-gangetic-plain"},
		{"north_east_corner_inclusive", 31, 88, "indo-gangetic-plain"},
		{"deccan_edge", 15, 80, "deccan-plateau"},
		{"gap_between_boxes", 22, 77, "unknown"},
		{"just_outside", 31.0001, 80, "unknown"},
		{"null_island", 0, 0, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, classifier.RegionFor(tt.lat, tt.lon).Code)
		})
	}
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	wide := advisory.NewRegion("Wide", advisory.Bounds{MinLat: 0, MaxLat: 40, MinLon: 60, MaxLon: 100})
	narrow := advisory.NewRegion("Narrow", advisory.Bounds{MinLat: 20, MaxLat: 25, MinLon: 75, MaxLon: 80})

	assert.Equal(t, "wide", advisory.NewClassifier([]advisory.Region{wide, narrow}).RegionFor(22, 77).Code)
	assert.Equal(t, "narrow", advisory.NewClassifier([]advisory.Region{narrow, wide}).RegionFor(22, 77).Code)
}

func TestClassifier_RegionsIsACopy(t *testing.T) {
	classifier := advisory.NewClassifier(advisory.DefaultCatalogue().Regions)
	regions := classifier.Regions()
	regions[0].Code = "changed"

	assert.Equal(t, "indo-gangetic-plain", classifier.Regions()[0].Code)
}

func TestRegion_Known(t *testing.T) {
	assert.False(t, advisory.RegionUnknown.Known())
	assert.True(t, advisory.NewRegion("Deccan Plateau", advisory.Bounds{}).Known())
}
