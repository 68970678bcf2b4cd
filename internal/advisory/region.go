// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package advisory

import (
	"fmt"

	"github.com/taibuivan/krishimitra/pkg/slug"
)

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Bounds is an axis-aligned box. All four edges are inclusive.
type Bounds struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

// Contains reports whether the coordinate lies inside or on the box.
func (bounds Bounds) Contains(point Coordinate) bool {
	return point.Lat >= bounds.MinLat && point.Lat <= bounds.MaxLat &&
		point.Lon >= bounds.MinLon && point.Lon <= bounds.MaxLon
}

func (bounds Bounds) validate() error {
	switch {
	case bounds.MinLat < -90 || bounds.MaxLat > 90:
		return fmt.Errorf("latitude range [%g, %g] outside [-90, 90]", bounds.MinLat, bounds.MaxLat)
	case bounds.MinLon < -180 || bounds.MaxLon > 180:
		return fmt.Errorf("longitude range [%g, %g] outside [-180, 180]", bounds.MinLon, bounds.MaxLon)
	case bounds.MinLat > bounds.MaxLat || bounds.MinLon > bounds.MaxLon:
		return fmt.Errorf("bounds minimum exceeds maximum")
	}
	return nil
}

// Region is a named agro-climatic zone.
type Region struct {
	Name   string
	Code   string
	Bounds Bounds
}

// RegionUnknown is returned for coordinates outside every region.
var RegionUnknown = Region{Name: "Unknown", Code: "unknown"}

// NewRegion builds a region with a URL-safe code derived from its name.
func NewRegion(name string, bounds Bounds) Region {
	return Region{Name: name, Code: slug.From(name), Bounds: bounds}
}

// Known reports whether the region is a real zone.
func (region Region) Known() bool {
	return region.Code != RegionUnknown.Code
}

// Classifier maps coordinates to regions using an ordered box list.
type Classifier struct {
	regions []Region
}

// NewClassifier copies the region list; its order decides overlaps.
func NewClassifier(regions []Region) *Classifier {
	return &Classifier{regions: append([]Region(nil), regions...)}
}

// RegionFor returns the first region whose box contains the point.
func (classifier *Classifier) RegionFor(lat, lon float64) Region {
	point := Coordinate{Lat: lat, Lon: lon}
	for _, region := range classifier.regions {
		if region.Bounds.Contains(point) {
			return region
		}
	}
	return RegionUnknown
}

// Regions returns a copy of the ordered region list.
func (classifier *Classifier) Regions() []Region {
	return append([]Region(nil), classifier.regions...)
}
