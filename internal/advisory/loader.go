// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package advisory

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultCatalogueYAML []byte

// Catalogue bundles the region list with its crop table.
type Catalogue struct {
	Regions []Region
	Table   *Table
}

// catalogueFile is the on-disk YAML shape.
type catalogueFile struct {
	Regions []struct {
		Name   string              `yaml:"name"`
		Bounds Bounds              `yaml:"bounds"`
		Crops  map[string][]string `yaml:"crops"`
	} `yaml:"regions"`
}

// DefaultCatalogue returns the compiled-in catalogue.
func DefaultCatalogue() *Catalogue {
	catalogue, err := ParseCatalogue(defaultCatalogueYAML)
	if err != nil {
		panic("advisory: embedded catalogue is invalid: " + err.Error())
	}
	return catalogue
}

// LoadCatalogue reads and validates a catalogue file.
func LoadCatalogue(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("advisory: read catalogue: %w", err)
	}
	catalogue, err := ParseCatalogue(data)
	if err != nil {
		return nil, fmt.Errorf("advisory: %s: %w", path, err)
	}
	return catalogue, nil
}

/*
ParseCatalogue decodes YAML and validates every region.

Rules:
  - region names are non-empty and unique (by slug code)
  - bounds stay within latitude/longitude limits with min <= max
  - no region may take the reserved name "Unknown"
  - season labels are Rabi, Kharif or Zaid, each at most once per region
  - every listed season has at least one crop
*/
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var file catalogueFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if len(file.Regions) == 0 {
		return nil, errors.New("catalogue has no regions")
	}

	var (
		errs    []error
		regions []Region
		codes   = map[string]bool{}
		builder = NewTableBuilder()
	)

	for index, entry := range file.Regions {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("region #%d: name is required", index+1))
			continue
		}

		region := NewRegion(name, entry.Bounds)
		if region.Code == RegionUnknown.Code {
			errs = append(errs, fmt.Errorf("region %q: name is reserved", name))
			continue
		}
		if codes[region.Code] {
			errs = append(errs, fmt.Errorf("region %q: duplicate name", name))
			continue
		}
		codes[region.Code] = true

		if err := entry.Bounds.validate(); err != nil {
			errs = append(errs, fmt.Errorf("region %q: %w", name, err))
		}
		if len(entry.Crops) == 0 {
			errs = append(errs, fmt.Errorf("region %q: no crops", name))
		}

		seen := make(map[Season]bool, len(entry.Crops))
		for label, crops := range entry.Crops {
			season, ok := ParseSeason(label)
			if !ok {
				errs = append(errs, fmt.Errorf("region %q: unknown season %q", name, label))
				continue
			}
			if seen[season] {
				errs = append(errs, fmt.Errorf("region %q: season %s listed twice", name, season))
				continue
			}
			seen[season] = true
			if len(crops) == 0 {
				errs = append(errs, fmt.Errorf("region %q: season %s has no crops", name, season))
				continue
			}
			builder.Set(region.Code, season, crops)
		}

		regions = append(regions, region)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Catalogue{Regions: regions, Table: builder.Build()}, nil
}
