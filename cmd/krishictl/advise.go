// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/krishimitra/internal/advisory"
)

type adviseOptions struct {
	lat, lon      float64
	month         int
	cataloguePath string
	asJSON        bool
}

// newAdviseCmd prints a recommendation for a coordinate.
func newAdviseCmd() *cobra.Command {
	opts := &adviseOptions{}

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Suggest crops for a coordinate",
		Long: `Resolve the region and season for a coordinate and print the crop list.

The current month is used unless --month is given.`,
		Example: "  krishictl advise --lat 26.85 --lon 80.95 --month 7",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAdvise(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&opts.lat, "lat", 0, "Latitude in decimal degrees")
	flags.Float64Var(&opts.lon, "lon", 0, "Longitude in decimal degrees")
	flags.IntVar(&opts.month, "month", 0, "Month number 1-12 (default: current month)")
	flags.StringVar(&opts.cataloguePath, "catalogue", "", "YAML catalogue replacing the built-in one")
	flags.BoolVar(&opts.asJSON, "json", false, "Print the recommendation as JSON")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

func runAdvise(cmd *cobra.Command, opts *adviseOptions) error {
	if opts.lat < -90 || opts.lat > 90 || opts.lon < -180 || opts.lon > 180 {
		return fmt.Errorf("coordinate %g,%g is out of range", opts.lat, opts.lon)
	}

	month := time.Now().Month()
	if cmd.Flags().Changed("month") {
		if opts.month < 1 || opts.month > 12 {
			return fmt.Errorf("--month must be between 1 and 12, got %d", opts.month)
		}
		month = time.Month(opts.month)
	}

	catalogue, err := loadCatalogue(opts.cataloguePath)
	if err != nil {
		return err
	}

	recommendation, err := advisory.NewEngine(catalogue).
		AdviseFor(cmd.Context(), advisory.Coordinate{Lat: opts.lat, Lon: opts.lon}, month)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(recommendation)
	}

	fmt.Fprintf(out, "Region:      %s (%s)\n", recommendation.Region, recommendation.RegionCode)
	fmt.Fprintf(out, "Season:      %s (%s)\n", recommendation.Season, month)
	fmt.Fprintf(out, "Suggestions: %s\n", strings.Join(recommendation.Suggestions, ", "))
	return nil
}

func loadCatalogue(path string) (*advisory.Catalogue, error) {
	if path == "" {
		return advisory.DefaultCatalogue(), nil
	}
	return advisory.LoadCatalogue(path)
}
