// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Inspect advisory catalogues",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a catalogue file, or the built-in one without a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			catalogue, err := loadCatalogue(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, region := range catalogue.Regions {
				b := region.Bounds
				fmt.Fprintf(out, "%-24s lat [%g, %g] lon [%g, %g]\n", region.Code, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
			}
			fmt.Fprintf(out, "ok: %d regions, %d region/season entries\n", len(catalogue.Regions), catalogue.Table.Len())
			return nil
		},
	})

	return cmd
}
