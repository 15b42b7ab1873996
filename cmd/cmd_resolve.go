// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wastewise/wastewise/disposal"
	"github.com/wastewise/wastewise/wastetype"
)

var resolveOptions struct {
	wasteType string
	json      bool
}

var resolveCmd = &cobra.Command{
	Use:   "resolve --type <waste> <address>",
	Short: "Find collection points and the next pickup for an address",
	Long: `Geocodes the address, lists the collection points accepting the waste type
nearest first, and looks up the next home collection on the address' street.

$ wastewise resolve --type glass Marktplatz 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := newDisposalService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		report := svc.Resolve(cmd.Context(), strings.Join(args, " "), resolveOptions.wasteType)

		if resolveOptions.json {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(report)
		}

		printReport(os.Stdout, report)

		return nil
	},
}

func printReport(w io.Writer, r *disposal.Report) {
	fmt.Fprintln(w, r.Message)

	if r.Coordinate != nil {
		fmt.Fprintf(w, "\n📍 %.5f, %.5f (%s)\n", r.Coordinate.Lat, r.Coordinate.Lon, r.Street)
	}

	if len(r.Points) > 0 {
		fmt.Fprintf(w, "\n%s collection points:\n", wastetype.ToDisplay(r.WasteType))

		for i, p := range r.Points {
			fmt.Fprintf(w, "%3d. %-40s %6.2f km  %s\n", i+1, p.Name, p.RoundedDistance(), p.OpeningHours)
		}
	}

	if r.NextCollection != nil {
		fmt.Fprintf(w, "\n🚛 next collection: %s %s (%s)\n",
			r.NextCollection.Day.Format(disposal.DateLayout), r.NextCollection.TimeWindow, r.NextCollection.Area)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVarP(&resolveOptions.wasteType, "type", "t", "", "waste type, e.g. glass, Papier or \"Green waste\"")
	resolveCmd.Flags().BoolVar(&resolveOptions.json, "json", false, "print the report as JSON")
	_ = resolveCmd.MarkFlagRequired("type")
}
