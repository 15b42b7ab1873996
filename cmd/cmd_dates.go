// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/wastewise/wastewise/disposal"
	"github.com/wastewise/wastewise/opendata"
	"github.com/wastewise/wastewise/schedule"
	"github.com/wastewise/wastewise/utils/textutils"
	"github.com/wastewise/wastewise/wastetype"
)

var datesOptions struct {
	wasteType string
}

var datesCmd = &cobra.Command{
	Use:   "dates [--type <waste>] <street>",
	Short: "Show the next home collection on a street",
	Long: `Downloads this year's collection calendar and prints the next pickup of the
waste type on the street. Without --type, lists the waste types collected on
the street.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		street := strings.Join(args, " ")

		var bar *progressbar.ProgressBar

		progress := func(fetched, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Fetching collection dates"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			_ = bar.Set(fetched)
		}

		if !isatty.IsTerminal(os.Stderr.Fd()) {
			progress = nil
		}

		source, closeFn, err := newSource(progress)
		if err != nil {
			return err
		}
		defer closeFn()

		events, err := source.CollectionEvents(cmd.Context())
		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "%s collection dates loaded\n", textutils.FormatInt(int64(len(events))))

		if datesOptions.wasteType == "" {
			return printStreetTypes(street, events)
		}

		upstream := wastetype.ToUpstream(datesOptions.wasteType)

		p := schedule.NextDate(street, upstream, events, time.Now())
		if p == nil {
			fmt.Printf("No upcoming %s collection found for %s.\n", wastetype.ToDisplay(upstream), street)

			return nil
		}

		fmt.Printf("Next %s collection for %s: %s %s\n",
			wastetype.ToDisplay(upstream), street, p.Day.Format(disposal.DateLayout), p.TimeWindow)

		if p.Area != "" {
			fmt.Printf("Area: %s\n", p.Area)
		}

		return nil
	},
}

func printStreetTypes(street string, events []opendata.CollectionEvent) error {
	types := schedule.StreetWasteTypes(street, events)
	if len(types) == 0 {
		fmt.Printf("No home collection listed for %s.\n", street)

		return nil
	}

	fmt.Printf("Collected at home on %s:\n", street)

	for _, t := range types {
		fmt.Printf("  • %s\n", wastetype.ToDisplay(t))
	}

	return nil
}

func init() {
	rootCmd.AddCommand(datesCmd)
	datesCmd.Flags().StringVarP(&datesOptions.wasteType, "type", "t", "", "waste type, e.g. paper or Karton")
}
