// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wastewise/wastewise/wastetype"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the known waste types",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		a, b, c := strings.Repeat("─", 10), strings.Repeat("─", 13), strings.Repeat("─", 20)
		fmt.Println("Known waste types:")
		fmt.Printf("╭─%-10s─┬─%-13s─┬─%-20s─┬──────╮\n", a, b, c)
		fmt.Printf("│ %-10s │ %-13s │ %-20s │ home │\n", "Code", "Upstream", "Name")
		fmt.Printf("├─%-10s─┼─%-13s─┼─%-20s─┼──────┤\n", a, b, c)

		for _, t := range wastetype.All() {
			home := "    "
			if t.HomeCollected() {
				home = " yes"
			}

			fmt.Printf("│ %-10s │ %-13s │ %-20s │ %s │\n", t.Code(), t.Upstream(), t.Name(), home)
		}

		fmt.Printf("╰─%-10s─┴─%-13s─┴─%-20s─┴──────╯\n", a, b, c)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
