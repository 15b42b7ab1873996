// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the open data portal is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.OpenData.Offline() {
			fmt.Println("✅ offline snapshots configured, the portal is not used")

			return nil
		}

		if err := portal(nil).Ping(cmd.Context()); err != nil {
			fmt.Printf("❌ %s is not reachable\n", cfg.OpenData.BaseURL)

			return err
		}

		fmt.Printf("✅ %s is reachable\n", cfg.OpenData.BaseURL)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
