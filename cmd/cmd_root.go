// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wastewise/wastewise/config"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *config.Config
	vcfg    = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "wastewise",
	Short: "where and when to dispose of waste in St. Gallen",
	Long: `
wastewise tells residents of St. Gallen where the nearest collection points for
a waste type are, when it is next picked up on their street, and which waste
category an item belongs to.

Collection points and dates come from the city's open data portal.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		c, err := config.Load(vcfg, cfgFile)
		if err != nil {
			return err
		}

		if err := config.InitLogger(c.Log); err != nil {
			return err
		}

		cfg = c

		return nil
	},
}

var Version = "dev"

func userAgent() string {
	if cfg != nil && cfg.HTTP.UserAgent != "" {
		return cfg.HTTP.UserAgent
	}

	return fmt.Sprintf("wastewise/%s (+https://github.com/wastewise/wastewise)", Version)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./wastewise.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Bool("http-trace", false, "dump outbound HTTP traffic to stderr")

	_ = vcfg.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = vcfg.BindPFlag("http.trace", flags.Lookup("http-trace"))
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()

	_ = zap.L().Sync()

	if err != nil {
		os.Exit(1)
	}
}
