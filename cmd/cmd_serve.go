// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wastewise/wastewise/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, closeFn, err := newDisposalService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		var status server.Pinger
		if !cfg.OpenData.Offline() {
			status = portal(nil)
		}

		model, classes := imageModel()

		srv := server.New(server.Options{
			Disposal:     svc,
			TextModel:    loadTextModel(),
			ImageModel:   model,
			ImageClasses: classes,
			Status:       status,
			CORSOrigins:  cfg.Server.CORSOrigins,
		})

		fmt.Printf("♻️  wastewise API on http://%s\n", cfg.Server.Addr)

		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "localhost:8080", "listen address")
	_ = vcfg.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
