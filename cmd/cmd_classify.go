// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/wastewise/wastewise/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Predict the waste category of an item",
}

var classifyTextCmd = &cobra.Command{
	Use:   "text [description]",
	Short: "Classify an item from its description",
	Long: `Classifies the description given as arguments or, without arguments, one
description per line read from stdin.

$ echo "empty wine bottle" | wastewise classify text
empty wine bottle	Glass 🍾	0.33	heuristic`,
	RunE: func(_ *cobra.Command, args []string) error {
		model := loadTextModel()

		if len(args) > 0 {
			printClassification(os.Stdout, classify.PredictText(strings.Join(args, " "), model))

			return nil
		}

		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter item descriptions to classify, one per line…")
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()

			r := classify.PredictText(line, model)
			if r.NoInput() {
				continue
			}

			fmt.Printf("%s\t%s\t%.2f\t%s\n", line, r.Label, r.Confidence, r.Tier)
		}

		return eris.Wrap(scanner.Err(), "reading stdin")
	},
}

var classifyImageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Classify an item from a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "opening image")
		}
		defer f.Close() //nolint:errcheck

		img, err := classify.DecodeImage(f)
		if err != nil {
			return err
		}

		model, classes := imageModel()
		printClassification(os.Stdout, classify.PredictImage(cmd.Context(), img, model, classes))

		return nil
	},
}

func printClassification(w io.Writer, r classify.Result) {
	if r.NoInput() {
		fmt.Fprintln(w, "Nothing to classify.")

		return
	}

	fmt.Fprintf(w, "%s (confidence %.0f%%, %s)\n", r.Label, r.Confidence*100, r.Tier)

	if a, ok := r.Advice(); ok {
		fmt.Fprintf(w, "\n🗑  %s\n", a.Bin)

		for _, tip := range a.Tips {
			fmt.Fprintf(w, "   • %s\n", tip)
		}
	}
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.AddCommand(classifyTextCmd)
	classifyCmd.AddCommand(classifyImageCmd)
}
