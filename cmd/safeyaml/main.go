// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

// This binary provides a YAML inspection tool: it reads a document from
// a file or stdin and prints its token stream, event stream, JSON
// rendering, or a validation report under a selectable limits preset.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.yaml.in/safeyaml"
	"go.yaml.in/safeyaml/internal/yamlcore"
)

const version = "1.0.0"

var limitsFlag string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "safeyaml",
		Short:         "Inspect and validate YAML documents under resource limits",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&limitsFlag, "limits", "default",
		"limits preset: default, strict, permissive or unlimited")
	root.AddCommand(newTokensCmd(), newEventsCmd(), newJSONCmd(), newCheckCmd())
	return root
}

func selectedLimits() (safeyaml.Limits, error) {
	switch limitsFlag {
	case "default":
		return safeyaml.DefaultLimits(), nil
	case "strict":
		return safeyaml.StrictLimits(), nil
	case "permissive":
		return safeyaml.PermissiveLimits(), nil
	case "unlimited":
		return safeyaml.UnlimitedLimits(), nil
	}
	return safeyaml.Limits{}, fmt.Errorf("unknown limits preset %q", limitsFlag)
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			limits, err := selectedLimits()
			if err != nil {
				return err
			}
			return dumpTokens(cmd.OutOrStdout(), data, limits)
		},
	}
}

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events [file]",
		Short: "Print the event stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			limits, err := selectedLimits()
			if err != nil {
				return err
			}
			return dumpEvents(cmd.OutOrStdout(), data, limits)
		},
	}
}

func newJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "json [file]",
		Short: "Compose the document stream and print it as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			limits, err := selectedLimits()
			if err != nil {
				return err
			}
			return dumpJSON(cmd.OutOrStdout(), data, limits)
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Compose the document stream and report resource usage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			limits, err := selectedLimits()
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), data, limits)
		},
	}
}

func dumpTokens(w io.Writer, data []byte, limits safeyaml.Limits) error {
	tracker := yamlcore.NewResourceTracker(limits)
	scanner, err := yamlcore.NewScanner(string(data), tracker)
	if err != nil {
		return err
	}
	scanner.CaptureComments(true)
	for {
		tok, err := scanner.Take()
		if err != nil {
			return err
		}
		if tok == nil {
			return nil
		}
		fmt.Fprintf(w, "%s  %s\n", tok.Start, tok)
	}
}

func dumpEvents(w io.Writer, data []byte, limits safeyaml.Limits) error {
	tracker := yamlcore.NewResourceTracker(limits)
	scanner, err := yamlcore.NewScanner(string(data), tracker)
	if err != nil {
		return err
	}
	parser := yamlcore.NewParser(scanner)
	for {
		ev, err := parser.Take()
		if err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		fmt.Fprintf(w, "%s  %s\n", ev.Pos, ev)
	}
}

func dumpJSON(w io.Writer, data []byte, limits safeyaml.Limits) error {
	docs, err := safeyaml.LoadAll(data, safeyaml.WithLimits(limits))
	if err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Fprintln(w, jsonText(doc))
	}
	return nil
}

func runCheck(w io.Writer, data []byte, limits safeyaml.Limits) error {
	p, err := safeyaml.NewProcessor(data,
		safeyaml.WithLimits(limits), safeyaml.WithProfiling(true))
	if err != nil {
		return err
	}
	n := 0
	for {
		doc, err := p.ComposeDocument()
		if err != nil {
			return err
		}
		if doc == nil {
			break
		}
		n++
	}
	fmt.Fprintf(w, "ok: %d document(s)\n", n)
	for i, stats := range p.DocumentStats() {
		fmt.Fprintf(w, "document %d: %s\n", i+1, stats)
	}
	return nil
}
