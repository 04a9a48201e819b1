package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"amulet/internal/diagfmt"
	"amulet/internal/driver"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.am",
		Short: "Tokenize an amulet source file",
		Long:  `Tokenize breaks down an amulet source file into its constituent tokens`,
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	result, err := driver.Tokenize(args[0], driver.Options{Logger: &g.logger})
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Диагностика идёт в stderr, токены в stdout
	g.printDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, result.FileSet)

	out := cmd.OutOrStdout()
	if format == "json" {
		err = diagfmt.FormatTokensJSON(out, result.Tokens)
	} else {
		err = diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet)
	}
	if err != nil {
		return err
	}
	if result.HasErrors() {
		return errReported
	}
	return nil
}
