package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"amulet/internal/diagfmt"
	"amulet/internal/driver"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] file.am",
		Short: "Parse an amulet source file and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
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

	result, err := driver.Parse(args[0], driver.Options{Logger: &g.logger})
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	g.printDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, result.FileSet)

	// Дерево печатается и при ошибках: сбойные конструкции видны как error-узлы
	out := cmd.OutOrStdout()
	if format == "json" {
		err = diagfmt.FormatASTJSON(out, result.Builder, result.FileID)
	} else {
		err = diagfmt.FormatASTPretty(out, result.Builder, result.FileID, result.FileSet)
	}
	if err != nil {
		return err
	}
	if result.HasErrors() {
		return errReported
	}
	return nil
}
