package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"amulet/internal/diag"
	"amulet/internal/diagfmt"
	"amulet/internal/driver"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] file.am",
		Short: "Report diagnostics for an amulet source file without emitting code",
		Long: `Check runs lexing, parsing and semantic analysis and prints every diagnostic.
It exits with a non-zero status when any diagnostic is an error.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in json and short output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in json output")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	result, err := driver.Check(args[0], driver.Options{Logger: &g.logger})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	diags := result.Diagnostics
	switch format {
	case "json":
		pathMode := diagfmt.PathModeAuto
		if fullPath {
			pathMode = diagfmt.PathModeAbsolute
		}
		err = diagfmt.JSON(out, diags, result.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              g.maxDiagnostics,
			IncludeNotes:     withNotes,
		})
	case "short":
		if short := diag.FormatShortDiagnostics(diags, result.FileSet, withNotes); short != "" {
			_, err = fmt.Fprintln(out, short)
		}
	default:
		g.printDiagnostics(out, diags, result.FileSet)
		if len(diags) == 0 && !g.quiet {
			_, err = fmt.Fprintln(out, "no problems found")
		}
	}
	if err != nil {
		return err
	}
	if result.HasErrors() {
		return errReported
	}
	return nil
}
