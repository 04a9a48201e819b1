package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"amulet/internal/driver"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] input.am [output.amasm]",
		Short: "Compile a single amulet source file",
		Long: `Compile runs the full pipeline on one file and prints the generated
assembly to stdout. With an output path the artifact is also written there.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCompile,
	}
	cmd.Flags().String("source-name", "", "source name recorded in the artifact header (default: input base name)")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	sourceName, err := cmd.Flags().GetString("source-name")
	if err != nil {
		return fmt.Errorf("failed to get source-name flag: %w", err)
	}

	input, output := args[0], ""
	if len(args) == 2 {
		output = args[1]
	}

	c, err := driver.New(input, output, driver.Options{Logger: &g.logger, SourceName: sourceName})
	if err != nil {
		return err
	}
	err = c.Compile()
	stderr := cmd.ErrOrStderr()
	g.printDiagnostics(stderr, c.Diagnostics(), c.FileSet())
	g.printTimings(stderr, c.Timings())
	if err != nil {
		return compileFailure(err)
	}

	// артефакт печатается всегда, файл пишется дополнительно
	if _, err := fmt.Fprint(cmd.OutOrStdout(), c.Contents()); err != nil {
		return err
	}
	if output != "" && !g.quiet {
		fmt.Fprintf(stderr, "wrote %s\n", c.OutputPath())
	}
	return nil
}

// compileFailure hides errors whose content was already shown as diagnostics.
func compileFailure(err error) error {
	var ce *driver.CompileError
	if errors.As(err, &ce) {
		return errReported
	}
	return err
}
