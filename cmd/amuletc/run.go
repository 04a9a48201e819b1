package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"amulet/internal/driver"
	"amulet/internal/vm"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] file.am",
		Short: "Compile an amulet source file and execute it",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	cmd.Flags().Int64("max-steps", 0, "abort after this many VM instructions (0 = unlimited)")
	cmd.Flags().Int("max-depth", 0, "maximum call depth (0 = default)")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	maxSteps, err := cmd.Flags().GetInt64("max-steps")
	if err != nil {
		return fmt.Errorf("failed to get max-steps flag: %w", err)
	}
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return fmt.Errorf("failed to get max-depth flag: %w", err)
	}

	c, err := driver.New(args[0], "", driver.Options{Logger: &g.logger})
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	err = c.Compile()
	g.printDiagnostics(stderr, c.Diagnostics(), c.FileSet())
	if err != nil {
		g.printTimings(stderr, c.Timings())
		return compileFailure(err)
	}

	prog, err := vm.Assemble(c.Contents())
	if err != nil {
		return fmt.Errorf("assembling %s: %w", c.InputPath(), err)
	}
	machine := vm.New(prog, vm.NewRuntime(cmd.OutOrStdout()), vm.Options{
		MaxSteps: maxSteps,
		MaxDepth: maxDepth,
	})
	var runErr error
	c.Timings().Measure("run", func() string {
		runErr = machine.Run(cmd.Context())
		return fmt.Sprintf("%d steps", machine.Steps())
	})
	g.printTimings(stderr, c.Timings())

	var vmErr *vm.VMError
	if errors.As(runErr, &vmErr) {
		fmt.Fprint(stderr, vmErr.Format())
		return errReported
	}
	return runErr
}
