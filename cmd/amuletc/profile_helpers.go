package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"amulet/internal/prof"
)

// activeProfile is the profiling session started for the running command.
var activeProfile *prof.Session

// setupProfiling reads the persistent profiling flags and starts the
// requested profilers.
func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return nil
	}
	activeProfile, err = prof.Start(cfg)
	return err
}

// stopProfiling flushes the active session, if any.
func stopProfiling() error {
	s := activeProfile
	activeProfile = nil
	return s.Stop()
}
