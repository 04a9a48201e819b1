package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"amulet/internal/buildpipeline"
	"amulet/internal/project"
	"amulet/internal/ui"
	"amulet/internal/version"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [dir]",
		Short: "Build every source of an amulet project",
		Long: `Build locates amulet.toml in dir (or a parent directory), compiles each
configured source in parallel and writes the artifacts under out_dir.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().Int("jobs", 0, "max parallel compilations (0 = manifest setting, then GOMAXPROCS)")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the artifact cache")
	cmd.Flags().Bool("clean", false, "remove the output directory before building")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	clean, err := cmd.Flags().GetBool("clean")
	if err != nil {
		return fmt.Errorf("failed to get clean flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiMode, err := readColorMode(uiFlag)
	if err != nil {
		return fmt.Errorf("invalid --ui value %q (expected auto|on|off)", uiFlag)
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	manifest, err := project.Discover(dir)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("max-diagnostics") && manifest.Config.Build.MaxDiagnostics > 0 {
		g.maxDiagnostics = manifest.Config.Build.MaxDiagnostics
	}
	if clean {
		if err := os.RemoveAll(manifest.OutDir()); err != nil {
			return fmt.Errorf("failed to clean %s: %w", manifest.OutDir(), err)
		}
	}
	files, err := manifest.SourceFiles()
	if err != nil {
		return err
	}

	req := &buildpipeline.Request{
		Manifest:        manifest,
		Files:           files,
		Jobs:            jobs,
		NoCache:         noCache,
		CompilerVersion: version.String(),
		Logger:          &g.logger,
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var (
		res      buildpipeline.Result
		buildErr error
	)
	if shouldUseTUI(uiMode, g.quiet, stdout) {
		res, buildErr = buildWithProgress(cmd, req, manifest, files)
	} else {
		res, buildErr = buildpipeline.Build(cmd.Context(), req)
	}

	for i := range res.Files {
		fr := &res.Files[i]
		g.printDiagnostics(stderr, fr.Diagnostics, fr.FileSet)
		if fr.Err != nil && !hasErrors(fr.Diagnostics) {
			fmt.Fprintf(stderr, "%s: %v\n", relPath(manifest.Root, fr.Source), fr.Err)
		}
	}
	if !g.quiet {
		printBuildSummary(stdout, manifest, res)
	}

	var merr *multierror.Error
	if errors.As(buildErr, &merr) {
		return errReported
	}
	return buildErr
}

// buildWithProgress runs the build while the progress view consumes its events.
func buildWithProgress(cmd *cobra.Command, req *buildpipeline.Request, m *project.Manifest, files []string) (buildpipeline.Result, error) {
	events := make(chan buildpipeline.Event, 64)
	req.Progress = buildpipeline.ChannelSink{Ch: events}

	var (
		res      buildpipeline.Result
		buildErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		res, buildErr = buildpipeline.Build(cmd.Context(), req)
	}()

	title := fmt.Sprintf("build %s", m.Config.Package.Name)
	display := func(path string) string { return relPath(m.Root, path) }
	if err := ui.Run(cmd.OutOrStdout(), title, files, display, events); err != nil {
		// UI упал: дочитываем события, чтобы сборка не заблокировалась
		for range events {
		}
	}
	<-done
	return res, buildErr
}

func shouldUseTUI(mode colorMode, quiet bool, out io.Writer) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	}
	if quiet {
		return false
	}
	f, ok := out.(*os.File)
	return ok && isTerminal(f)
}

func printBuildSummary(out io.Writer, m *project.Manifest, res buildpipeline.Result) {
	fmt.Fprintf(out, "built %d of %d file(s)", res.Succeeded, len(res.Files))
	if res.Cached > 0 {
		fmt.Fprintf(out, " (%d cached)", res.Cached)
	}
	if res.Failed > 0 {
		fmt.Fprintf(out, ", %d failed", res.Failed)
	}
	fmt.Fprintf(out, " in %.1f ms -> %s\n", toMillis(res.Elapsed), relPath(m.Root, m.OutDir()))
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
