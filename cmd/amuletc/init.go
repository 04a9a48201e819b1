package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"amulet/internal/project"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path|name]",
		Short: "Initialize a new amulet project",
		Long: `Initialize a new amulet project by creating a project manifest (amulet.toml)
and a hello-world entry point (src/main.am). If [path|name] is omitted, initializes
the current directory. A missing directory is created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	res, err := project.Init(target)
	if err != nil {
		return err
	}
	if g.quiet {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "initialized project %q in %s\n", res.Name, res.Root)
	fmt.Fprintf(out, "  created %s\n", project.ManifestName)
	if res.CreatedMain {
		fmt.Fprintf(out, "  created %s\n", filepath.Join("src", "main"+project.SourceExt))
	}
	return nil
}
