package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"amulet/internal/diag"
	"amulet/internal/diagfmt"
	"amulet/internal/observ"
	"amulet/internal/source"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	color          colorMode
	quiet          bool
	timings        bool
	maxDiagnostics int
	logger         zerolog.Logger
}

func readGlobals(cmd *cobra.Command) (*globals, error) {
	flags := cmd.Root().PersistentFlags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	g := &globals{}
	if g.color, err = readColorMode(colorFlag); err != nil {
		return nil, err
	}
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.maxDiagnostics < 0 {
		return nil, fmt.Errorf("--max-diagnostics must be >= 0, got %d", g.maxDiagnostics)
	}
	level, err := flags.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	stderr := cmd.ErrOrStderr()
	if g.logger, err = observ.NewLogger(level, stderr, !g.useColor(stderr)); err != nil {
		return nil, err
	}
	return g, nil
}

// useColor decides colouring for one output stream.
func (g *globals) useColor(w io.Writer) bool {
	switch g.color {
	case colorOn:
		return true
	case colorOff:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f) && os.Getenv("NO_COLOR") == ""
}

// printDiagnostics renders diags in the pretty format followed by a summary line.
func (g *globals) printDiagnostics(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet) {
	if len(diags) == 0 || fs == nil {
		return
	}
	color := g.useColor(w)
	diagfmt.Pretty(w, diags, fs, diagfmt.PrettyOpts{
		Color:     color,
		Context:   1,
		ShowNotes: true,
		Max:       g.maxDiagnostics,
	})
	if !g.quiet {
		diagfmt.Summary(w, diags, color)
	}
}

func (g *globals) printTimings(w io.Writer, timer *observ.Timer) {
	if g.timings && timer != nil && timer.Len() > 0 {
		fmt.Fprint(w, timer.Summary())
	}
}

func hasErrors(diags []diag.Diagnostic) bool {
	for i := range diags {
		if diags[i].IsError() {
			return true
		}
	}
	return false
}
