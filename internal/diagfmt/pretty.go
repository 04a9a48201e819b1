package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"amulet/internal/diag"
	"amulet/internal/source"
)

type palette struct {
	err, warn, info, note, code, loc, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		loc:    color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.loc, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид. Для каждой:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	   3 | let x = y;
//	     |         ^
//
// затем заметки в том же формате. Ожидается, что diags уже отсортированы.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	shown := len(diags)
	if opts.Max > 0 && opts.Max < shown {
		shown = opts.Max
	}
	for i := range shown {
		d := &diags[i]
		sevColor := pal.severity(d.Severity)
		fmt.Fprintf(w, "%s%s %s: %s\n", //nolint:errcheck
			pal.loc.Sprint(location(fs, d.Primary, opts.PathMode)),
			sevColor.Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()),
			d.Message)
		writeSnippet(w, fs, d.Primary, opts.Context, pal, pal.caret)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s%s\n", pal.note.Sprint("note:"), //nolint:errcheck
				pal.loc.Sprint(location(fs, n.Span, opts.PathMode)), n.Msg)
			writeSnippet(w, fs, n.Span, 0, pal, pal.note)
		}
	}
	if rest := len(diags) - shown; rest > 0 {
		fmt.Fprintf(w, "... and %d more diagnostic(s)\n", rest) //nolint:errcheck
	}
}

// Summary writes "N error(s), M warning(s)" or nothing for an empty list.
func Summary(w io.Writer, diags []diag.Diagnostic, useColor bool) {
	errs, warns := 0, 0
	for i := range diags {
		switch {
		case diags[i].IsError():
			errs++
		case diags[i].Severity == diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	pal := newPalette(useColor)
	parts := make([]string, 0, 2)
	if errs > 0 {
		parts = append(parts, pal.err.Sprintf("%d error(s)", errs))
	}
	if warns > 0 {
		parts = append(parts, pal.warn.Sprintf("%d warning(s)", warns))
	}
	fmt.Fprintln(w, strings.Join(parts, ", ")) //nolint:errcheck
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	path, ok := formatPath(fs, sp.File, mode)
	if !ok {
		return ""
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d: ", path, start.Line, start.Col)
}

// writeSnippet prints the span's first line with a caret underline. Column
// math uses display width so wide runes and tabs line up.
func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, context int, pal palette, caret *color.Color) {
	if fs == nil {
		return
	}
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	first := start.Line
	if context > 0 && uint32(context) < first { // #nosec G115 -- context is small
		first -= uint32(context) // #nosec G115
	} else if context > 0 {
		first = 1
	}
	width := len(fmt.Sprint(start.Line))
	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", width+2, ln), f.GetLine(ln)) //nolint:errcheck
	}

	line := f.GetLine(start.Line)
	col := min(int(start.Col)-1, len(line))
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	stop = max(stop, col)
	pad := displayPad(line[:col])
	marks := runewidth.StringWidth(line[col:stop])
	underline := "^"
	if marks > 1 {
		underline += strings.Repeat("~", marks-1)
	}
	fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", width+2, ""), pad, caret.Sprint(underline)) //nolint:errcheck
}

func displayPad(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}
