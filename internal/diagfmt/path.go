package diagfmt

import (
	"fmt"

	"amulet/internal/source"
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) (string, bool) {
	if fs == nil {
		return "", false
	}
	f := fs.Get(id)
	if f == nil {
		return "", false
	}
	return f.FormatPath(mode.String(), fs.BaseDir()), true
}

// formatSpan renders "line:col-line:col", or raw offsets without a FileSet.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && fs.Get(span.File) != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}
