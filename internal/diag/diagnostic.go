package diag

import (
	"amulet/internal/source"
)

// Note is a related span with a short message ("declared here").
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// IsError reports whether the diagnostic blocks emission.
func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}
