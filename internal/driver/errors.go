package driver

import (
	"errors"
	"fmt"
	"strings"

	"amulet/internal/diag"
	"amulet/internal/source"
)

// Category sentinels. Every *DiagnosticError inside a *CompileError matches
// exactly one of them through errors.Is.
var (
	ErrLex    = errors.New("lexical error")
	ErrSyntax = errors.New("syntax error")
	ErrName   = errors.New("name error")
	ErrType   = errors.New("type error")
)

// IOError is a stage-fatal file system failure: the input cannot be read,
// the output location is unusable, or the final write failed.
type IOError struct {
	Op   string // "read", "prepare" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// EncodingError reports input bytes that are not valid UTF-8.
type EncodingError struct {
	Path   string
	Offset int
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: invalid UTF-8 at byte offset %d", e.Path, e.Offset)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// EmitError is an internal invariant violation raised by the code generator.
// It indicates a compiler bug, not a user mistake.
type EmitError struct {
	Path string
	Span source.Span
	Err  error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("%s: internal error: %v", e.Path, e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }

// DiagnosticError wraps a single error-severity diagnostic.
type DiagnosticError struct {
	Diagnostic diag.Diagnostic
	Pos        source.LineCol
	Path       string
}

func (e *DiagnosticError) Error() string {
	d := e.Diagnostic
	if e.Path == "" {
		return fmt.Sprintf("%s %s: %s", d.Code.ID(), d.Code.Category(), d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", e.Path, e.Pos.Line, e.Pos.Col, d.Code.ID(), d.Code.Category(), d.Message)
}

// Is matches the category sentinel of the wrapped diagnostic.
func (e *DiagnosticError) Is(target error) bool {
	return target != nil && categorySentinel(e.Diagnostic.Code.Category()) == target
}

func categorySentinel(c diag.Category) error {
	switch c {
	case diag.CategoryLex:
		return ErrLex
	case diag.CategorySyntax:
		return ErrSyntax
	case diag.CategoryName:
		return ErrName
	case diag.CategoryType:
		return ErrType
	}
	return nil
}

// CompileError aggregates every diagnostic of a failed run. Diagnostics holds
// the full sorted list, warnings included; Unwrap exposes only the errors.
type CompileError struct {
	Stage       Stage
	Path        string
	Diagnostics []diag.Diagnostic
	FileSet     *source.FileSet
}

func (e *CompileError) Error() string {
	errs, warns := 0, 0
	for i := range e.Diagnostics {
		switch {
		case e.Diagnostics[i].IsError():
			errs++
		case e.Diagnostics[i].Severity == diag.SevWarning:
			warns++
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s failed with %d error(s)", e.Path, e.Stage.Activity(), errs)
	if warns > 0 {
		fmt.Fprintf(&sb, " and %d warning(s)", warns)
	}
	return sb.String()
}

// Unwrap returns one *DiagnosticError per error-severity diagnostic.
func (e *CompileError) Unwrap() []error {
	out := make([]error, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		if !d.IsError() {
			continue
		}
		de := &DiagnosticError{Diagnostic: d, Path: e.Path}
		if e.FileSet != nil {
			start, _ := e.FileSet.Resolve(d.Primary)
			de.Pos = start
		}
		out = append(out, de)
	}
	return out
}

// Errors is a convenience over Unwrap for callers that want typed values.
func (e *CompileError) Errors() []*DiagnosticError {
	errs := e.Unwrap()
	out := make([]*DiagnosticError, 0, len(errs))
	for _, err := range errs {
		var de *DiagnosticError
		if errors.As(err, &de) {
			out = append(out, de)
		}
	}
	return out
}
