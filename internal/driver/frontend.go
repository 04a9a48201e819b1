package driver

import (
	"errors"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/sema"
	"amulet/internal/source"
	"amulet/internal/token"
)

// TokenizeResult is the output of the lexing stage alone.
type TokenizeResult struct {
	FileSet     *source.FileSet
	File        *source.File
	Tokens      []token.Token
	Diagnostics []diag.Diagnostic
}

// ParseResult is the syntax tree of a file. The tree exists even when the
// source has errors; failed constructs are error nodes.
type ParseResult struct {
	FileSet     *source.FileSet
	File        *source.File
	Builder     *ast.Builder
	FileID      ast.FileID
	Diagnostics []diag.Diagnostic
}

// CheckResult adds the semantic annotations to ParseResult.
type CheckResult struct {
	ParseResult
	Sema *sema.Result
}

// hasErrors reports whether any error-severity diagnostic was recorded.
func hasErrors(diags []diag.Diagnostic) bool {
	for i := range diags {
		if diags[i].IsError() {
			return true
		}
	}
	return false
}

// HasErrors reports whether lexing failed.
func (r *TokenizeResult) HasErrors() bool { return hasErrors(r.Diagnostics) }

// HasErrors reports whether the file has lexical or syntax errors.
func (r *ParseResult) HasErrors() bool { return hasErrors(r.Diagnostics) }

// Tokenize loads path and lexes it. Only load failures are returned as
// errors; lexical problems are in Diagnostics.
func Tokenize(path string, opts Options) (*TokenizeResult, error) {
	c, p, err := frontend(path, StageLexed, opts)
	if err != nil {
		return nil, err
	}
	return &TokenizeResult{
		FileSet:     c.fs,
		File:        c.file,
		Tokens:      p.tokens,
		Diagnostics: c.Diagnostics(),
	}, nil
}

// Parse loads, lexes and parses path, continuing past lexical errors.
func Parse(path string, opts Options) (*ParseResult, error) {
	c, p, err := frontend(path, StageParsed, opts)
	if err != nil {
		return nil, err
	}
	return &ParseResult{
		FileSet:     c.fs,
		File:        c.file,
		Builder:     p.builder,
		FileID:      p.fileID,
		Diagnostics: c.Diagnostics(),
	}, nil
}

// Check runs every stage but emission. Analysis runs on the best-effort
// tree even when parsing reported errors.
func Check(path string, opts Options) (*CheckResult, error) {
	c, p, err := frontend(path, StageAnalyzed, opts)
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		ParseResult: ParseResult{
			FileSet:     c.fs,
			File:        c.file,
			Builder:     p.builder,
			FileID:      p.fileID,
			Diagnostics: c.Diagnostics(),
		},
		Sema: p.sem,
	}, nil
}

func frontend(path string, target Stage, opts Options) (*Compiler, *pipeline, error) {
	c, err := New(path, "", opts)
	if err != nil {
		return nil, nil, err
	}
	p, err := c.run(target, true)
	var compileErr *CompileError
	if err != nil && !errors.As(err, &compileErr) {
		return nil, nil, err
	}
	return c, p, nil
}
