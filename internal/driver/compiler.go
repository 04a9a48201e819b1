// Package driver owns the amulet compilation pipeline: it loads one source
// file, runs lexer, parser, semantic analysis and emission in order, and
// keeps the aggregated diagnostics of the last run.
package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/emit"
	"amulet/internal/lexer"
	"amulet/internal/observ"
	"amulet/internal/parser"
	"amulet/internal/sema"
	"amulet/internal/source"
	"amulet/internal/token"
)

// Options tune a Compiler. The zero value is ready to use.
type Options struct {
	// Logger receives one debug event per stage; nil means zerolog.Nop().
	Logger *zerolog.Logger
	// SourceName overrides the name written to the .source directive.
	// Defaults to the base name of the input path.
	SourceName string
	// FileMode is used for the output file; 0 means 0o644.
	FileMode os.FileMode
}

// Compiler compiles a single input file. A Compiler must be driven by one
// goroutine at a time; separate instances share nothing.
type Compiler struct {
	input  string
	output string // absolute, or empty for in-memory compilation
	opts   Options
	log    zerolog.Logger

	fs   *source.FileSet
	file *source.File

	stage    Stage
	failedAt Stage
	diags    []diag.Diagnostic
	timer    *observ.Timer

	contents  string
	generated bool
	persisted bool
}

// New loads inputPath and validates outputPath without creating it.
// An empty outputPath keeps the artifact in memory only.
// Failures are *IOError or *EncodingError; no pipeline work is done.
func New(inputPath, outputPath string, opts Options) (*Compiler, error) {
	c := &Compiler{
		input:  inputPath,
		opts:   opts,
		log:    zerolog.Nop(),
		fs:     source.NewFileSet(),
		stage:  StageCreated,
		timer:  observ.NewTimer(),
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if opts.FileMode == 0 {
		c.opts.FileMode = 0o644
	}

	id, err := c.fs.Load(inputPath)
	if err != nil {
		var encErr *source.EncodingError
		if errors.As(err, &encErr) {
			return nil, &EncodingError{Path: inputPath, Offset: encErr.Offset, Err: err}
		}
		return nil, &IOError{Op: "read", Path: inputPath, Err: err}
	}
	c.file = c.fs.Get(id)

	if outputPath != "" {
		abs, perr := source.PrepareOutput(outputPath)
		if perr != nil {
			return nil, &IOError{Op: "prepare", Path: outputPath, Err: perr}
		}
		c.output = abs
	}
	if c.opts.SourceName == "" {
		c.opts.SourceName = filepath.Base(inputPath)
	}

	c.stage = StageLoaded
	c.log.Debug().Str("file", inputPath).Str("output", c.output).Int("bytes", len(c.file.Content)).Msg("source loaded")
	return c, nil
}

// Compile runs the full pipeline from the loaded source. It stops at the
// first stage that records an error and returns a *CompileError carrying
// every diagnostic. Calling Compile again reruns everything from scratch.
//
// If the artifact was generated but could not be written, Compile returns
// an *IOError while Contents stays populated; see Generated and Persisted.
func (c *Compiler) Compile() error {
	p, err := c.run(StageEmitted, false)
	if err != nil {
		return err
	}
	return c.persist(p)
}

// pipeline holds the intermediate artefacts of one run. Each step takes
// ownership of the previous artefact and clears it.
type pipeline struct {
	bag     *diag.Bag
	rep     diag.Reporter // repeated reports of one problem collapse into one
	tokens  []token.Token
	builder *ast.Builder
	fileID  ast.FileID
	sem     *sema.Result
	text    string
}

type step struct {
	target Stage
	run    func(*Compiler, *pipeline) (string, error)
}

var steps = []step{
	{StageLexed, (*Compiler).lex},
	{StageParsed, (*Compiler).parse},
	{StageAnalyzed, (*Compiler).analyze},
	{StageEmitted, (*Compiler).generate},
}

// run resets the Compiler and advances it up to target. With keepGoing the
// front-end stages continue past errors so tooling sees a best-effort tree;
// the first failed stage is still reported.
func (c *Compiler) run(target Stage, keepGoing bool) (*pipeline, error) {
	if c.stage == StageCreated || c.file == nil {
		return nil, errors.New("driver: compiler has no loaded source")
	}
	c.reset()
	bag := diag.NewBag(0)
	p := &pipeline{bag: bag, rep: diag.NewDedupReporter(diag.BagReporter{Bag: bag})}

	firstFailed := StageCreated
	for _, st := range steps {
		if st.target > target {
			break
		}
		idx := c.timer.Begin(st.target.Activity())
		note, err := st.run(c, p)
		dur := c.timer.End(idx, note)
		c.log.Debug().
			Str("file", c.file.Path).
			Stringer("stage", st.target).
			Dur("duration", dur).
			Int("errors", p.bag.ErrorCount()).
			Int("warnings", p.bag.WarningCount()).
			Msg("stage finished")

		if err != nil {
			return p, c.fail(st.target, p, err)
		}
		if p.bag.HasErrors() {
			if !keepGoing || st.target == StageEmitted {
				return p, c.fail(st.target, p, nil)
			}
			if firstFailed == StageCreated {
				firstFailed = st.target
			}
			continue
		}
		if firstFailed == StageCreated {
			c.stage = st.target
		}
	}
	if firstFailed != StageCreated {
		return p, c.fail(firstFailed, p, nil)
	}
	c.snapshot(p)
	return p, nil
}

func (c *Compiler) reset() {
	c.stage = StageLoaded
	c.failedAt = StageCreated
	c.diags = nil
	c.contents = ""
	c.generated = false
	c.persisted = false
	c.timer.Reset()
}

func (c *Compiler) snapshot(p *pipeline) {
	p.bag.Sort()
	c.diags = slices.Clone(p.bag.Items())
}

func (c *Compiler) fail(at Stage, p *pipeline, cause error) error {
	c.stage = StageFailed
	c.failedAt = at
	c.snapshot(p)
	c.log.Info().
		Str("file", c.file.Path).
		Str("failed_at", at.Activity()).
		Int("errors", p.bag.ErrorCount()).
		Msg("compilation failed")
	if cause != nil {
		return cause
	}
	return &CompileError{
		Stage:       at,
		Path:        c.file.Path,
		Diagnostics: slices.Clone(c.diags),
		FileSet:     c.fs,
	}
}

func (c *Compiler) lex(p *pipeline) (string, error) {
	p.tokens, _ = lexer.Tokenize(c.file, lexer.Options{Reporter: p.rep})
	return fmt.Sprintf("%d tokens", len(p.tokens)), nil
}

func (c *Compiler) parse(p *pipeline) (string, error) {
	p.builder = ast.NewBuilder(ast.Hints{}, nil)
	res := parser.ParseFile(c.file, lexer.NewBuffer(p.tokens), p.builder, parser.Options{
		Reporter: p.rep,
	})
	p.tokens = nil
	p.fileID = res.File
	items := 0
	if f := p.builder.Files.Get(res.File); f != nil {
		items = len(f.Items)
	}
	return fmt.Sprintf("%d items", items), nil
}

func (c *Compiler) analyze(p *pipeline) (string, error) {
	res := sema.Check(p.builder, p.fileID, sema.Options{Reporter: p.rep})
	p.sem = &res
	return fmt.Sprintf("%d symbols", res.Table.Symbols.Len()), nil
}

func (c *Compiler) generate(p *pipeline) (string, error) {
	text, err := emit.EmitFile(p.builder, p.fileID, p.sem, emit.Options{SourceName: c.opts.SourceName})
	if err != nil {
		span := source.Span{File: c.file.ID}
		var emitErr *emit.Error
		if errors.As(err, &emitErr) {
			span = emitErr.Span
		}
		diag.ReportError(p.rep, diag.EmitInternal, span, err.Error()).Emit()
		return "", &EmitError{Path: c.file.Path, Span: span, Err: err}
	}
	p.builder, p.sem = nil, nil
	p.text = text
	c.contents = text
	c.generated = true
	return fmt.Sprintf("%d bytes", len(text)), nil
}

// persist writes the artifact. A failed write keeps Contents and records a
// warning so generation and persistence can be told apart.
func (c *Compiler) persist(p *pipeline) error {
	if c.output == "" {
		c.log.Info().Str("file", c.file.Path).Int("bytes", len(p.text)).Msg("compiled")
		return nil
	}
	if err := os.WriteFile(c.output, []byte(p.text), c.opts.FileMode); err != nil {
		diag.ReportWarning(p.rep, diag.IOWriteFileError,
			source.Span{File: c.file.ID}, fmt.Sprintf("cannot write %s: %v", c.output, err)).Emit()
		c.snapshot(p)
		c.log.Error().Err(err).Str("file", c.file.Path).Str("output", c.output).Msg("write failed")
		return &IOError{Op: "write", Path: c.output, Err: err}
	}
	c.persisted = true
	c.log.Info().Str("file", c.file.Path).Str("output", c.output).Int("bytes", len(p.text)).Msg("compiled")
	return nil
}

// Contents is the emitted artifact of the last successful Compile, or "".
func (c *Compiler) Contents() string { return c.contents }

// Generated reports whether the last run produced an artifact.
func (c *Compiler) Generated() bool { return c.generated }

// Persisted reports whether the artifact reached the output path.
func (c *Compiler) Persisted() bool { return c.persisted }

// Stage returns the current pipeline position.
func (c *Compiler) Stage() Stage { return c.stage }

// FailedAt returns the stage that failed in the last run, or StageCreated.
func (c *Compiler) FailedAt() Stage { return c.failedAt }

// Diagnostics returns the sorted diagnostics of the last run.
func (c *Compiler) Diagnostics() []diag.Diagnostic { return slices.Clone(c.diags) }

// FileSet resolves spans of the returned diagnostics.
func (c *Compiler) FileSet() *source.FileSet { return c.fs }

// File is the loaded input.
func (c *Compiler) File() *source.File { return c.file }

// InputPath returns the path New was called with.
func (c *Compiler) InputPath() string { return c.input }

// SourceName is the name written to the artifact's .source directive.
func (c *Compiler) SourceName() string { return c.opts.SourceName }

// OutputPath returns the absolute output path, or "" for in-memory runs.
func (c *Compiler) OutputPath() string { return c.output }

// Timings returns per-stage durations of the last run.
func (c *Compiler) Timings() *observ.Timer { return c.timer }
