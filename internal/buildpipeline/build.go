// Package buildpipeline compiles every source of an amulet project. Each
// file gets its own driver.Compiler; files are compiled in parallel and
// share nothing but the artifact cache.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"amulet/internal/diag"
	"amulet/internal/driver"
	"amulet/internal/project"
	"amulet/internal/source"
)

// Request configures a build.
type Request struct {
	Manifest *project.Manifest
	// Files overrides the manifest's source list when non-empty.
	Files []string
	// Jobs caps parallelism; 0 falls back to the manifest, then GOMAXPROCS.
	Jobs int
	// NoCache disables the artifact cache regardless of the manifest.
	NoCache bool
	// CompilerVersion is mixed into cache keys.
	CompilerVersion string
	Progress        ProgressSink
	Logger          *zerolog.Logger
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Source      string
	Output      string
	Cached      bool
	Diagnostics []diag.Diagnostic
	FileSet     *source.FileSet
	Err         error
	Elapsed     time.Duration
}

// Result aggregates a build. Files keeps the order of the source list.
type Result struct {
	Files     []FileResult
	Succeeded int
	Failed    int
	Cached    int
	Elapsed   time.Duration
}

// Build compiles all sources. A failing file does not stop the others; the
// returned error is a *multierror.Error with one entry per failed file, or
// the context error when the build was cancelled.
func Build(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if req == nil || req.Manifest == nil {
		return result, errors.New("missing build request")
	}
	start := time.Now()
	log := zerolog.Nop()
	if req.Logger != nil {
		log = *req.Logger
	}

	files := req.Files
	if len(files) == 0 {
		var err error
		if files, err = req.Manifest.SourceFiles(); err != nil {
			return result, err
		}
	}
	if len(files) == 0 {
		return result, fmt.Errorf("%s: no %s files to build", req.Manifest.Path, project.SourceExt)
	}

	var cache *ArtifactCache
	if req.Manifest.Config.Build.Cache && !req.NoCache {
		var err error
		if cache, err = OpenCache(req.Manifest.CacheDir()); err != nil {
			log.Warn().Err(err).Msg("artifact cache disabled")
			cache = nil
		}
	}

	for _, f := range files {
		emit(req.Progress, Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = req.Manifest.Config.Build.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			// отмена проверяется до начала работы; идущую компиляцию не прерываем
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = buildFile(path, req, cache, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	var merr *multierror.Error
	for i := range results {
		r := &results[i]
		switch {
		case r.Err != nil:
			result.Failed++
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", displayPath(req.Manifest, r.Source), r.Err))
		case r.Cached:
			result.Cached++
			result.Succeeded++
		default:
			result.Succeeded++
		}
	}
	result.Files = results
	result.Elapsed = time.Since(start)

	status := StatusDone
	if merr != nil {
		status = StatusError
	}
	emit(req.Progress, Event{Stage: StageWrite, Status: status, Elapsed: result.Elapsed})
	log.Info().
		Int("files", len(files)).
		Int("failed", result.Failed).
		Int("cached", result.Cached).
		Dur("elapsed", result.Elapsed).
		Msg("build finished")
	return result, merr.ErrorOrNil()
}

func buildFile(path string, req *Request, cache *ArtifactCache, log zerolog.Logger) FileResult {
	start := time.Now()
	out := req.Manifest.ArtifactPath(path)
	res := FileResult{Source: path, Output: out}
	finish := func(stage Stage, err error) FileResult {
		res.Err = err
		res.Elapsed = time.Since(start)
		status := StatusDone
		if err != nil {
			status = StatusError
		}
		emit(req.Progress, Event{File: path, Stage: stage, Status: status, Cached: res.Cached, Err: err, Elapsed: res.Elapsed})
		return res
	}

	emit(req.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return finish(StageLoad, &driver.IOError{Op: "prepare", Path: out, Err: err})
	}
	fileLog := log.With().Str("unit", filepath.Base(path)).Logger()
	c, err := driver.New(path, out, driver.Options{Logger: &fileLog})
	if err != nil {
		return finish(StageLoad, err)
	}
	res.FileSet = c.FileSet()

	var key project.Digest
	if cache != nil {
		emit(req.Progress, Event{File: path, Stage: StageCache, Status: StatusWorking})
		key = project.CacheKey(c.File().Hash, c.SourceName(), req.CompilerVersion)
		if entry, ok := cache.Get(key); ok {
			res.Cached = true
			res.Diagnostics = attach(entry.Warnings, c.File().ID)
			if werr := os.WriteFile(out, []byte(entry.Contents), 0o644); werr != nil { // #nosec G306 -- artifacts are not secret
				return finish(StageWrite, &driver.IOError{Op: "write", Path: out, Err: werr})
			}
			return finish(StageWrite, nil)
		}
	}

	emit(req.Progress, Event{File: path, Stage: StageCompile, Status: StatusWorking})
	err = c.Compile()
	res.Diagnostics = c.Diagnostics()
	if err != nil {
		stage := StageCompile
		var ioErr *driver.IOError
		if errors.As(err, &ioErr) {
			stage = StageWrite
		}
		return finish(stage, err)
	}
	if cache != nil {
		entry := &CacheEntry{
			Source:   path,
			Version:  req.CompilerVersion,
			Contents: c.Contents(),
			Warnings: detach(res.Diagnostics),
		}
		if perr := cache.Put(key, entry); perr != nil {
			log.Warn().Err(perr).Str("file", path).Msg("cache write failed")
		}
	}
	return finish(StageWrite, nil)
}

func displayPath(m *project.Manifest, path string) string {
	if rel, err := filepath.Rel(m.Root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
