package buildpipeline

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"amulet/internal/diag"
	"amulet/internal/project"
	"amulet/internal/source"
)

// Current schema version - increment when CacheEntry format changes
const cacheSchemaVersion uint16 = 2

// CacheEntry is one cached compilation result. Only successful runs are
// cached, so Warnings never holds an error-severity diagnostic.
type CacheEntry struct {
	Schema   uint16
	Source   string
	Version  string
	Contents string
	Warnings []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic detached from its FileSet.
type CachedDiagnostic struct {
	Code     uint16
	Severity uint8
	Message  string
	Start    uint32
	End      uint32
	Notes    []CachedNote `msgpack:",omitempty"`
}

// CachedNote is a diagnostic note; a compilation unit is one file, so the
// span needs no file id.
type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

// ArtifactCache stores emitted artifacts keyed by project.CacheKey.
// Safe for concurrent use.
type ArtifactCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache prepares dir for use as a cache.
func OpenCache(dir string) (*ArtifactCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &ArtifactCache{dir: dir}, nil
}

func (c *ArtifactCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, key.String()+".mp")
}

// Put writes entry atomically.
func (c *ArtifactCache) Put(key project.Digest, entry *CacheEntry) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Schema = cacheSchemaVersion
	p := c.pathFor(key)
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Get loads the entry for key. A missing, unreadable or outdated entry is
// a miss, not an error.
func (c *ArtifactCache) Get(key project.Digest) (*CacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var entry CacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil || entry.Schema != cacheSchemaVersion {
		return nil, false
	}
	return &entry, true
}

// Clear removes every cached entry.
func (c *ArtifactCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(c.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(c.dir, 0o750)
}

func detach(diags []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, CachedDiagnostic{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Notes:    detachNotes(d.Notes),
		})
	}
	return out
}

func detachNotes(notes []diag.Note) []CachedNote {
	if len(notes) == 0 {
		return nil
	}
	out := make([]CachedNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
	}
	return out
}

func attach(cached []CachedDiagnostic, file source.FileID) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(cached))
	for _, c := range cached {
		out = append(out, diag.Diagnostic{
			Code:     diag.Code(c.Code),
			Severity: diag.Severity(c.Severity),
			Message:  c.Message,
			Primary:  source.Span{File: file, Start: c.Start, End: c.End},
			Notes:    attachNotes(c.Notes, file),
		})
	}
	return out
}

func attachNotes(cached []CachedNote, file source.FileID) []diag.Note {
	if len(cached) == 0 {
		return nil
	}
	out := make([]diag.Note, 0, len(cached))
	for _, n := range cached {
		out = append(out, diag.Note{Span: source.Span{File: file, Start: n.Start, End: n.End}, Msg: n.Msg})
	}
	return out
}
