package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SourceExt is the extension of amulet source files.
const SourceExt = ".am"

// ArtifactExt is the extension of emitted assembly files.
const ArtifactExt = ".amasm"

// SourceFiles expands [build].sources into absolute file paths. Directories
// are walked recursively for *.am files; the result is sorted and
// free of duplicates.
func (m *Manifest) SourceFiles() ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, entry := range m.Config.Build.Sources {
		p := filepath.Join(m.Root, filepath.FromSlash(entry))
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%s: source %q: %w", m.Path, entry, err)
		}
		if !info.IsDir() {
			if filepath.Ext(p) != SourceExt {
				return nil, fmt.Errorf("%s: source %q is not a %s file", m.Path, entry, SourceExt)
			}
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() && filepath.Ext(path) == SourceExt {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: walking %q: %w", m.Path, entry, err)
		}
	}
	slices.Sort(out)
	return out, nil
}

// OutDir returns the absolute output directory.
func (m *Manifest) OutDir() string {
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.OutDir))
}

// ArtifactPath maps a source file to its artifact under OutDir, keeping the
// path relative to Root: <root>/src/a/b.am -> <out>/src/a/b.amasm.
func (m *Manifest) ArtifactPath(src string) string {
	rel, err := filepath.Rel(m.Root, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(src)
	}
	return filepath.Join(m.OutDir(), strings.TrimSuffix(rel, filepath.Ext(rel))+ArtifactExt)
}

// CacheDir is where build keeps cached artifacts.
func (m *Manifest) CacheDir() string {
	return filepath.Join(m.OutDir(), ".cache")
}
